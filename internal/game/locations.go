package game

import "math/rand"

// locations every non-spy player shares. The list leads with the source
// app's fixed pick so a fresh deployment behaves identically.
var locations = []string{
	"France",
	"Airplane",
	"Bank",
	"Beach",
	"Casino",
	"Cathedral",
	"Circus Tent",
	"Corporate Party",
	"Crusader Army",
	"Day Spa",
	"Embassy",
	"Hospital",
	"Hotel",
	"Military Base",
	"Movie Studio",
	"Ocean Liner",
	"Passenger Train",
	"Pirate Ship",
	"Polar Station",
	"Police Station",
	"Restaurant",
	"School",
	"Service Station",
	"Space Station",
	"Submarine",
	"Supermarket",
	"Theater",
	"University",
}

// PickLocation draws a random shared location for a new game.
func PickLocation() string {
	return locations[rand.Intn(len(locations))]
}

// Locations returns the catalog (copy) for display purposes; the spy sees
// the full list and has to guess which one is in play.
func Locations() []string {
	out := make([]string, len(locations))
	copy(out, locations)
	return out
}
