package domain

const (
	RoomNameMinLen = 3
	RoomNameMaxLen = 50

	DefaultMaxUsers    = 10
	DefaultSessionTime = 120
	DefaultStartRounds = 5
)

// Field names of the room object in the shared store.
const (
	RoomFieldName        = "name"
	RoomFieldUsers       = "users"
	RoomFieldMaxUsers    = "max_users"
	RoomFieldSessionTime = "session_time"
	RoomFieldGameState   = "game_state"
)

// RoomSession is a snapshot of a room object as read from the shared store.
// Users preserves join order and never contains duplicates.
type RoomSession struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Users       []string `json:"users"`
	MaxUsers    int      `json:"max_users"`
	SessionTime int      `json:"session_time"`
	GameState   string   `json:"game_state"`
	Group       string   `json:"-"`
}

func (r *RoomSession) HasUser(accountID string) bool {
	for _, id := range r.Users {
		if id == accountID {
			return true
		}
	}
	return false
}
