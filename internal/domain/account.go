package domain

import "time"

// Account is a participant identity. It is created once (via /auth) and only
// its ActiveRoom back-reference changes afterwards.
type Account struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ActiveRoom string    `json:"active_room,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
