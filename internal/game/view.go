package game

import (
	"time"

	"spyfall_webapp/internal/domain"
	"spyfall_webapp/internal/store"
)

// Player is a roster entry in a projected view.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// View is the read-only projection one participant sees for the current
// phase. The location is withheld from the spy, the role is withheld until
// assignment, and dead players keep watching without any actions.
type View struct {
	RoomID        string       `json:"room_id"`
	RoomName      string       `json:"room_name"`
	Phase         domain.Phase `json:"phase"`
	Role          domain.Role  `json:"role,omitempty"`
	Location      string       `json:"location,omitempty"`
	TimeRemaining int          `json:"time_remaining"`
	Round         int          `json:"round"`
	Users         []Player     `json:"users"`
	ActiveUsers   []Player     `json:"active_users"`
	KilledUsers   []Player     `json:"killed_users"`
	IsAdmin       bool         `json:"is_admin"`
	Dead          bool         `json:"dead"`
	SpyName       string       `json:"spy_name,omitempty"`
}

// ViewFor builds the projection of a room for one participant.
func (e *Engine) ViewFor(roomID, accountID string) (View, error) {
	group, gameID, err := e.roomContext(roomID)
	if err != nil {
		return View{}, err
	}
	snap, err := e.Snapshot(gameID)
	if err != nil {
		return View{}, err
	}

	roomRef := store.Ref(roomID)
	rawName, _ := e.store.ReadField(roomRef, domain.RoomFieldName)
	roomName, _ := rawName.(string)
	users, err := e.store.ReadList(roomRef, domain.RoomFieldUsers)
	if err != nil {
		return View{}, err
	}
	sessionTime := e.SessionTime(roomID)

	view := View{
		RoomID:        roomID,
		RoomName:      roomName,
		Phase:         snap.Phase,
		TimeRemaining: int(e.Remaining(snap, sessionTime) / time.Second),
		Round:         snap.Round,
		Users:         e.players(users),
		ActiveUsers:   e.players(snap.ActiveUsers),
		KilledUsers:   e.players(snap.KilledUsers),
		IsAdmin:       e.isAdmin(group, accountID),
		Dead:          snap.IsKilled(accountID),
	}

	if snap.Phase != domain.PhaseWaiting {
		view.Role = e.RoleFor(snap, accountID)
	}

	// agents learn the location at the reveal; the spy never does
	if view.Role == domain.RoleAgent && locationVisible(snap.Phase) {
		view.Location = snap.Location
	}

	// once the spy has won, everyone learns who it was
	if snap.Phase == domain.PhaseResultLose && snap.Spy != "" {
		view.SpyName = e.accountName(snap.Spy)
	}

	return view, nil
}

func locationVisible(p domain.Phase) bool {
	switch p {
	case domain.PhaseLocationReveal, domain.PhaseInterrogate, domain.PhaseVote,
		domain.PhaseResultWin, domain.PhaseResultLose:
		return true
	default:
		return false
	}
}

func (e *Engine) players(ids []string) []Player {
	out := make([]Player, 0, len(ids))
	for _, id := range ids {
		out = append(out, Player{ID: id, Name: e.accountName(id)})
	}
	return out
}

func (e *Engine) accountName(id string) string {
	raw, err := e.store.ReadField(store.Ref(id), "name")
	if err != nil {
		return ""
	}
	name, _ := raw.(string)
	return name
}
