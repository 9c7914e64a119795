package domain

import "time"

// Phase is one state of the game-session state machine.
type Phase string

const (
	PhaseWaiting        Phase = "waiting"
	PhaseRoleAssignment Phase = "role_assignment"
	PhaseLocationReveal Phase = "location_reveal"
	PhaseInterrogate    Phase = "interrogate"
	PhaseVote           Phase = "vote"
	// PhaseResultWrong is declared in the schema but never produced.
	PhaseResultWrong Phase = "result_wrong"
	PhaseResultWin   Phase = "result_win"
	PhaseResultLose  Phase = "result_lose"
)

// Terminal reports whether no further transitions leave the phase.
func (p Phase) Terminal() bool {
	return p == PhaseResultWin || p == PhaseResultLose || p == PhaseResultWrong
}

// Role is derived per participant, never stored.
type Role string

const (
	RoleSpy   Role = "spy"
	RoleAgent Role = "agent"
)

// GameSnapshot is a point-in-time read of a game state object. Because reads
// are eventually consistent, a snapshot can be stale by the time it is acted
// on; every transition built from one is applied as a compare-and-set.
type GameSnapshot struct {
	ID          string
	Phase       Phase
	Location    string
	Spy         string
	ActiveUsers []string
	KilledUsers []string
	Round       int
	PhaseSince  time.Time
}

func (g *GameSnapshot) IsActive(accountID string) bool {
	for _, id := range g.ActiveUsers {
		if id == accountID {
			return true
		}
	}
	return false
}

func (g *GameSnapshot) IsKilled(accountID string) bool {
	for _, id := range g.KilledUsers {
		if id == accountID {
			return true
		}
	}
	return false
}

// Outcome of a finished game from one participant's perspective.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
)

// GameRecord is a per-participant row persisted when a game reaches a
// terminal phase.
type GameRecord struct {
	ID        int64     `db:"id" json:"id"`
	RoomID    string    `db:"room_id" json:"room_id"`
	AccountID string    `db:"account_id" json:"account_id"`
	Role      Role      `db:"role" json:"role"`
	Outcome   Outcome   `db:"outcome" json:"outcome"`
	SpyID     string    `db:"spy_id" json:"spy_id"`
	Location  string    `db:"location" json:"location"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
