package game

import (
	"fmt"
	"math/rand"
	"time"

	"spyfall_webapp/internal/domain"
	"spyfall_webapp/internal/logger"
	"spyfall_webapp/internal/store"
)

// Field names of the shared game state object.
const (
	FieldPhase      = "phase"
	FieldLocation   = "location"
	FieldSpy        = "spy"
	FieldActive     = "active_users"
	FieldKilled     = "killed_users"
	FieldRound      = "round"
	FieldPhaseSince = "phase_since"
)

// RevealSeconds is how long the role-assignment and location-reveal screens
// stay up before auto-advancing.
const RevealSeconds = 5

// FinishedFunc is called once per terminal transition, after the phase write.
type FinishedFunc func(roomID string, snap domain.GameSnapshot)

// Engine drives the game-session state machine over shared store objects.
// Every phase transition is a compare-and-set against the expected
// predecessor, so replays from stale clients or late timers are no-ops.
type Engine struct {
	store store.Store

	// pickSpy returns a uniform index in [0, n); swapped out in tests.
	pickSpy func(n int) int
	now     func() time.Time

	onFinished FinishedFunc
}

func NewEngine(st store.Store) *Engine {
	return &Engine{
		store:   st,
		pickSpy: rand.Intn,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// OnFinished registers a hook for terminal transitions (history, metrics).
func (e *Engine) OnFinished(fn FinishedFunc) {
	e.onFinished = fn
}

// Snapshot reads the game state. Eventually consistent; see GameSnapshot.
func (e *Engine) Snapshot(gameID string) (domain.GameSnapshot, error) {
	ref := store.Ref(gameID)

	rawPhase, err := e.store.ReadField(ref, FieldPhase)
	if err != nil {
		return domain.GameSnapshot{}, err
	}
	active, err := e.store.ReadList(ref, FieldActive)
	if err != nil {
		return domain.GameSnapshot{}, err
	}
	killed, _ := e.store.ReadList(ref, FieldKilled)
	location, _ := e.store.ReadField(ref, FieldLocation)
	spy, _ := e.store.ReadField(ref, FieldSpy)
	round, _ := e.store.ReadField(ref, FieldRound)
	since, _ := e.store.ReadField(ref, FieldPhaseSince)

	snap := domain.GameSnapshot{ID: gameID, ActiveUsers: active, KilledUsers: killed}
	phase, _ := rawPhase.(string)
	snap.Phase = domain.Phase(phase)
	snap.Location, _ = location.(string)
	snap.Spy, _ = spy.(string)
	snap.Round, _ = round.(int)
	snap.PhaseSince, _ = since.(time.Time)
	return snap, nil
}

// StartGame performs Waiting -> RoleAssignment: picks the spy uniformly from
// the roster, copies the roster into activeUsers and advances the phase.
// Admin only. The spy write is a CAS against "not yet set" so a second
// startGame from a stale client cannot reassign it.
func (e *Engine) StartGame(roomID, actorID string) error {
	group, gameID, err := e.roomContext(roomID)
	if err != nil {
		return err
	}
	if !e.isAdmin(group, actorID) {
		return fmt.Errorf("%w: only the admin can start the game", domain.ErrPermission)
	}

	users, err := e.store.ReadList(store.Ref(roomID), domain.RoomFieldUsers)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return fmt.Errorf("%w: cannot start with an empty roster", domain.ErrInvalidState)
	}

	gameRef := store.Ref(gameID)
	spy := users[e.pickSpy(len(users))]

	swapped, err := e.store.CompareAndSwapField(gameRef, FieldSpy, "", spy)
	if err != nil {
		return err
	}
	if !swapped {
		return fmt.Errorf("%w: game already started", domain.ErrInvalidState)
	}

	for _, id := range users {
		if err := e.store.AppendToList(gameRef, FieldActive, id); err != nil {
			return err
		}
	}

	if err := e.transition(gameRef, domain.PhaseWaiting, domain.PhaseRoleAssignment); err != nil {
		return err
	}

	logger.Info("game started", "room", roomID, "players", len(users), "round", "role_assignment")
	return nil
}

// Advance fires a timer-driven transition from the given phase to its
// successor. Returns false without error when the phase has already moved
// on — late or duplicate timer firings are expected and harmless.
func (e *Engine) Advance(gameID string, from domain.Phase) (bool, error) {
	next, ok := successor(from)
	if !ok {
		return false, fmt.Errorf("%w: phase %s does not auto-advance", domain.ErrInvalidState, from)
	}

	err := e.transition(store.Ref(gameID), from, next)
	if err == errSuperseded {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	logger.Debug("phase advanced", "game", gameID, "from", string(from), "to", string(next))
	return true, nil
}

// AutoAdvances reports whether the phase is left by a timer rather than a
// manual action.
func AutoAdvances(p domain.Phase) bool {
	_, ok := successor(p)
	return ok
}

func successor(p domain.Phase) (domain.Phase, bool) {
	switch p {
	case domain.PhaseRoleAssignment:
		return domain.PhaseLocationReveal, true
	case domain.PhaseLocationReveal:
		return domain.PhaseInterrogate, true
	case domain.PhaseInterrogate:
		return domain.PhaseVote, true
	default:
		return "", false
	}
}

// PhaseDuration returns how long the game stays in a phase before it either
// auto-advances or, for the vote phase, unlocks elimination.
func PhaseDuration(p domain.Phase, sessionTime int) (time.Duration, bool) {
	switch p {
	case domain.PhaseRoleAssignment, domain.PhaseLocationReveal:
		return RevealSeconds * time.Second, true
	case domain.PhaseInterrogate, domain.PhaseVote:
		return time.Duration(sessionTime) * time.Second, true
	default:
		return 0, false
	}
}

// Remaining computes the cosmetic countdown from the phase entry timestamp;
// reconnecting clients get the same answer as ones that stayed connected.
func (e *Engine) Remaining(snap domain.GameSnapshot, sessionTime int) time.Duration {
	total, ok := PhaseDuration(snap.Phase, sessionTime)
	if !ok {
		return 0
	}
	left := total - e.now().Sub(snap.PhaseSince)
	if left < 0 {
		return 0
	}
	return left
}

// CastElimination resolves a vote. Admin only, vote phase only, and only
// once the voting countdown has elapsed. Eliminating the spy wins
// immediately regardless of the round counter; with only two active players
// left a miss loses by attrition before the game can return to
// interrogation.
func (e *Engine) CastElimination(roomID, actorID, targetID string) error {
	group, gameID, err := e.roomContext(roomID)
	if err != nil {
		return err
	}
	if !e.isAdmin(group, actorID) {
		return fmt.Errorf("%w: only the admin can eliminate", domain.ErrPermission)
	}

	snap, err := e.Snapshot(gameID)
	if err != nil {
		return err
	}
	if snap.Phase != domain.PhaseVote {
		return fmt.Errorf("%w: elimination is only valid in the vote phase", domain.ErrInvalidState)
	}
	if left := e.Remaining(snap, e.SessionTime(roomID)); left > 0 {
		return fmt.Errorf("%w: voting is still open for %s", domain.ErrInvalidState, left.Round(time.Second))
	}
	if !snap.IsActive(targetID) {
		return fmt.Errorf("%w: target is not an active player", domain.ErrInvalidState)
	}

	gameRef := store.Ref(gameID)

	if targetID == snap.Spy {
		if err := e.transition(gameRef, domain.PhaseVote, domain.PhaseResultWin); err != nil {
			return err
		}
		e.finish(roomID, gameID)
		return nil
	}

	if snap.Round <= 0 {
		if err := e.transition(gameRef, domain.PhaseVote, domain.PhaseResultLose); err != nil {
			return err
		}
		e.finish(roomID, gameID)
		return nil
	}

	if err := e.store.RemoveFromList(gameRef, FieldActive, func(id string) bool {
		return id == targetID
	}); err != nil {
		return err
	}
	if err := e.store.AppendToList(gameRef, FieldKilled, targetID); err != nil {
		return err
	}
	if err := e.store.WriteField(gameRef, FieldRound, snap.Round-1); err != nil {
		return err
	}

	remaining, err := e.store.ReadList(gameRef, FieldActive)
	if err != nil {
		return err
	}
	if len(remaining) == 1 {
		// attrition: only the spy is left standing
		if err := e.transition(gameRef, domain.PhaseVote, domain.PhaseResultLose); err != nil {
			return err
		}
		e.finish(roomID, gameID)
		return nil
	}

	if err := e.transition(gameRef, domain.PhaseVote, domain.PhaseInterrogate); err != nil {
		return err
	}
	logger.Info("player eliminated", "room", roomID, "target", targetID, "rounds_left", snap.Round-1)
	return nil
}

// RoleFor derives the display role; it is computed, never stored.
func (e *Engine) RoleFor(snap domain.GameSnapshot, accountID string) domain.Role {
	if snap.Spy != "" && snap.Spy == accountID {
		return domain.RoleSpy
	}
	return domain.RoleAgent
}

// errSuperseded signals a CAS that lost to an earlier transition.
var errSuperseded = fmt.Errorf("transition superseded")

// transition is the single write path for phase changes: CAS against the
// expected predecessor, never an unconditional overwrite. The phase and its
// entry timestamp land in one atomic write, so a subscriber never observes
// the new phase paired with the previous phase's timestamp.
func (e *Engine) transition(gameRef store.Ref, from, to domain.Phase) error {
	swapped, err := e.store.CompareAndSwapFields(gameRef, FieldPhase, string(from), map[string]any{
		FieldPhase:      string(to),
		FieldPhaseSince: e.now(),
	})
	if err != nil {
		return err
	}
	if !swapped {
		return errSuperseded
	}
	return nil
}

func (e *Engine) finish(roomID, gameID string) {
	snap, err := e.Snapshot(gameID)
	if err != nil {
		logger.Error("reading finished game failed", "game", gameID, "error", err)
		return
	}
	logger.Info("game finished", "room", roomID, "phase", string(snap.Phase), "spy", snap.Spy)
	if e.onFinished != nil {
		e.onFinished(roomID, snap)
	}
}

func (e *Engine) roomContext(roomID string) (store.GroupID, string, error) {
	group, err := e.store.GroupOf(store.Ref(roomID))
	if err != nil {
		return "", "", err
	}
	rawGame, err := e.store.ReadField(store.Ref(roomID), domain.RoomFieldGameState)
	if err != nil {
		return "", "", err
	}
	gameID, _ := rawGame.(string)
	return group, gameID, nil
}

func (e *Engine) isAdmin(group store.GroupID, accountID string) bool {
	role, ok := e.store.RoleOf(group, accountID)
	return ok && role == store.RoleAdmin
}

// SessionTime reads the room's interrogation window in seconds, falling back
// to the default for rooms that predate the setting.
func (e *Engine) SessionTime(roomID string) int {
	raw, _ := e.store.ReadField(store.Ref(roomID), domain.RoomFieldSessionTime)
	st, _ := raw.(int)
	if st <= 0 {
		st = domain.DefaultSessionTime
	}
	return st
}
