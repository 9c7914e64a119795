package session

import (
	"fmt"
	"time"

	"spyfall_webapp/internal/domain"
	"spyfall_webapp/internal/game"
	"spyfall_webapp/internal/logger"
	"spyfall_webapp/internal/store"
)

// Field names of the account objects. Room field names are shared constants
// in domain; game field names live in the game package.
const (
	fieldName       = "name"
	fieldActiveRoom = "active_room"
	fieldCreatedAt  = "created_at"
)

// Defaults configure new rooms; zero values fall back to the source app's
// numbers (10 players, 120s interrogation, 5 rounds).
type Defaults struct {
	MaxUsers    int
	SessionTime int
	StartRounds int
}

func (d Defaults) withFallbacks() Defaults {
	if d.MaxUsers <= 0 {
		d.MaxUsers = domain.DefaultMaxUsers
	}
	if d.SessionTime <= 0 {
		d.SessionTime = domain.DefaultSessionTime
	}
	if d.StartRounds <= 0 {
		d.StartRounds = domain.DefaultStartRounds
	}
	return d
}

// Service owns room-level metadata and membership lifecycle. Game phase
// transitions live in game.Engine; both operate on the same store objects.
type Service struct {
	store    store.Store
	defaults Defaults
	pickLoc  func() string
}

func NewService(st store.Store, defaults Defaults) *Service {
	return &Service{
		store:    st,
		defaults: defaults.withFallbacks(),
		pickLoc:  game.PickLocation,
	}
}

// CreateAccount registers a participant identity.
func (s *Service) CreateAccount(name string) (domain.Account, error) {
	if name == "" {
		return domain.Account{}, fmt.Errorf("%w: display name required", domain.ErrValidation)
	}

	group := s.store.CreateAccessGroup(name)
	now := time.Now().UTC()
	ref := s.store.CreateObject(map[string]any{
		fieldName:       name,
		fieldActiveRoom: "",
		fieldCreatedAt:  now,
	}, group)

	// the account owns itself: grant the fresh id admin on its group
	_ = s.store.GrantRole(group, string(ref), store.RoleAdmin)

	return domain.Account{ID: string(ref), Name: name, CreatedAt: now}, nil
}

func (s *Service) Account(id string) (domain.Account, error) {
	name, err := s.store.ReadField(store.Ref(id), fieldName)
	if err != nil {
		return domain.Account{}, err
	}
	activeRoom, _ := s.store.ReadField(store.Ref(id), fieldActiveRoom)
	createdAt, _ := s.store.ReadField(store.Ref(id), fieldCreatedAt)

	acc := domain.Account{ID: id}
	acc.Name, _ = name.(string)
	acc.ActiveRoom, _ = activeRoom.(string)
	acc.CreatedAt, _ = createdAt.(time.Time)
	return acc, nil
}

// CreateRoom creates the room and its game state in the waiting phase. The
// creator becomes the group admin; everyone else gets read access and is
// promoted to writer on join.
func (s *Service) CreateRoom(name, creatorID string, maxUsers, sessionTime int) (domain.RoomSession, error) {
	if len(name) < domain.RoomNameMinLen || len(name) > domain.RoomNameMaxLen {
		return domain.RoomSession{}, fmt.Errorf("%w: room name must be %d-%d characters",
			domain.ErrValidation, domain.RoomNameMinLen, domain.RoomNameMaxLen)
	}
	if maxUsers <= 0 {
		maxUsers = s.defaults.MaxUsers
	}
	if sessionTime <= 0 {
		sessionTime = s.defaults.SessionTime
	}

	group := s.store.CreateAccessGroup(creatorID)
	_ = s.store.GrantRole(group, store.Everyone, store.RoleReader)

	gameRef := s.store.CreateObject(map[string]any{
		game.FieldPhase:      string(domain.PhaseWaiting),
		game.FieldLocation:   s.pickLoc(),
		game.FieldSpy:        "",
		game.FieldActive:     []string{},
		game.FieldKilled:     []string{},
		game.FieldRound:      s.defaults.StartRounds,
		game.FieldPhaseSince: time.Now().UTC(),
	}, group)

	roomRef := s.store.CreateObject(map[string]any{
		domain.RoomFieldName:        name,
		domain.RoomFieldUsers:       []string{creatorID},
		domain.RoomFieldMaxUsers:    maxUsers,
		domain.RoomFieldSessionTime: sessionTime,
		domain.RoomFieldGameState:   string(gameRef),
	}, group)

	if err := s.store.WriteField(store.Ref(creatorID), fieldActiveRoom, string(roomRef)); err != nil {
		return domain.RoomSession{}, err
	}

	logger.Info("room created", "room", string(roomRef), "name", name, "creator", creatorID)
	return s.Room(string(roomRef))
}

// Room reads a point-in-time snapshot of the room object.
func (s *Service) Room(roomID string) (domain.RoomSession, error) {
	ref := store.Ref(roomID)

	name, err := s.store.ReadField(ref, domain.RoomFieldName)
	if err != nil {
		return domain.RoomSession{}, err
	}
	users, err := s.store.ReadList(ref, domain.RoomFieldUsers)
	if err != nil {
		return domain.RoomSession{}, err
	}
	maxUsers, _ := s.store.ReadField(ref, domain.RoomFieldMaxUsers)
	sessionTime, _ := s.store.ReadField(ref, domain.RoomFieldSessionTime)
	gameState, _ := s.store.ReadField(ref, domain.RoomFieldGameState)
	group, _ := s.store.GroupOf(ref)

	room := domain.RoomSession{ID: roomID, Users: users, Group: string(group)}
	room.Name, _ = name.(string)
	room.MaxUsers, _ = maxUsers.(int)
	room.SessionTime, _ = sessionTime.(int)
	room.GameState, _ = gameState.(string)
	return room, nil
}

// Join appends the account to the roster. Idempotent: joining a room you are
// already in is a no-op. Only valid while the game is waiting, otherwise the
// roster would diverge from the active/killed partition.
func (s *Service) Join(roomID, accountID string) error {
	room, err := s.Room(roomID)
	if err != nil {
		return err
	}
	if room.HasUser(accountID) {
		return nil
	}

	phase, err := s.gamePhase(room.GameState)
	if err != nil {
		return err
	}
	if phase != domain.PhaseWaiting {
		return fmt.Errorf("%w: game already started", domain.ErrInvalidState)
	}

	// capacity is enforced by the append itself, so two simultaneous joins
	// at the last seat cannot both slip through
	joined, err := s.store.AppendToListBounded(store.Ref(roomID), domain.RoomFieldUsers, accountID, room.MaxUsers)
	if err != nil {
		return err
	}
	if !joined {
		return fmt.Errorf("%w: room %q is full (%d/%d)",
			domain.ErrCapacityExceeded, room.Name, room.MaxUsers, room.MaxUsers)
	}
	_ = s.store.GrantRole(store.GroupID(room.Group), accountID, store.RoleWriter)
	if err := s.store.WriteField(store.Ref(accountID), fieldActiveRoom, roomID); err != nil {
		return err
	}

	logger.Info("account joined room", "room", roomID, "account", accountID)
	return nil
}

// Kick removes target from the roster. Admin only, and only before roles are
// assigned; mid-game kicks would leave the spy or the lists unreconciled.
func (s *Service) Kick(roomID, requesterID, targetID string) error {
	room, err := s.Room(roomID)
	if err != nil {
		return err
	}
	if !s.IsAdmin(room, requesterID) {
		return fmt.Errorf("%w: only the room admin can kick", domain.ErrPermission)
	}

	phase, err := s.gamePhase(room.GameState)
	if err != nil {
		return err
	}
	if phase != domain.PhaseWaiting {
		return fmt.Errorf("%w: cannot kick after roles are assigned", domain.ErrInvalidState)
	}

	if err := s.store.RemoveFromList(store.Ref(roomID), domain.RoomFieldUsers, func(id string) bool {
		return id == targetID
	}); err != nil {
		return err
	}
	_ = s.store.WriteField(store.Ref(targetID), fieldActiveRoom, "")

	logger.Info("account kicked from room", "room", roomID, "account", targetID, "by", requesterID)
	return nil
}

// IsAdmin reports whether the account holds admin capability on the room's
// access group. Admin identity is an explicit group role, never inferred.
func (s *Service) IsAdmin(room domain.RoomSession, accountID string) bool {
	role, ok := s.store.RoleOf(store.GroupID(room.Group), accountID)
	return ok && role == store.RoleAdmin
}

func (s *Service) gamePhase(gameID string) (domain.Phase, error) {
	raw, err := s.store.ReadField(store.Ref(gameID), game.FieldPhase)
	if err != nil {
		return "", err
	}
	phase, _ := raw.(string)
	return domain.Phase(phase), nil
}
