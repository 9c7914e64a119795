package session

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"spyfall_webapp/internal/domain"
	"spyfall_webapp/internal/game"
	"spyfall_webapp/internal/store"
)

func newService() (*Service, *store.Memory) {
	st := store.NewMemory()
	return NewService(st, Defaults{}), st
}

func mustAccount(t *testing.T, s *Service, name string) domain.Account {
	t.Helper()
	acc, err := s.CreateAccount(name)
	if err != nil {
		t.Fatalf("CreateAccount(%s): %v", name, err)
	}
	return acc
}

func TestCreateAccount(t *testing.T) {
	s, _ := newService()

	acc := mustAccount(t, s, "alice")
	if acc.ID == "" || acc.Name != "alice" {
		t.Fatalf("account = %+v; want id set and name alice", acc)
	}

	got, err := s.Account(acc.ID)
	if err != nil {
		t.Fatalf("Account: %v", err)
	}
	if got.Name != "alice" || got.ActiveRoom != "" {
		t.Fatalf("reloaded account = %+v", got)
	}

	if _, err := s.CreateAccount(""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("empty name err = %v; want ErrValidation", err)
	}
}

func TestCreateRoomValidation(t *testing.T) {
	s, _ := newService()
	acc := mustAccount(t, s, "alice")

	cases := []struct {
		name   string
		room   string
		wantOK bool
	}{
		{"too short", "ab", false},
		{"min length", "abc", true},
		{"max length", strings.Repeat("x", 50), true},
		{"too long", strings.Repeat("x", 51), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.CreateRoom(tc.room, acc.ID, 0, 0)
			if tc.wantOK && err != nil {
				t.Fatalf("CreateRoom(%q): %v", tc.room, err)
			}
			if !tc.wantOK && !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("CreateRoom(%q) err = %v; want ErrValidation", tc.room, err)
			}
		})
	}
}

func TestCreateRoomDefaults(t *testing.T) {
	s, st := newService()
	acc := mustAccount(t, s, "alice")

	room, err := s.CreateRoom("safehouse", acc.ID, 0, 0)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if room.MaxUsers != domain.DefaultMaxUsers || room.SessionTime != domain.DefaultSessionTime {
		t.Fatalf("room = %+v; want default capacity and session time", room)
	}
	if len(room.Users) != 1 || room.Users[0] != acc.ID {
		t.Fatalf("users = %v; want creator only", room.Users)
	}
	if !s.IsAdmin(room, acc.ID) {
		t.Fatal("creator is not admin")
	}

	phase, err := st.ReadField(store.Ref(room.GameState), game.FieldPhase)
	if err != nil {
		t.Fatalf("game state missing: %v", err)
	}
	if phase != string(domain.PhaseWaiting) {
		t.Fatalf("initial phase = %v; want waiting", phase)
	}
	round, _ := st.ReadField(store.Ref(room.GameState), game.FieldRound)
	if round != domain.DefaultStartRounds {
		t.Fatalf("round = %v; want %d", round, domain.DefaultStartRounds)
	}

	updated, _ := s.Account(acc.ID)
	if updated.ActiveRoom != room.ID {
		t.Fatalf("active_room = %q; want %q", updated.ActiveRoom, room.ID)
	}
}

func TestJoin(t *testing.T) {
	s, _ := newService()
	alice := mustAccount(t, s, "alice")
	bob := mustAccount(t, s, "bob")
	carol := mustAccount(t, s, "carol")

	room, err := s.CreateRoom("safehouse", alice.ID, 2, 0)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	if err := s.Join(room.ID, bob.ID); err != nil {
		t.Fatalf("Join(bob): %v", err)
	}
	// joining again is a no-op, not a duplicate roster entry
	if err := s.Join(room.ID, bob.ID); err != nil {
		t.Fatalf("second Join(bob): %v", err)
	}

	got, _ := s.Room(room.ID)
	if len(got.Users) != 2 {
		t.Fatalf("users = %v; want [alice bob]", got.Users)
	}

	// room holds 2; carol bounces
	err = s.Join(room.ID, carol.ID)
	if !errors.Is(err, domain.ErrCapacityExceeded) {
		t.Fatalf("Join over capacity err = %v; want ErrCapacityExceeded", err)
	}

	// joiners get writer capability, not admin
	if s.IsAdmin(got, bob.ID) {
		t.Fatal("joiner must not be admin")
	}
}

func TestJoinConcurrentCapacity(t *testing.T) {
	s, _ := newService()
	alice := mustAccount(t, s, "alice")

	room, err := s.CreateRoom("safehouse", alice.ID, 3, 0)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	// eight contenders for the two remaining seats
	var ids []string
	for i := 0; i < 8; i++ {
		ids = append(ids, mustAccount(t, s, "guest").ID)
	}

	errs := make(chan error, len(ids))
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			errs <- s.Join(room.ID, id)
		}(id)
	}
	wg.Wait()
	close(errs)

	joined := 0
	for err := range errs {
		switch {
		case err == nil:
			joined++
		case errors.Is(err, domain.ErrCapacityExceeded):
		default:
			t.Fatalf("unexpected join error: %v", err)
		}
	}
	if joined != 2 {
		t.Fatalf("joined = %d; want exactly 2", joined)
	}

	got, _ := s.Room(room.ID)
	if len(got.Users) != 3 {
		t.Fatalf("roster = %v; want exactly 3 entries", got.Users)
	}
	seen := make(map[string]bool)
	for _, id := range got.Users {
		if seen[id] {
			t.Fatalf("duplicate roster entry %s", id)
		}
		seen[id] = true
	}
}

func TestJoinAfterStart(t *testing.T) {
	s, st := newService()
	alice := mustAccount(t, s, "alice")
	bob := mustAccount(t, s, "bob")

	room, err := s.CreateRoom("safehouse", alice.ID, 0, 0)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	engine := game.NewEngine(st)
	if err := engine.StartGame(room.ID, alice.ID); err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	err = s.Join(room.ID, bob.ID)
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("Join after start err = %v; want ErrInvalidState", err)
	}
}

func TestKick(t *testing.T) {
	s, st := newService()
	alice := mustAccount(t, s, "alice")
	bob := mustAccount(t, s, "bob")

	room, err := s.CreateRoom("safehouse", alice.ID, 0, 0)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if err := s.Join(room.ID, bob.ID); err != nil {
		t.Fatalf("Join: %v", err)
	}

	// only the admin may kick
	err = s.Kick(room.ID, bob.ID, alice.ID)
	if !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("Kick by non-admin err = %v; want ErrPermission", err)
	}

	if err := s.Kick(room.ID, alice.ID, bob.ID); err != nil {
		t.Fatalf("Kick: %v", err)
	}
	got, _ := s.Room(room.ID)
	if len(got.Users) != 1 || got.Users[0] != alice.ID {
		t.Fatalf("users after kick = %v; want [alice]", got.Users)
	}
	bobAcc, _ := s.Account(bob.ID)
	if bobAcc.ActiveRoom != "" {
		t.Fatalf("kicked account active_room = %q; want cleared", bobAcc.ActiveRoom)
	}

	// no kicking once the game is underway
	if err := s.Join(room.ID, bob.ID); err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	engine := game.NewEngine(st)
	if err := engine.StartGame(room.ID, alice.ID); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	err = s.Kick(room.ID, alice.ID, bob.ID)
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("Kick mid-game err = %v; want ErrInvalidState", err)
	}
}
