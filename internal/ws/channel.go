package ws

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"spyfall_webapp/internal/domain"
	"spyfall_webapp/internal/game"
	"spyfall_webapp/internal/logger"
	"spyfall_webapp/internal/store"
	"spyfall_webapp/internal/timer"
)

// Message is the envelope pushed to clients.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

const (
	MsgState = "state"
	MsgError = "error"
)

// Channel fans one room's store changes out to its connected clients. Each
// client gets its own projection (the spy must not see the location). While
// an admin device is connected, the channel also runs that device's timer
// coordinator, which is what drives the timed phase transitions.
type Channel struct {
	RoomID string

	hub    *Hub
	engine *game.Engine
	st     store.Store

	register   chan *Client
	disconnect chan *Client
	updates    chan struct{}
	done       chan struct{}

	clients   map[string]*Client
	gameID    string
	subRoom   store.SubID
	subGame   store.SubID
	coord     *timer.Coordinator
	createdAt time.Time

	// read by the hub's sweep outside the Run goroutine
	clientCount atomic.Int64
}

func newChannel(roomID, gameID string, hub *Hub) *Channel {
	return &Channel{
		RoomID:     roomID,
		hub:        hub,
		engine:     hub.engine,
		st:         hub.store,
		// register is unbuffered: a handoff only succeeds while the Run
		// loop is alive, so an attaching client is never silently lost
		register:   make(chan *Client),
		disconnect: make(chan *Client, 2),
		updates:    make(chan struct{}, 1),
		done:       make(chan struct{}),
		clients:    make(map[string]*Client),
		gameID:     gameID,
		createdAt:  time.Now(),
	}
}

// Run is the channel's single event loop; all client and coordinator state
// is owned by this goroutine.
func (ch *Channel) Run() {
	notify := func(store.Ref) {
		select {
		case ch.updates <- struct{}{}:
		default:
		}
	}
	ch.subRoom = ch.st.Subscribe(store.Ref(ch.RoomID), notify)
	ch.subGame = ch.st.Subscribe(store.Ref(ch.gameID), notify)

	for {
		select {
		case c := <-ch.register:
			ch.clients[c.AccountID] = c
			ch.clientCount.Store(int64(len(ch.clients)))
			logger.Debug("ws client registered", "room", ch.RoomID, "account", c.AccountID)
			ch.sendView(c)
			ch.syncCoordinator()

		case c := <-ch.disconnect:
			if cur, ok := ch.clients[c.AccountID]; ok && cur == c {
				delete(ch.clients, c.AccountID)
			}
			ch.clientCount.Store(int64(len(ch.clients)))
			ch.syncCoordinator()

			if len(ch.clients) == 0 {
				ch.teardown()
				return
			}

		case <-ch.updates:
			ch.broadcastViews()
			ch.observePhase()
		}
	}
}

// teardown removes the channel from the hub before closing done, so a
// client that raced into Attach observes the closed channel and retries
// against a fresh one.
func (ch *Channel) teardown() {
	if ch.coord != nil {
		ch.coord.Stop()
		ch.coord = nil
	}
	ch.st.Unsubscribe(store.Ref(ch.RoomID), ch.subRoom)
	ch.st.Unsubscribe(store.Ref(ch.gameID), ch.subGame)
	ch.hub.remove(ch)
	close(ch.done)
	logger.Debug("ws channel closed", "room", ch.RoomID)
}

// syncCoordinator starts the timer coordinator when an admin device is
// connected and stops it when the last one leaves. Non-admin clients never
// drive transitions; their countdown is derived client-side from the view.
func (ch *Channel) syncCoordinator() {
	hasAdmin := false
	for id := range ch.clients {
		if ch.isAdmin(id) {
			hasAdmin = true
			break
		}
	}

	switch {
	case hasAdmin && ch.coord == nil:
		gameID := ch.gameID
		ch.coord = timer.NewCoordinator(func(from domain.Phase) (bool, error) {
			return ch.engine.Advance(gameID, from)
		})
		ch.observePhase()
	case !hasAdmin && ch.coord != nil:
		ch.coord.Stop()
		ch.coord = nil
	}
}

func (ch *Channel) observePhase() {
	if ch.coord == nil {
		return
	}
	snap, err := ch.engine.Snapshot(ch.gameID)
	if err != nil {
		logger.Error("snapshot for timer failed", "room", ch.RoomID, "error", err)
		return
	}
	remaining := ch.engine.Remaining(snap, ch.engine.SessionTime(ch.RoomID))
	ch.coord.Observe(snap.Phase, remaining, game.AutoAdvances(snap.Phase))
}

func (ch *Channel) broadcastViews() {
	for _, c := range ch.clients {
		ch.sendView(c)
	}
}

func (ch *Channel) sendView(c *Client) {
	view, err := ch.engine.ViewFor(ch.RoomID, c.AccountID)
	if err != nil {
		logger.Error("building view failed", "room", ch.RoomID, "account", c.AccountID, "error", err)
		return
	}

	data, err := json.Marshal(Message{Type: MsgState, Payload: view})
	if err != nil {
		return
	}

	select {
	case c.Send <- data:
	default:
		// slow consumer; it will catch up on the next change
		logger.Warn("dropping view push", "room", ch.RoomID, "account", c.AccountID)
	}
}

func (ch *Channel) isAdmin(accountID string) bool {
	group, err := ch.st.GroupOf(store.Ref(ch.RoomID))
	if err != nil {
		return false
	}
	role, ok := ch.st.RoleOf(group, accountID)
	return ok && role == store.RoleAdmin
}
