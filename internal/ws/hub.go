package ws

import (
	"fmt"
	"sync"
	"time"

	"spyfall_webapp/internal/game"
	"spyfall_webapp/internal/logger"
	"spyfall_webapp/internal/session"
	"spyfall_webapp/internal/store"
)

// Hub tracks one Channel per room with connected clients. Channels are
// created lazily on the first connection and removed when the last client
// leaves.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]*Channel

	store    store.Store
	sessions *session.Service
	engine   *game.Engine
}

func NewHub(st store.Store, sessions *session.Service, engine *game.Engine) *Hub {
	return &Hub{
		channels: make(map[string]*Channel),
		store:    st,
		sessions: sessions,
		engine:   engine,
	}
}

// Attach routes the client to its room's channel, creating and starting the
// channel if this is the room's first connection. A channel can empty out
// and tear down between the map lookup and the handoff; when that happens
// the loop retries against a fresh channel instead of dropping the client.
func (h *Hub) Attach(c *Client) error {
	room, err := h.sessions.Room(c.RoomID)
	if err != nil {
		return fmt.Errorf("room %s: %w", c.RoomID, err)
	}

	for {
		h.mu.Lock()
		ch, ok := h.channels[c.RoomID]
		if !ok {
			ch = newChannel(c.RoomID, room.GameState, h)
			h.channels[c.RoomID] = ch
			go ch.Run()
		}
		h.mu.Unlock()

		select {
		case ch.register <- c:
			return nil
		case <-ch.done:
		}
	}
}

func (h *Hub) OnDisconnect(c *Client) {
	h.mu.RLock()
	ch, ok := h.channels[c.RoomID]
	h.mu.RUnlock()

	if !ok {
		return
	}
	select {
	case ch.disconnect <- c:
	case <-ch.done:
	}
}

func (h *Hub) remove(ch *Channel) {
	h.mu.Lock()
	if cur, ok := h.channels[ch.RoomID]; ok && cur == ch {
		delete(h.channels, ch.RoomID)
	}
	h.mu.Unlock()
}

// StartCleanup sweeps channels that somehow outlived their clients; the
// normal path is a channel removing itself when it empties.
func (h *Hub) StartCleanup() {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			h.sweep()
		}
	}()
}

func (h *Hub) sweep() {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	for roomID, ch := range h.channels {
		if ch.clientCount.Load() == 0 && now.Sub(ch.createdAt) > time.Hour {
			delete(h.channels, roomID)
			logger.Info("swept stale channel", "room", roomID)
		}
	}
}
