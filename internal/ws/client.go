package ws

import (
	"time"

	"spyfall_webapp/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

// Client is one connected participant device. The server pushes projected
// view snapshots; actions travel over the REST API, so the read side only
// keeps the connection alive and detects teardown.
type Client struct {
	AccountID string
	RoomID    string
	Conn      *websocket.Conn
	Send      chan []byte

	hub  *Hub
	Done chan struct{}
}

func NewClient(accountID, roomID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		AccountID: accountID,
		RoomID:    roomID,
		Conn:      conn,
		Send:      make(chan []byte, 64),
		hub:       hub,
		Done:      make(chan struct{}),
	}
}

func (c *Client) Run() {
	go c.writePump()

	if err := c.hub.Attach(c); err != nil {
		logger.Warn("ws attach failed", "account", c.AccountID, "room", c.RoomID, "error", err)
		c.Conn.Close()
		return
	}

	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.OnDisconnect(c)
		close(c.Done)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(1024)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
		// inbound frames are ignored; mutations go through the REST API
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.Done:
			return
		}
	}
}
