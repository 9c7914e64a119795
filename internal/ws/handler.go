package ws

import (
	"net/http"

	"spyfall_webapp/internal/logger"
	"spyfall_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleWS upgrades a participant connection and binds it to a room channel.
// Auth rides on the query string because browsers cannot set headers on
// websocket dials. An empty allowedOrigin accepts any origin.
func HandleWS(hub *Hub, tokens *service.Tokens, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}
		accountID, err := tokens.Parse(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		roomID := c.Query("room")
		if roomID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "room required"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "error", err)
			return
		}

		client := NewClient(accountID, roomID, conn, hub)
		go client.Run()
	}
}
