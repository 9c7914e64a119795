package handlers

import (
	"net/http"

	"spyfall_webapp/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func accountID(c *gin.Context) string {
	return middleware.AccountID(c)
}

type createRoomRequest struct {
	Name        string `json:"name" binding:"required"`
	MaxUsers    int    `json:"max_users"`
	SessionTime int    `json:"session_time"`
}

func (h *Handler) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room name required"})
		return
	}

	room, err := h.Sessions.CreateRoom(req.Name, accountID(c), req.MaxUsers, req.SessionTime)
	if err != nil {
		fail(c, err)
		return
	}

	RoomsCreated.Inc()
	h.roomView(c, room.ID)
}

// RoomView returns the caller's projection of the room: phase, derived
// role, the location when the caller may see it, and the countdown.
func (h *Handler) RoomView(c *gin.Context) {
	h.roomView(c, c.Param("id"))
}

func (h *Handler) roomView(c *gin.Context, roomID string) {
	view, err := h.Engine.ViewFor(roomID, accountID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) JoinRoom(c *gin.Context) {
	if err := h.Sessions.Join(c.Param("id"), accountID(c)); err != nil {
		fail(c, err)
		return
	}
	h.roomView(c, c.Param("id"))
}

type targetRequest struct {
	TargetID string `json:"target_id" binding:"required"`
}

func (h *Handler) KickFromRoom(c *gin.Context) {
	var req targetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_id required"})
		return
	}

	if err := h.Sessions.Kick(c.Param("id"), accountID(c), req.TargetID); err != nil {
		fail(c, err)
		return
	}
	h.roomView(c, c.Param("id"))
}

func (h *Handler) StartGame(c *gin.Context) {
	if err := h.Engine.StartGame(c.Param("id"), accountID(c)); err != nil {
		fail(c, err)
		return
	}

	GamesStarted.Inc()
	h.roomView(c, c.Param("id"))
}

func (h *Handler) CastElimination(c *gin.Context) {
	var req targetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_id required"})
		return
	}

	if err := h.Engine.CastElimination(c.Param("id"), accountID(c), req.TargetID); err != nil {
		fail(c, err)
		return
	}
	h.roomView(c, c.Param("id"))
}
