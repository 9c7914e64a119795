package handlers

import (
	"errors"
	"net/http"

	"spyfall_webapp/internal/domain"
	"spyfall_webapp/internal/game"
	"spyfall_webapp/internal/repository"
	"spyfall_webapp/internal/service"
	"spyfall_webapp/internal/session"

	"github.com/gin-gonic/gin"
)

// Handler carries the dependencies shared by the API endpoints.
type Handler struct {
	Sessions *session.Service
	Engine   *game.Engine
	Tokens   *service.Tokens
	Records  *repository.GameRecordRepository // nil when no database is configured
}

func NewHandler(sessions *session.Service, engine *game.Engine, tokens *service.Tokens, records *repository.GameRecordRepository) *Handler {
	return &Handler{
		Sessions: sessions,
		Engine:   engine,
		Tokens:   tokens,
		Records:  records,
	}
}

// fail maps domain errors to HTTP statuses and leaves state untouched; every
// game error is recoverable and surfaced inline.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrPermission):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrCapacityExceeded):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidState):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
