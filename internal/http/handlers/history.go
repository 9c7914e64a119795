package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// MyGames lists the caller's finished games, most recent first. Returns an
// empty list when no database is configured.
func (h *Handler) MyGames(c *gin.Context) {
	if h.Records == nil {
		c.JSON(http.StatusOK, gin.H{"games": []any{}})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	records, err := h.Records.ListByAccount(c.Request.Context(), accountID(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"games": records})
}
