package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type authRequest struct {
	Name string `json:"name" binding:"required"`
}

// Auth creates a participant account for this device and mints its token.
// There is no password: identity is per-device, like the source app's demo
// auth.
func (h *Handler) Auth(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}

	account, err := h.Sessions.CreateAccount(req.Name)
	if err != nil {
		fail(c, err)
		return
	}

	token, err := h.Tokens.Generate(account.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account_id": account.ID,
		"name":       account.Name,
		"token":      token,
	})
}

// Me returns the caller's account, including its active room reference.
func (h *Handler) Me(c *gin.Context) {
	account, err := h.Sessions.Account(accountID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	c.JSON(http.StatusOK, account)
}
