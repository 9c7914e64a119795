package middleware

import (
	"net/http"
	"strings"

	"spyfall_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

const accountKey = "account_id"

// Auth validates the bearer token and stores the account id on the context.
func Auth(tokens *service.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		accountID, err := tokens.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(accountKey, accountID)
		c.Next()
	}
}

// AccountID returns the authenticated account id set by Auth.
func AccountID(c *gin.Context) string {
	id, _ := c.Get(accountKey)
	s, _ := id.(string)
	return s
}
