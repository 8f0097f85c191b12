package middleware

import (
	"net/http"
	"strings"

	"github.com/ErlanBelekov/greeting-api/internal/reqctx"
	"github.com/ErlanBelekov/greeting-api/internal/token"
	"github.com/gin-gonic/gin"
)

const errUnauthorized = "Unauthorized"

// Keys set on the gin context for authenticated requests.
const (
	UserIDKey = "userID"
	EmailKey  = "email"
)

type sessionDecoder interface {
	Decode(raw string) (*token.Claims, error)
}

// Auth validates a Bearer session token and sets UserIDKey and EmailKey in
// the gin context. Reset tokens are rejected by the audience check.
func Auth(sessions sessionDecoder) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		claims, err := sessions.Decode(strings.TrimPrefix(header, "Bearer "))
		if err != nil || claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(EmailKey, claims.Email)
		c.Request = c.Request.WithContext(reqctx.WithUserID(c.Request.Context(), claims.Subject))
		c.Next()
	}
}
