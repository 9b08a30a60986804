package jwtmw

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"recipe_backend/internal/feature/user/domain/entity"
)

// Context keys set by AuthRequired.
const (
	ContextUserID    = "userID"
	ContextSessionID = "sessionID"
)

// Authenticator resolves a raw token to an active user and its session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, *entity.Session, error)
}

// AuthRequired returns a Gin middleware function that validates API tokens
// and restricts access to authenticated users only.
// Both "Bearer <token>" and "Token <token>" headers are accepted.
func AuthRequired(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := extractToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided"})
			return
		}

		user, session, err := auth.Authenticate(c.Request.Context(), tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextSessionID, session.ID)
		c.Next()
	}
}

func extractToken(header string) (string, bool) {
	for _, prefix := range []string{"Bearer ", "Token "} {
		if token, ok := strings.CutPrefix(header, prefix); ok {
			token = strings.TrimSpace(token)
			return token, token != ""
		}
	}
	return "", false
}

// UserID returns the authenticated user ID stored by AuthRequired.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// SessionID returns the session ID of the presented token.
func SessionID(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextSessionID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
