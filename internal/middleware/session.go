package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docqa/internal/domain"
	"docqa/internal/service"
	"docqa/internal/session"
)

const (
	ContextKeySession   = "session"
	ContextKeySessionID = "session_id"
)

// SessionAuth returns Gin middleware that resolves the bearer token to a live
// session and injects it into the context.
func SessionAuth(sessionService service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing or invalid authorization header"},
			})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		state, err := sessionService.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"success": false,
					"error":   gin.H{"code": "SESSION_EXPIRED", "message": "session not found or expired"},
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "invalid or expired token"},
			})
			return
		}

		c.Set(ContextKeySession, state)
		c.Set(ContextKeySessionID, state.ID)
		c.Next()
	}
}

// GetSession extracts the session state from the Gin context.
func GetSession(c *gin.Context) (*session.State, error) {
	val, exists := c.Get(ContextKeySession)
	if !exists {
		return nil, domain.ErrUnauthorized
	}
	state, ok := val.(*session.State)
	if !ok || state == nil {
		return nil, domain.ErrUnauthorized
	}
	return state, nil
}

// GetSessionID extracts the session ID from the Gin context.
func GetSessionID(c *gin.Context) (uuid.UUID, error) {
	val, exists := c.Get(ContextKeySessionID)
	if !exists {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return val.(uuid.UUID), nil
}
