package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quizgen/quizgen-backend/internal/response"
)

const (
	// ContextKeySessionID is the Gin context key for the parsed :id session parameter.
	ContextKeySessionID = "session_id"
	// ContextKeyClientID is the Gin context key for the :client_id parameter.
	ContextKeyClientID = "client_id"
)

// SessionExists reports whether a live session has the given id.
type SessionExists func(id uuid.UUID) bool

// RequireSession parses the :id path parameter and rejects unknown sessions.
func RequireSession(exists SessionExists) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.AbortFail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		if !exists(id) {
			response.AbortFail(c, http.StatusNotFound, response.ErrSessionNotFound)
			return
		}
		c.Set(ContextKeySessionID, id)
		c.Next()
	}
}

// RequireClientID validates the :client_id path parameter.
func RequireClientID() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := strings.TrimSpace(c.Param("client_id"))
		if clientID == "" || len(clientID) > 64 {
			response.AbortFail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		c.Set(ContextKeyClientID, clientID)
		c.Next()
	}
}

// GetSessionID returns the session id set by RequireSession.
func GetSessionID(c *gin.Context) uuid.UUID {
	v, _ := c.Get(ContextKeySessionID)
	id, _ := v.(uuid.UUID)
	return id
}

// GetClientID returns the client id set by RequireClientID.
func GetClientID(c *gin.Context) string {
	return c.GetString(ContextKeyClientID)
}
