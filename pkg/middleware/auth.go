package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/assetdeck/assetdeck/pkg/session"
	"github.com/assetdeck/assetdeck/pkg/types"
)

const (
	// HeaderAPIKey authenticates the caller.
	HeaderAPIKey = "X-API-Key"
	// HeaderWorkspace selects the active workspace for the request.
	HeaderWorkspace = "X-Workspace-ID"
	// HeaderUser identifies the acting user, set by the upstream gateway.
	HeaderUser = "X-User-ID"
	// HeaderRole carries the user's workspace role.
	HeaderRole = "X-User-Role"

	sessionKey = "session"
)

// APIKeyAuth rejects requests without the configured API key and attaches
// the workspace session built from the request headers.
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(HeaderAPIKey)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			c.JSON(http.StatusUnauthorized, types.APIResponse{
				Success: false,
				Message: "Invalid API key",
			})
			c.Abort()
			return
		}

		role := session.Role(c.GetHeader(HeaderRole))
		if role == "" {
			role = session.RoleMember
		}

		c.Set(sessionKey, session.Session{
			WorkspaceID: c.GetHeader(HeaderWorkspace),
			UserID:      c.GetHeader(HeaderUser),
			Role:        role,
		})
		c.Next()
	}
}

// SessionFrom returns the session attached by APIKeyAuth. Handlers behind
// the auth middleware can rely on it being present; the workspace may still
// be empty and must be validated per operation.
func SessionFrom(c *gin.Context) session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(session.Session); ok {
			return s
		}
	}
	return session.Session{}
}

// RequireAdmin aborts with 403 unless the session role is admin.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if SessionFrom(c).Role != session.RoleAdmin {
			c.JSON(http.StatusForbidden, types.APIResponse{
				Success: false,
				Message: "Admin role required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
