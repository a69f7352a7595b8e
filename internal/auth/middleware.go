package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUserID = "auth_user_id"
	ContextKeyName   = "auth_name"
	ContextKeyRole   = "auth_role"
)

// Middleware handles authentication for HTTP requests. Everything behind it
// can assume a non-anonymous identity; the domain services perform no
// authorization checks of their own.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	publicPaths    map[string]bool
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, sessionManager *SessionManager) *Middleware {
	publicPaths := map[string]bool{
		"/health":          true,
		"/api/auth/signup": true,
		"/api/auth/login":  true,
	}

	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		publicPaths:    publicPaths,
	}
}

// Handler returns a Gin middleware handler that authenticates requests.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		user := m.trySessionAuth(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "authentication required",
			})
			return
		}

		m.setUserContext(c, user)
		c.Next()
	}
}

// RequireRole returns a handler that rejects authenticated users whose role
// does not match. Use after Handler().
func (m *Middleware) RequireRole(role entities.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserRole(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// trySessionAuth attempts to resolve the session into a live account.
func (m *Middleware) trySessionAuth(c *gin.Context) *entities.User {
	if m.sessionManager == nil {
		return nil
	}

	userID := m.sessionManager.GetUserID(c.Request)
	if userID == 0 {
		return nil
	}

	// Re-read the account so deleted users lose access immediately
	user, err := m.service.GetUserByID(userID)
	if err != nil {
		return nil
	}
	return user
}

func (m *Middleware) setUserContext(c *gin.Context, user *entities.User) {
	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyName, user.Name)
	c.Set(ContextKeyRole, user.Role)
}

func (m *Middleware) isPublicPath(path string) bool {
	if m.publicPaths[path] {
		return true
	}
	return strings.HasPrefix(path, "/static/")
}

// GetUserID extracts the authenticated user's ID from the Gin context.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetUserRole extracts the authenticated user's role from the Gin context.
func GetUserRole(c *gin.Context) entities.UserRole {
	if r, exists := c.Get(ContextKeyRole); exists {
		if role, ok := r.(entities.UserRole); ok {
			return role
		}
	}
	return ""
}
