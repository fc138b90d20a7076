package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUser        = "auth_user"
	ContextKeyUserID      = "auth_user_id"
	ContextKeyUsername    = "auth_username"
	ContextKeyRole        = "auth_role"
	ContextKeyAccessLevel = "auth_access_level"
)

// Middleware resolves the session user and guards routes.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, sessionManager *SessionManager) *Middleware {
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
	}
}

// Handler loads the session user, if any, into the Gin context. It never
// blocks a request; the Require* guards decide what anonymous users may do.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := m.sessionManager.GetUserID(c.Request)
		if userID == "" {
			c.Next()
			return
		}

		user, err := m.service.GetUserByID(c.Request.Context(), userID)
		switch {
		case err == nil:
			setUserContext(c, user)
		case errors.Is(err, ErrUserNotFound):
			// The account was removed while the session was alive.
			_ = m.sessionManager.DestroySession(c.Request)
		default:
			slog.Warn("Failed to load session user", "user_id", userID, "error", err)
		}
		c.Next()
	}
}

// setUserContext stores user information in the Gin context.
func setUserContext(c *gin.Context, user *entities.User) {
	c.Set(ContextKeyUser, user)
	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyUsername, user.Username)
	c.Set(ContextKeyRole, user.Role)
	c.Set(ContextKeyAccessLevel, user.AccessLevel)
}

// RequireAuthenticated redirects anonymous requests to the login page.
func (m *Middleware) RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAuthenticated(c) {
			c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireUnauthenticated sends logged-in users to the home page.
func (m *Middleware) RequireUnauthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsAuthenticated(c) {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole lets the request through only when the user's role is one of
// roles. Others are redirected home.
func (m *Middleware) RequireRole(roles ...entities.UserRole) gin.HandlerFunc {
	roleSet := make(map[entities.UserRole]bool)
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		if !roleSet[GetUserRole(c)] {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin is RequireRole(entities.UserRoleAdmin).
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return m.RequireRole(entities.UserRoleAdmin)
}

// Helper functions to extract auth data from Gin context

// GetUser returns the authenticated user or nil.
func GetUser(c *gin.Context) *entities.User {
	if v, exists := c.Get(ContextKeyUser); exists {
		if user, ok := v.(*entities.User); ok {
			return user
		}
	}
	return nil
}

// GetUserID retrieves the authenticated user's ID from the context.
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}

// GetUsername retrieves the authenticated user's username from the context.
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}

// GetUserRole retrieves the authenticated user's role from the context.
func GetUserRole(c *gin.Context) entities.UserRole {
	if r, exists := c.Get(ContextKeyRole); exists {
		if role, ok := r.(entities.UserRole); ok {
			return role
		}
	}
	return ""
}

// GetAccessLevel returns the user's access level, 0 when anonymous.
func GetAccessLevel(c *gin.Context) int {
	return c.GetInt(ContextKeyAccessLevel)
}

// IsAuthenticated returns true if the request carries a session user.
func IsAuthenticated(c *gin.Context) bool {
	return GetUserID(c) != ""
}

// IsAdmin returns true for authenticated administrators.
func IsAdmin(c *gin.Context) bool {
	return GetUserRole(c) == entities.UserRoleAdmin
}
