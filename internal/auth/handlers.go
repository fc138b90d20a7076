package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/audit"
	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/config"
	"github.com/mrlokans/catalog/internal/entities"
)

const invalidCredentialsMessage = "Invalid username or password"

// setupMutex serializes setup requests to prevent race conditions.
var setupMutex sync.Mutex

// Renderer renders a named page template with the shared layout data.
type Renderer interface {
	Render(c *gin.Context, status int, name string, data gin.H)
}

// isLocalPath validates that a redirect path is local to prevent open redirect attacks.
func isLocalPath(path string) bool {
	if path == "" {
		return false
	}
	if !strings.HasPrefix(path, "/") {
		return false
	}
	// Reject protocol-relative URLs (//evil.com)
	if strings.HasPrefix(path, "//") {
		return false
	}
	if strings.Contains(path, "://") {
		return false
	}
	if strings.Contains(path, "\\") {
		return false
	}
	// Browsers drop tabs and newlines, so "/\t/evil.com" becomes "//evil.com".
	for i := 0; i < len(path); i++ {
		if path[i] < 0x20 || path[i] == 0x7f {
			return false
		}
	}
	return true
}

// sanitizeRedirectPath returns a safe redirect path, defaulting to "/" if invalid.
func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/"
}

// AuthController handles authentication-related HTTP endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	renderer       Renderer
	audit          *audit.Service
	rateLimiter    *RateLimiter
}

// NewAuthController creates a new authentication controller.
func NewAuthController(service *Service, sessionManager *SessionManager, renderer Renderer, auditService *audit.Service, cfg config.Auth) *AuthController {
	rateLimiter := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	})

	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		renderer:       renderer,
		audit:          auditService,
		rateLimiter:    rateLimiter,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRouter, m *Middleware) {
	guest := router.Group("", m.RequireUnauthenticated())
	guest.GET("/login", ac.LoginPage)
	guest.POST("/login", ac.Login)
	guest.GET("/setup", ac.SetupPage)
	guest.POST("/setup", ac.Setup)

	router.POST("/logout", ac.Logout)
	router.GET("/logout", ac.Logout)

	admin := router.Group("", m.RequireAuthenticated(), m.RequireAdmin())
	admin.GET("/register", ac.RegisterPage)
	admin.POST("/register", ac.Register)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	ac.rateLimiter.Stop()
}

// LoginPage renders the login form.
func (ac *AuthController) LoginPage(c *gin.Context) {
	hasUsers, err := ac.service.HasUsers(c.Request.Context())
	if err == nil && !hasUsers {
		c.Redirect(http.StatusFound, "/setup")
		return
	}

	ac.renderer.Render(c, http.StatusOK, "login", gin.H{
		"Title": "Login",
		"Next":  sanitizeRedirectPath(c.Query("next")),
		"Error": c.Query("error"),
	})
}

// Login handles the login form submission.
func (ac *AuthController) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	next := sanitizeRedirectPath(c.PostForm("next"))
	clientIP := c.ClientIP()

	fail := func(status int, message string) {
		ac.renderer.Render(c, status, "login", gin.H{
			"Title":    "Login",
			"Next":     next,
			"Username": username,
			"Error":    message,
		})
	}

	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, username); !allowed {
		c.Header("Retry-After", retryAfter.String())
		fail(http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
		return
	}

	user, err := ac.service.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			slog.Error("Login failed", "username", username, "error", err)
		}
		ac.rateLimiter.RecordFailure(clientIP, username)
		ac.audit.LogAuth("", username, "login", clientIP, c.Request.UserAgent(), false)
		fail(http.StatusUnauthorized, invalidCredentialsMessage)
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, username)

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		slog.Error("Failed to create session", "username", username, "error", err)
		fail(http.StatusInternalServerError, "Failed to create session")
		return
	}
	ac.audit.LogAuth(user.ID, user.Username, "login", clientIP, c.Request.UserAgent(), true)

	c.Redirect(http.StatusFound, next)
}

// Logout destroys the session and redirects to login.
func (ac *AuthController) Logout(c *gin.Context) {
	if userID := GetUserID(c); userID != "" {
		ac.audit.LogAuth(userID, GetUsername(c), "logout", c.ClientIP(), c.Request.UserAgent(), true)
	}
	_ = ac.sessionManager.DestroySession(c.Request)
	c.Redirect(http.StatusFound, "/login")
}

// RegisterPage renders the admin form for creating an account.
func (ac *AuthController) RegisterPage(c *gin.Context) {
	ac.renderer.Render(c, http.StatusOK, "register", gin.H{
		"Title": "Register user",
		"Form":  UserForm{Role: entities.UserRoleMember, AccessLevel: entities.DefaultAccessLevel},
	})
}

// Register creates an account on behalf of an administrator.
func (ac *AuthController) Register(c *gin.Context) {
	form, err := ParseUserForm(c)
	var user *entities.User
	if err == nil {
		user, err = ac.service.CreateUser(c.Request.Context(), form)
	}
	if err != nil {
		message := "Error creating user"
		if detail := catalog.UserMessage(err); detail != "" {
			message += ": " + detail
		} else {
			slog.Error("Failed to register user", "username", form.Username, "error", err)
		}
		form.Password = ""
		ac.renderer.Render(c, http.StatusBadRequest, "register", gin.H{
			"Title": "Register user",
			"Form":  form,
			"Error": message,
		})
		return
	}

	ac.audit.LogChange(audit.Change{
		UserID:     GetUserID(c),
		Type:       entities.AuditEventCreate,
		EntityType: "user",
		EntityID:   user.ID,
		EntityName: user.Username,
		IPAddress:  c.ClientIP(),
	})
	ac.sessionManager.SetFlash(c.Request, FlashInfo, "User "+user.Username+" registered")
	c.Redirect(http.StatusFound, "/admin")
}

// SetupPage renders the initial admin setup form.
func (ac *AuthController) SetupPage(c *gin.Context) {
	hasUsers, err := ac.service.HasUsers(c.Request.Context())
	if err != nil {
		ac.renderSetup(c, http.StatusInternalServerError, UserForm{}, "Database error. Please try again.")
		return
	}
	if hasUsers {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	ac.renderSetup(c, http.StatusOK, UserForm{AccessLevel: setupAccessLevel}, c.Query("error"))
}

// setupAccessLevel is suggested for the first administrator.
const setupAccessLevel = 10

// Setup handles the initial admin user creation.
// Uses a mutex to prevent race conditions where concurrent requests both pass HasUsers() check.
func (ac *AuthController) Setup(c *gin.Context) {
	setupMutex.Lock()
	defer setupMutex.Unlock()

	hasUsers, err := ac.service.HasUsers(c.Request.Context())
	if err != nil {
		ac.renderSetup(c, http.StatusInternalServerError, UserForm{}, "Database error. Please try again.")
		return
	}
	if hasUsers {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	form, err := ParseUserForm(c)
	form.Role = entities.UserRoleAdmin
	if err != nil {
		ac.renderSetup(c, http.StatusBadRequest, form, "Error creating user: "+catalog.UserMessage(err))
		return
	}
	if form.Password != c.PostForm("confirm_password") {
		ac.renderSetup(c, http.StatusBadRequest, form, "Passwords do not match")
		return
	}

	user, err := ac.service.CreateUser(c.Request.Context(), form)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			// Another request won the race, redirect to login
			c.Redirect(http.StatusFound, "/login")
			return
		}
		message := "Failed to create user"
		if detail := catalog.UserMessage(err); detail != "" {
			message = "Error creating user: " + detail
		} else {
			slog.Error("Setup failed", "error", err)
		}
		ac.renderSetup(c, http.StatusBadRequest, form, message)
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		slog.Error("Failed to create session after setup", "error", err)
		c.Redirect(http.StatusFound, "/login")
		return
	}
	ac.audit.LogAuth(user.ID, user.Username, "setup", c.ClientIP(), c.Request.UserAgent(), true)
	c.Redirect(http.StatusFound, "/")
}

func (ac *AuthController) renderSetup(c *gin.Context, status int, form UserForm, message string) {
	form.Password = ""
	ac.renderer.Render(c, status, "setup", gin.H{
		"Title": "Initial Setup",
		"Form":  form,
		"Error": message,
	})
}
