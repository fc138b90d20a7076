package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/catalog/internal/config"
	"github.com/mrlokans/catalog/internal/database/dbutil"
	"github.com/mrlokans/catalog/internal/database/users"
	"github.com/mrlokans/catalog/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testAuthConfig = config.Auth{
	SessionLifetime:  time.Hour,
	BcryptCost:       4, // Low cost for faster tests
	SecureCookies:    false,
	MaxLoginAttempts: 3,
	RateLimitWindow:  time.Minute,
	LockoutDuration:  time.Minute,
}

type fixture struct {
	db         *gorm.DB
	service    *Service
	sessions   *SessionManager
	middleware *Middleware
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "auth.db")+"?_journal=WAL&_busy_timeout=5000&_txlock=immediate"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(dbutil.Models()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	sm, err := NewSessionManager(sqlDB, testAuthConfig, 0)
	require.NoError(t, err)

	svc := NewService(users.NewRepository(db), testAuthConfig)
	return &fixture{
		db:         db,
		service:    svc,
		sessions:   sm,
		middleware: NewMiddleware(svc, sm),
	}
}

func (f *fixture) createUser(t *testing.T, username string, role entities.UserRole, level int) *entities.User {
	t.Helper()
	user, err := f.service.CreateUser(context.Background(), UserForm{
		Name:        strings.ToUpper(username[:1]) + username[1:],
		Username:    username,
		Password:    "password123",
		Role:        role,
		AccessLevel: level,
	})
	require.NoError(t, err)
	return user
}

// router returns an engine with the session and user loader installed.
func (f *fixture) router() *gin.Engine {
	router := gin.New()
	router.Use(f.sessions.SessionLoadSave())
	router.Use(f.middleware.Handler())
	return router
}

// stubRenderer writes the template name and error so tests can assert on them.
type stubRenderer struct{}

func (stubRenderer) Render(c *gin.Context, status int, name string, data gin.H) {
	body := "template=" + name
	if msg, ok := data["Error"].(string); ok && msg != "" {
		body += " error=" + msg
	}
	c.String(status, body)
}

func postForm(router http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "192.0.2.1:1234"
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func get(router http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == "catalog_session" {
			return c
		}
	}
	return nil
}
