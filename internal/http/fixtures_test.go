package http

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

	"github.com/mrlokans/catalog/internal/audit"
	"github.com/mrlokans/catalog/internal/auth"
	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/config"
	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testMaxBodyBytes = 1 << 20

var testAuthConfig = config.Auth{
	SessionLifetime:  time.Hour,
	BcryptCost:       4, // Low cost for faster tests
	SecureCookies:    false,
	MaxLoginAttempts: 5,
	RateLimitWindow:  time.Minute,
	LockoutDuration:  time.Minute,
}

type testApp struct {
	t       *testing.T
	db      *database.Database
	stores  catalog.Stores
	auth    *auth.Service
	handler http.Handler
}

type appOption func(*RouterConfig)

func withAuditCleaner(cleaner AuditCleaner) appOption {
	return func(cfg *RouterConfig) { cfg.AuditCleaner = cleaner }
}

// setupApp builds the full router on a fresh SQLite database. CSRF is off so
// tests can post forms directly.
func setupApp(t *testing.T, opts ...appOption) *testApp {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlDB, err := db.SQL()
	require.NoError(t, err)
	sessions, err := auth.NewSessionManager(sqlDB, testAuthConfig, 0)
	require.NoError(t, err)

	stores := db.Stores()
	auditService := audit.NewService(stores.Audit)
	t.Cleanup(auditService.Wait)

	authService := auth.NewService(stores.Users, testAuthConfig)

	cfg := RouterConfig{
		Stores:         stores,
		Descriptions:   catalog.NewDescriptionRenderer(),
		Audit:          auditService,
		AuthService:    authService,
		AuthMiddleware: auth.NewMiddleware(authService, sessions),
		SessionManager: sessions,
		AuthConfig:     testAuthConfig,
		Version:        "test",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	router, stop := NewRouter(cfg)
	t.Cleanup(stop)

	return &testApp{
		t:       t,
		db:      db,
		stores:  stores,
		auth:    authService,
		handler: NewHandler(router, testMaxBodyBytes),
	}
}

// user creates an account and logs it in, returning its session cookie.
func (a *testApp) user(username string, role entities.UserRole, level int) (*entities.User, *http.Cookie) {
	a.t.Helper()

	user, err := a.auth.CreateUser(context.Background(), auth.UserForm{
		Name:        username,
		Username:    username,
		Password:    "password123",
		Role:        role,
		AccessLevel: level,
	})
	require.NoError(a.t, err)

	rr := a.post("/login", url.Values{"username": {username}, "password": {"password123"}}, nil)
	require.Equal(a.t, http.StatusFound, rr.Code, rr.Body.String())
	cookie := sessionCookie(rr)
	require.NotNil(a.t, cookie, "login did not set a session cookie")
	return user, cookie
}

func (a *testApp) admin(level int) *http.Cookie {
	_, cookie := a.user("admin", entities.UserRoleAdmin, level)
	return cookie
}

func (a *testApp) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func (a *testApp) post(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "192.0.2.1:1234"
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

// createdID posts a create form and returns the ID from the redirect.
func (a *testApp) createdID(basePath string, form url.Values, cookie *http.Cookie) string {
	a.t.Helper()

	rr := a.post(basePath, form, cookie)
	require.Equal(a.t, http.StatusFound, rr.Code, rr.Body.String())
	location := rr.Header().Get("Location")
	require.True(a.t, strings.HasPrefix(location, basePath+"/"), "unexpected redirect %q", location)
	return strings.TrimPrefix(location, basePath+"/")
}

func (a *testApp) author(name string, level int) *entities.Author {
	a.t.Helper()
	author := &entities.Author{Name: name, AccessLevel: level}
	require.NoError(a.t, a.stores.Authors.Save(context.Background(), author))
	return author
}

func (a *testApp) series(name string, level int) *entities.Series {
	a.t.Helper()
	series := &entities.Series{Name: name, AccessLevel: level}
	require.NoError(a.t, a.stores.Series.Save(context.Background(), series))
	return series
}

func (a *testApp) tag(name string, level int) *entities.Tag {
	a.t.Helper()
	tag := &entities.Tag{Name: name, AccessLevel: level}
	require.NoError(a.t, a.stores.Tags.Save(context.Background(), tag))
	return tag
}

func (a *testApp) book(title string, author *entities.Author, level int) *entities.Book {
	a.t.Helper()
	book := &entities.Book{Title: title, AuthorID: author.ID, AccessLevel: level}
	require.NoError(a.t, a.stores.Books.Save(context.Background(), book))
	return book
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == "catalog_session" {
			return c
		}
	}
	return nil
}
