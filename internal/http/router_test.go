package http

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterTemplatesParse(t *testing.T) {
	tmpl, err := loadTemplates()
	require.NoError(t, err)

	for _, name := range []string{
		"header", "footer", "404", "home", "login", "register", "setup", "audit",
		"books-index", "books-new", "books-edit", "books-show",
		"authors-index", "authors-show", "series-index", "series-show",
		"tags-index", "tags-show", "users-index", "users-edit",
	} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestNotFound(t *testing.T) {
	app := setupApp(t)

	rr := app.get("/no/such/page", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Page not found")
}

func TestStaticAssetsAndHeaders(t *testing.T) {
	app := setupApp(t)

	rr := app.get("/static/css/style.css", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))

	rr = app.get("/static/js/fileUpload.js", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "data-cover-target")
}

func TestSetupRegisterAndLogin(t *testing.T) {
	app := setupApp(t)

	rr := app.get("/login", nil)
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/setup", rr.Header().Get("Location"))

	rr = app.post("/setup", url.Values{
		"name":             {"Root"},
		"username":         {"root"},
		"password":         {"password123"},
		"confirm_password": {"password123"},
		"accessLevel":      {"10"},
	}, nil)
	require.Equal(t, http.StatusFound, rr.Code, rr.Body.String())
	assert.Equal(t, "/", rr.Header().Get("Location"))
	admin := sessionCookie(rr)
	require.NotNil(t, admin)

	rr = app.get("/", admin)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = app.post("/register", url.Values{
		"name":     {"Reader"},
		"username": {"reader"},
		"password": {"password123"},
	}, admin)
	require.Equal(t, http.StatusFound, rr.Code, rr.Body.String())

	rr = app.post("/login", url.Values{"username": {"reader"}, "password": {"wrong-password"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid username or password")

	rr = app.post("/login", url.Values{
		"username": {"reader"},
		"password": {"password123"},
		"next":     {"/books"},
	}, nil)
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/books", rr.Header().Get("Location"))
	reader := sessionCookie(rr)
	require.NotNil(t, reader)

	rr = app.get("/books", reader)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = app.post("/logout", nil, reader)
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))

	rr = app.get("/books", reader)
	assert.Equal(t, http.StatusFound, rr.Code)
}
