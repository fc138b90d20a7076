package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/entities"
)

func formContext(body string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c
}

func queryContext(query string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return c
}

func TestFormAccessLevel(t *testing.T) {
	level, err := formAccessLevel(formContext(""))
	require.NoError(t, err)
	assert.Equal(t, entities.DefaultAccessLevel, level)

	level, err = formAccessLevel(formContext("accessLevel=+7"))
	require.NoError(t, err)
	assert.Equal(t, 7, level)

	level, err = formAccessLevel(formContext("accessLevel=0"))
	require.NoError(t, err)
	assert.Equal(t, 0, level)

	for _, raw := range []string{"-1", "high", "1.5"} {
		_, err := formAccessLevel(formContext("accessLevel=" + raw))
		assert.ErrorIs(t, err, catalog.ErrInvalidInput, raw)
	}
}

func TestQueryInt(t *testing.T) {
	v := queryInt(queryContext("n=42"), "n")
	require.NotNil(t, v)
	assert.Equal(t, 42, *v)

	assert.Nil(t, queryInt(queryContext(""), "n"))
	assert.Nil(t, queryInt(queryContext("n=many"), "n"))
}

func TestQueryDate(t *testing.T) {
	v := queryDate(queryContext("d=2020-05-06"), "d")
	require.NotNil(t, v)
	assert.Equal(t, time.Date(2020, 5, 6, 0, 0, 0, 0, time.UTC), *v)

	assert.Nil(t, queryDate(queryContext("d=06.05.2020"), "d"))
	assert.Nil(t, queryDate(queryContext(""), "d"))
}

func TestFormErrorMessage(t *testing.T) {
	assert.Equal(t, "Could not create author: name is required",
		formErrorMessage(catalog.Invalid("name", "is required"), "create", "Author"))
	assert.Equal(t, "Could not update user: already exists",
		formErrorMessage(catalog.ErrDuplicate, "update", "User"))
	assert.Equal(t, "Could not update book.",
		formErrorMessage(errors.New("disk I/O error"), "update", "Book"))
}
