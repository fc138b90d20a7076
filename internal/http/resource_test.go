package http

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/entities"
)

func TestAccessLevelHidesRecords(t *testing.T) {
	app := setupApp(t)
	admin := app.admin(1)
	_, reader0 := app.user("reader0", entities.UserRoleMember, 0)
	_, reader1 := app.user("reader1", entities.UserRoleMember, 1)

	authorID := app.createdID("/authors", url.Values{"name": {"Jane Doe"}, "accessLevel": {"1"}}, admin)
	bookID := app.createdID("/books", url.Values{
		"title":       {"Title X"},
		"author":      {authorID},
		"accessLevel": {"1"},
	}, admin)

	t.Run("book list", func(t *testing.T) {
		rr := app.get("/books", reader0)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.NotContains(t, rr.Body.String(), "Title X")

		rr = app.get("/books", reader1)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Title X")
	})

	t.Run("author list", func(t *testing.T) {
		assert.NotContains(t, app.get("/authors", reader0).Body.String(), "Jane Doe")
		assert.Contains(t, app.get("/authors", reader1).Body.String(), "Jane Doe")
	})

	t.Run("home page", func(t *testing.T) {
		assert.NotContains(t, app.get("/", reader0).Body.String(), "Title X")
		assert.Contains(t, app.get("/", reader1).Body.String(), "Title X")
	})

	t.Run("direct links redirect to the index", func(t *testing.T) {
		for path, index := range map[string]string{
			"/books/" + bookID:            "/books",
			"/books/" + bookID + "/cover": "/books",
			"/authors/" + authorID:        "/authors",
		} {
			rr := app.get(path, reader0)
			assert.Equal(t, http.StatusFound, rr.Code, path)
			assert.Equal(t, index, rr.Header().Get("Location"), path)
		}

		rr := app.get("/books/"+bookID, reader1)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Jane Doe")
	})
}

func TestResourceCRUD(t *testing.T) {
	app := setupApp(t)
	admin := app.admin(5)
	ctx := context.Background()

	id := app.createdID("/tags", url.Values{"name": {"  Fantasy "}, "accessLevel": {"2"}}, admin)
	tag, err := app.stores.Tags.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Fantasy", tag.Name)
	assert.Equal(t, 2, tag.AccessLevel)

	rr := app.get("/tags/"+id, admin)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Tag Fantasy created.")

	rr = app.get("/tags/"+id+"/edit", admin)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `value="Fantasy"`)

	rr = app.post("/tags/"+id+"?_method=PUT", url.Values{"name": {"Sci-Fi"}, "accessLevel": {"0"}}, admin)
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/tags/"+id, rr.Header().Get("Location"))

	tag, err = app.stores.Tags.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Sci-Fi", tag.Name)
	assert.Equal(t, 0, tag.AccessLevel)

	rr = app.post("/tags/"+id, url.Values{"_method": {"DELETE"}}, admin)
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/tags", rr.Header().Get("Location"))

	_, err = app.stores.Tags.GetByID(ctx, id)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestResourceValidation(t *testing.T) {
	app := setupApp(t)
	admin := app.admin(1)

	tests := []struct {
		name    string
		path    string
		form    url.Values
		message string
	}{
		{
			name:    "author without name",
			path:    "/authors",
			form:    url.Values{"name": {"  "}},
			message: "Could not create author: name is required",
		},
		{
			name:    "series with negative level",
			path:    "/series",
			form:    url.Values{"name": {"Saga"}, "accessLevel": {"-1"}},
			message: "Could not create series: access level must be a non-negative number",
		},
		{
			name:    "book without title",
			path:    "/books",
			form:    url.Values{"author": {"missing"}},
			message: "Could not create book: title is required",
		},
		{
			name:    "book with unknown author",
			path:    "/books",
			form:    url.Values{"title": {"Orphan"}, "author": {"missing"}},
			message: "Could not create book: author does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := app.post(tt.path, tt.form, admin)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.message)
		})
	}

	books, err := app.stores.Books.List(context.Background(), catalog.Query{})
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestDeleteReferencedRecordIsBlocked(t *testing.T) {
	app := setupApp(t)
	admin := app.admin(1)
	ctx := context.Background()

	author := app.author("Jane Doe", 0)
	series := app.series("Saga", 0)
	book := &entities.Book{Title: "Title X", AuthorID: author.ID, SeriesID: &series.ID, SeriesIndex: 1}
	require.NoError(t, app.stores.Books.Save(ctx, book))

	rr := app.post("/authors/"+author.ID+"?_method=DELETE", nil, admin)
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/authors/"+author.ID, rr.Header().Get("Location"))
	_, err := app.stores.Authors.GetByID(ctx, author.ID)
	require.NoError(t, err)

	rr = app.get("/authors/"+author.ID, admin)
	assert.Contains(t, rr.Body.String(), "Could not remove author Jane Doe.")

	rr = app.post("/series/"+series.ID+"?_method=DELETE", nil, admin)
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/series/"+series.ID, rr.Header().Get("Location"))
	_, err = app.stores.Series.GetByID(ctx, series.ID)
	require.NoError(t, err)

	// Once the book is gone both can be removed.
	rr = app.post("/books/"+book.ID+"?_method=DELETE", nil, admin)
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/books", rr.Header().Get("Location"))

	rr = app.post("/authors/"+author.ID+"?_method=DELETE", nil, admin)
	assert.Equal(t, "/authors", rr.Header().Get("Location"))
	rr = app.post("/series/"+series.ID+"?_method=DELETE", nil, admin)
	assert.Equal(t, "/series", rr.Header().Get("Location"))

	_, err = app.stores.Authors.GetByID(ctx, author.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestMembersCannotWrite(t *testing.T) {
	app := setupApp(t)
	_, member := app.user("member", entities.UserRoleMember, 10)
	ctx := context.Background()

	author := app.author("Jane Doe", 0)

	requests := []struct {
		method string
		path   string
		form   url.Values
	}{
		{http.MethodGet, "/authors/new", nil},
		{http.MethodGet, "/authors/" + author.ID + "/edit", nil},
		{http.MethodPost, "/authors", url.Values{"name": {"Intruder"}}},
		{http.MethodPost, "/authors/" + author.ID + "?_method=PUT", url.Values{"name": {"Renamed"}}},
		{http.MethodPost, "/authors/" + author.ID + "?_method=DELETE", nil},
		{http.MethodGet, "/admin", nil},
		{http.MethodGet, "/admin/audit", nil},
	}

	for _, r := range requests {
		var code int
		var location string
		if r.method == http.MethodGet {
			rr := app.get(r.path, member)
			code, location = rr.Code, rr.Header().Get("Location")
		} else {
			rr := app.post(r.path, r.form, member)
			code, location = rr.Code, rr.Header().Get("Location")
		}
		assert.Equal(t, http.StatusFound, code, r.path)
		assert.Equal(t, "/", location, r.path)
	}

	authors, err := app.stores.Authors.List(ctx, catalog.Query{})
	require.NoError(t, err)
	require.Len(t, authors, 1)
	assert.Equal(t, "Jane Doe", authors[0].Name)
}

func TestAnonymousRequestsRedirectToLogin(t *testing.T) {
	app := setupApp(t)

	for _, path := range []string{"/", "/books", "/authors", "/series", "/tags", "/admin"} {
		rr := app.get(path, nil)
		assert.Equal(t, http.StatusFound, rr.Code, path)
		assert.Equal(t, "/login?next="+url.QueryEscape(path), rr.Header().Get("Location"), path)
	}
}
