//go:build integration

package docstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/entities"
)

// setupMongo connects to the server named by MONGO_URL and returns stores on a
// throwaway database. Run with: go test -tags integration ./internal/docstore
func setupMongo(t *testing.T) catalog.Stores {
	t.Helper()

	uri := os.Getenv("MONGO_URL")
	if uri == "" {
		t.Skip("MONGO_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := NewMongoDB(ctx, uri, "catalog_test_"+entities.NewID()[:8])
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Database.Drop(context.Background())
		_ = db.Disconnect(context.Background())
	})
	return db.Stores()
}

func TestMongo_NamedRepositoryRoundTrip(t *testing.T) {
	stores := setupMongo(t)
	ctx := context.Background()

	author := &entities.Author{Name: "Jane Doe", AccessLevel: 1}
	require.NoError(t, stores.Authors.Save(ctx, author))
	require.NotEmpty(t, author.ID)

	loaded, err := stores.Authors.GetByID(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", loaded.Name)

	loaded.Name = "Jane Roe"
	require.NoError(t, stores.Authors.Save(ctx, loaded))

	visible, err := stores.Authors.List(ctx, catalog.VisibleTo(0))
	require.NoError(t, err)
	assert.Empty(t, visible)

	visible, err = stores.Authors.List(ctx, catalog.VisibleTo(1))
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Jane Roe", visible[0].Name)

	_, err = stores.Authors.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestMongo_SaveUnknownIDIsNotFound(t *testing.T) {
	stores := setupMongo(t)
	ctx := context.Background()

	ghost := &entities.Tag{Name: "Ghost"}
	ghost.ID = "does-not-exist"
	assert.ErrorIs(t, stores.Tags.Save(ctx, ghost), catalog.ErrNotFound)

	user := &entities.User{Name: "Nobody", Username: "nobody", Role: entities.UserRoleMember}
	user.ID = "does-not-exist"
	assert.ErrorIs(t, stores.Users.Save(ctx, user), catalog.ErrNotFound)

	book := &entities.Book{Title: "Lost"}
	book.ID = "does-not-exist"
	assert.ErrorIs(t, stores.Books.Save(ctx, book), catalog.ErrNotFound)
}

func TestMongo_DeleteBlockedByBooks(t *testing.T) {
	stores := setupMongo(t)
	ctx := context.Background()

	author := &entities.Author{Name: "Jane Doe"}
	require.NoError(t, stores.Authors.Save(ctx, author))
	series := &entities.Series{Name: "Saga"}
	require.NoError(t, stores.Series.Save(ctx, series))
	fantasy := &entities.Tag{Name: "Fantasy"}
	require.NoError(t, stores.Tags.Save(ctx, fantasy))
	classic := &entities.Tag{Name: "Classic"}
	require.NoError(t, stores.Tags.Save(ctx, classic))

	book := &entities.Book{
		Title:    "Title X",
		AuthorID: author.ID,
		SeriesID: &series.ID,
		TagIDs:   []string{classic.ID, fantasy.ID, "unknown"},
	}
	require.NoError(t, stores.Books.Save(ctx, book))
	assert.ElementsMatch(t, []string{classic.ID, fantasy.ID}, book.TagIDs)

	loaded, err := stores.Books.GetByID(ctx, book.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Author)
	assert.Equal(t, "Jane Doe", loaded.Author.Name)
	require.NotNil(t, loaded.Series)
	assert.Len(t, loaded.Tags, 2)

	assert.ErrorIs(t, stores.Authors.Delete(ctx, author.ID), catalog.ErrHasBooks)
	assert.ErrorIs(t, stores.Series.Delete(ctx, series.ID), catalog.ErrHasBooks)
	// tag_ids is an array; the guard matches any element.
	assert.ErrorIs(t, stores.Tags.Delete(ctx, fantasy.ID), catalog.ErrHasBooks)
	assert.ErrorIs(t, stores.Tags.Delete(ctx, classic.ID), catalog.ErrHasBooks)

	require.NoError(t, stores.Books.Delete(ctx, book.ID))
	assert.ErrorIs(t, stores.Books.Delete(ctx, book.ID), catalog.ErrNotFound)

	assert.NoError(t, stores.Tags.Delete(ctx, fantasy.ID))
	assert.NoError(t, stores.Series.Delete(ctx, series.ID))
	assert.NoError(t, stores.Authors.Delete(ctx, author.ID))
	assert.ErrorIs(t, stores.Authors.Delete(ctx, author.ID), catalog.ErrNotFound)
}

func TestMongo_UsersUniqueUsername(t *testing.T) {
	stores := setupMongo(t)
	ctx := context.Background()

	first := &entities.User{Name: "Kate", Username: "kate", Role: entities.UserRoleMember}
	require.NoError(t, stores.Users.Save(ctx, first))

	dup := &entities.User{Name: "Other Kate", Username: "kate", Role: entities.UserRoleMember}
	assert.ErrorIs(t, stores.Users.Save(ctx, dup), catalog.ErrDuplicate)

	found, err := stores.Users.GetByUsername(ctx, "kate")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	count, err := stores.Users.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, stores.Users.Delete(ctx, first.ID))
	_, err = stores.Users.GetByUsername(ctx, "kate")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
