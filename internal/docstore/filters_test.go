package docstore

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mrlokans/catalog/internal/catalog"
)

func intPtr(v int) *int { return &v }

func TestBaseFilter(t *testing.T) {
	t.Run("empty query matches everything", func(t *testing.T) {
		assert.Empty(t, baseFilter(catalog.Query{}, "name"))
	})

	t.Run("access level and escaped name", func(t *testing.T) {
		filter := baseFilter(catalog.Query{MaxAccessLevel: intPtr(2), Name: " a.b "}, "name")
		require.Len(t, filter, 2)
		assert.Equal(t, bson.E{Key: "access_level", Value: bson.D{{Key: "$lte", Value: 2}}}, filter[0])
		assert.Equal(t, bson.E{Key: "name", Value: primitive.Regex{Pattern: `a\.b`, Options: "i"}}, filter[1])
	})

	t.Run("several name fields are OR-ed", func(t *testing.T) {
		filter := baseFilter(catalog.Query{Name: "jo"}, "name", "username")
		require.Len(t, filter, 1)
		assert.Equal(t, "$or", filter[0].Key)
		assert.Len(t, filter[0].Value, 2)
	})
}

func TestBookFilter(t *testing.T) {
	after := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	filter := bookFilter(catalog.Query{
		TagID:          "tag-1",
		MinWordCount:   intPtr(100),
		MaxWordCount:   intPtr(500),
		PublishedAfter: &after,
	})

	assert.Equal(t, bson.D{
		{Key: "tag_ids", Value: "tag-1"},
		{Key: "word_count", Value: bson.D{{Key: "$gte", Value: 100}, {Key: "$lte", Value: 500}}},
		{Key: "publish_date", Value: bson.D{{Key: "$gte", Value: after}}},
	}, filter)
}

func TestBookSort(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "title", Value: 1}}, bookSort(catalog.Query{}))
	assert.Equal(t, bson.D{{Key: "created_at", Value: -1}}, bookSort(catalog.Query{Newest: true}))
	assert.Equal(t, "series_index", bookSort(catalog.Query{SeriesID: "s"})[0].Key)
}

func TestFindOptions(t *testing.T) {
	opts := findOptions(bson.D{{Key: "name", Value: 1}}, 10)
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(10), *opts.Limit)

	assert.Nil(t, findOptions(bson.D{}, 0).Limit)
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(mongo.ErrNoDocuments), catalog.ErrNotFound)

	other := errors.New("boom")
	assert.Equal(t, other, translateError(other))
}
