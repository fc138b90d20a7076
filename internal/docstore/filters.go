package docstore

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mrlokans/catalog/internal/catalog"
)

// baseFilter applies the access level and name filters shared by every
// collection. nameFields are OR-ed.
func baseFilter(q catalog.Query, nameFields ...string) bson.D {
	filter := bson.D{}
	if q.MaxAccessLevel != nil {
		filter = append(filter, bson.E{Key: "access_level", Value: bson.D{{Key: "$lte", Value: *q.MaxAccessLevel}}})
	}

	term := strings.TrimSpace(q.Name)
	if term == "" || len(nameFields) == 0 {
		return filter
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	if len(nameFields) == 1 {
		return append(filter, bson.E{Key: nameFields[0], Value: pattern})
	}
	alternatives := bson.A{}
	for _, field := range nameFields {
		alternatives = append(alternatives, bson.D{{Key: field, Value: pattern}})
	}
	return append(filter, bson.E{Key: "$or", Value: alternatives})
}

// bookFilter extends baseFilter with the book-only reference and range filters.
func bookFilter(q catalog.Query) bson.D {
	filter := baseFilter(q, "title")
	if q.AuthorID != "" {
		filter = append(filter, bson.E{Key: "author_id", Value: q.AuthorID})
	}
	if q.SeriesID != "" {
		filter = append(filter, bson.E{Key: "series_id", Value: q.SeriesID})
	}
	if q.TagID != "" {
		filter = append(filter, bson.E{Key: "tag_ids", Value: q.TagID})
	}

	words := bson.D{}
	if q.MinWordCount != nil {
		words = append(words, bson.E{Key: "$gte", Value: *q.MinWordCount})
	}
	if q.MaxWordCount != nil {
		words = append(words, bson.E{Key: "$lte", Value: *q.MaxWordCount})
	}
	if len(words) > 0 {
		filter = append(filter, bson.E{Key: "word_count", Value: words})
	}

	published := bson.D{}
	if q.PublishedAfter != nil {
		published = append(published, bson.E{Key: "$gte", Value: *q.PublishedAfter})
	}
	if q.PublishedBefore != nil {
		published = append(published, bson.E{Key: "$lte", Value: *q.PublishedBefore})
	}
	if len(published) > 0 {
		filter = append(filter, bson.E{Key: "publish_date", Value: published})
	}
	return filter
}

// bookSort mirrors the relational ordering: newest first, series order, or title.
func bookSort(q catalog.Query) bson.D {
	switch {
	case q.Newest:
		return bson.D{{Key: "created_at", Value: -1}}
	case q.SeriesID != "":
		return bson.D{{Key: "series_index", Value: 1}, {Key: "title", Value: 1}}
	default:
		return bson.D{{Key: "title", Value: 1}}
	}
}

func findOptions(sort bson.D, limit int) *options.FindOptions {
	opts := options.Find().SetSort(sort)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}
