package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/entities"
)

var _ catalog.Repository[*entities.Book] = (*BookRepository)(nil)

type BookRepository struct {
	books   *mongo.Collection
	authors *mongo.Collection
	series  *mongo.Collection
	tags    *mongo.Collection
}

func NewBookRepository(db *DB) *BookRepository {
	return &BookRepository{
		books:   db.collection(collBooks),
		authors: db.collection(collAuthors),
		series:  db.collection(collSeries),
		tags:    db.collection(collTags),
	}
}

// GetByID loads a book and populates its author, series and tags.
func (r *BookRepository) GetByID(ctx context.Context, id string) (*entities.Book, error) {
	var book entities.Book
	if err := r.books.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&book); err != nil {
		return nil, translateError(err)
	}

	var author entities.Author
	err := r.authors.FindOne(ctx, bson.D{{Key: "_id", Value: book.AuthorID}}).Decode(&author)
	switch {
	case err == nil:
		book.Author = &author
	case !errors.Is(err, mongo.ErrNoDocuments):
		return nil, fmt.Errorf("failed to load author: %w", err)
	}

	if book.SeriesID != nil {
		var series entities.Series
		err := r.series.FindOne(ctx, bson.D{{Key: "_id", Value: *book.SeriesID}}).Decode(&series)
		switch {
		case err == nil:
			book.Series = &series
		case !errors.Is(err, mongo.ErrNoDocuments):
			return nil, fmt.Errorf("failed to load series: %w", err)
		}
	}

	tags, err := r.loadTags(ctx, book.TagIDs)
	if err != nil {
		return nil, err
	}
	book.Tags = tags
	return &book, nil
}

func (r *BookRepository) loadTags(ctx context.Context, ids []string) ([]entities.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.tags.Find(ctx,
		bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	defer cur.Close(ctx)

	var tags []entities.Tag
	if err := cur.All(ctx, &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	return tags, nil
}

// List returns matching books with authors populated and without cover bytes.
func (r *BookRepository) List(ctx context.Context, q catalog.Query) ([]*entities.Book, error) {
	opts := findOptions(bookSort(q), q.Limit).SetProjection(bson.D{{Key: "cover_image", Value: 0}})
	cur, err := r.books.Find(ctx, bookFilter(q), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var books []*entities.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	if err := r.populateAuthors(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *BookRepository) populateAuthors(ctx context.Context, books []*entities.Book) error {
	if len(books) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	ids := make([]string, 0, len(books))
	for _, b := range books {
		if !seen[b.AuthorID] {
			seen[b.AuthorID] = true
			ids = append(ids, b.AuthorID)
		}
	}

	cur, err := r.authors.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return fmt.Errorf("failed to load authors: %w", err)
	}
	defer cur.Close(ctx)

	var authors []*entities.Author
	if err := cur.All(ctx, &authors); err != nil {
		return fmt.Errorf("failed to decode authors: %w", err)
	}
	byID := make(map[string]*entities.Author, len(authors))
	for _, a := range authors {
		byID[a.ID] = a
	}
	for _, b := range books {
		b.Author = byID[b.AuthorID]
	}
	return nil
}

// Save stores the book document. Tag IDs that do not resolve to a tag are
// dropped so the stored references stay valid.
func (r *BookRepository) Save(ctx context.Context, book *entities.Book) error {
	tags, err := r.loadTags(ctx, book.TagIDs)
	if err != nil {
		return err
	}
	book.Tags = tags
	book.SyncTagIDs()
	book.Touch(time.Now())

	if book.ID == "" {
		book.ID = entities.NewID()
		_, err := r.books.InsertOne(ctx, book)
		return translateError(err)
	}

	res, err := r.books.ReplaceOne(ctx, bson.D{{Key: "_id", Value: book.ID}}, book)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (r *BookRepository) Delete(ctx context.Context, id string) error {
	res, err := r.books.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
