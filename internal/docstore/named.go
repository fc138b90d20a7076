package docstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/entities"
)

type document interface {
	catalog.Entity
	SetID(id string)
	Touch(now time.Time)
}

// namedRepository stores the name/access-level records books point at:
// authors, series and tags. refField is the books field holding the reference.
type namedRepository[T any, E interface {
	*T
	document
}] struct {
	coll     *mongo.Collection
	books    *mongo.Collection
	refField string
}

func newNamedRepository[T any, E interface {
	*T
	document
}](coll, books *mongo.Collection, refField string) *namedRepository[T, E] {
	return &namedRepository[T, E]{coll: coll, books: books, refField: refField}
}

func (r *namedRepository[T, E]) GetByID(ctx context.Context, id string) (E, error) {
	var doc T
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return E(&doc), nil
}

func (r *namedRepository[T, E]) List(ctx context.Context, q catalog.Query) ([]E, error) {
	cur, err := r.coll.Find(ctx, baseFilter(q, "name"), findOptions(bson.D{{Key: "name", Value: 1}}, q.Limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []E
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *namedRepository[T, E]) Save(ctx context.Context, e E) error {
	e.Touch(time.Now())
	if e.GetID() == "" {
		e.SetID(entities.NewID())
		_, err := r.coll.InsertOne(ctx, e)
		return translateError(err)
	}

	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: e.GetID()}}, e)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Delete refuses while any book still references the record. The check and
// the delete are separate operations.
func (r *namedRepository[T, E]) Delete(ctx context.Context, id string) error {
	count, err := r.books.CountDocuments(ctx, bson.D{{Key: r.refField, Value: id}})
	if err != nil {
		return err
	}
	if count > 0 {
		return catalog.ErrHasBooks
	}

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
