package docstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/entities"
)

var _ catalog.UserRepository = (*UserRepository)(nil)

// UserRepository relies on the unique username index from EnsureIndexes.
type UserRepository struct {
	coll *mongo.Collection
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.findOne(ctx, bson.D{{Key: "username", Value: username}})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.D) (*entities.User, error) {
	var u entities.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translateError(err)
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context, q catalog.Query) ([]*entities.User, error) {
	cur, err := r.coll.Find(ctx, baseFilter(q, "name", "username"), findOptions(bson.D{{Key: "name", Value: 1}}, q.Limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []*entities.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Save(ctx context.Context, u *entities.User) error {
	u.Touch(time.Now())
	if u.ID == "" {
		u.ID = entities.NewID()
		_, err := r.coll.InsertOne(ctx, u)
		return translateError(err)
	}

	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: u.ID}}, u)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Count returns the number of documents in the users collection.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{})
}
