// Package docstore implements the catalog repositories on MongoDB.
//
// Documents reuse the entity structs through their bson tags. Books store
// author_id, series_id and tag_ids; the referenced records are populated on
// read. Unlike the SQLite store, the referential check before deleting an
// author, series or tag is not atomic with the delete: a book inserted in
// between keeps a dangling reference.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/entities"
)

const (
	collUsers   = "users"
	collAuthors = "authors"
	collBooks   = "books"
	collSeries  = "series"
	collTags    = "tags"
	collAudit   = "audit_events"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(ctx context.Context, uri, dbName string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	slog.Info("Connected to MongoDB", "database", dbName)

	db := &DB{
		Client:   client,
		Database: client.Database(dbName),
	}
	if err := db.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

func (db *DB) collection(name string) *mongo.Collection {
	return db.Database.Collection(name)
}

// EnsureIndexes creates the unique username index and the book reference
// indexes used by the deletion checks.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	_, err := db.collection(collUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	_, err = db.collection(collBooks).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "author_id", Value: 1}}},
		{Keys: bson.D{{Key: "series_id", Value: 1}, {Key: "series_index", Value: 1}}},
		{Keys: bson.D{{Key: "tag_ids", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create books indexes: %w", err)
	}

	_, err = db.collection(collAudit).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create audit index: %w", err)
	}
	return nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, nil)
}

func (db *DB) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Client.Disconnect(ctx)
}

// Stores wires the MongoDB repositories into the catalog store bundle.
func (db *DB) Stores() catalog.Stores {
	books := db.collection(collBooks)
	return catalog.Stores{
		Users:   &UserRepository{coll: db.collection(collUsers)},
		Authors: newNamedRepository[entities.Author](db.collection(collAuthors), books, "author_id"),
		Books:   NewBookRepository(db),
		Series:  newNamedRepository[entities.Series](db.collection(collSeries), books, "series_id"),
		Tags:    newNamedRepository[entities.Tag](db.collection(collTags), books, "tag_ids"),
		Audit:   &AuditRepository{coll: db.collection(collAudit)},
		Health:  db,
	}
}

// translateError maps driver errors onto the catalog sentinels.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return catalog.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", catalog.ErrDuplicate, err)
	default:
		return err
	}
}
