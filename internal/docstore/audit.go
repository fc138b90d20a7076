package docstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/entities"
)

var _ catalog.AuditRecorder = (*AuditRepository)(nil)

type AuditRepository struct {
	coll *mongo.Collection
}

func (r *AuditRepository) LogEvent(ctx context.Context, event *entities.AuditEvent) error {
	if event.ID == "" {
		event.ID = entities.NewID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	_, err := r.coll.InsertOne(ctx, event)
	return err
}

func (r *AuditRepository) ListEvents(ctx context.Context, limit int) ([]entities.AuditEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	cur, err := r.coll.Find(ctx, bson.D{}, findOptions(bson.D{{Key: "created_at", Value: -1}}, limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []entities.AuditEvent
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *AuditRepository) DeleteOldEvents(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.D{{Key: "created_at", Value: bson.D{{Key: "$lt", Value: olderThan}}}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
