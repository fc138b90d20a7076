package entrypoint

import (
	"context"
	"log/slog"

	"github.com/mrlokans/catalog/internal/scheduler"
	"github.com/mrlokans/catalog/internal/tasks"
)

type auditEnqueuer interface {
	EnqueueAuditCleanup(ctx context.Context, retentionDays int) (string, error)
}

// auditCleanupJob enqueues a cleanup task when the queue is enabled and
// deletes old events inline otherwise.
func auditCleanupJob(queue auditEnqueuer, cleaner tasks.AuditEventCleaner, retentionDays int) scheduler.Job {
	return func(ctx context.Context) error {
		if queue != nil {
			id, err := queue.EnqueueAuditCleanup(ctx, retentionDays)
			if err != nil {
				return err
			}
			slog.Info("Audit cleanup enqueued", "task_id", id)
			return nil
		}

		retention := tasks.CleanupAuditEventsTask{RetentionDays: retentionDays}.Retention()
		deleted, err := cleaner.DeleteOldEvents(ctx, retention)
		if err != nil {
			return err
		}
		slog.Info("Cleaned up audit events", "deleted", deleted, "retention", retention)
		return nil
	}
}
