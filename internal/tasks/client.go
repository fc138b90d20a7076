package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// ErrShutdownTimeout is returned when workers are still busy at the deadline.
var ErrShutdownTimeout = errors.New("task workers did not finish before the deadline")

// Client runs the catalog's background queues on backlite. Queue state lives in
// its own SQLite file so workers never hold locks on the catalog database.
type Client struct {
	queue   *backlite.Client
	db      *sql.DB
	workers int
	running atomic.Bool
}

// TasksPath derives the queue database path from the catalog database path:
// "data/catalog.db" becomes "data/catalog-tasks.db".
func TasksPath(dbPath string) string {
	ext := filepath.Ext(dbPath)
	return strings.TrimSuffix(dbPath, ext) + "-tasks" + ext
}

// NewClient opens the queue database, installs the backlite schema and
// registers the given queues. Call Start to begin processing.
func NewClient(dbPath string, cfg Config, queues ...backlite.Queue) (*Client, error) {
	db, err := sql.Open("sqlite3", TasksPath(dbPath)+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Workers + 2)

	queue, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          queueLogger{},
	})
	if err == nil {
		err = queue.Install()
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set up task queue: %w", err)
	}

	c := &Client{queue: queue, db: db, workers: cfg.Workers}
	c.Register(queues...)
	return c, nil
}

// Register adds queues. Queues must be registered before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.queue.Register(q)
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (c *Client) Start(ctx context.Context) {
	if !c.running.CompareAndSwap(false, true) {
		return
	}
	slog.Info("Task queue started", "workers", c.workers)
	c.queue.Start(ctx)
}

// Shutdown waits for running tasks until ctx expires, then closes the queue
// database. Workers still busy at the deadline yield ErrShutdownTimeout.
func (c *Client) Shutdown(ctx context.Context) error {
	var err error
	if c.running.CompareAndSwap(true, false) && !c.queue.Stop(ctx) {
		err = ErrShutdownTimeout
	}
	return errors.Join(err, c.db.Close())
}

// Enqueue stores tasks for the workers and returns their IDs.
func (c *Client) Enqueue(ctx context.Context, tasks ...backlite.Task) ([]string, error) {
	return c.queue.Add(tasks...).Ctx(ctx).Save()
}

// EnqueueAuditCleanup schedules a CleanupAuditEventsTask and returns its ID.
func (c *Client) EnqueueAuditCleanup(ctx context.Context, retentionDays int) (string, error) {
	ids, err := c.Enqueue(ctx, CleanupAuditEventsTask{RetentionDays: retentionDays})
	if err != nil {
		return "", fmt.Errorf("enqueue audit cleanup: %w", err)
	}
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}

// queueLogger routes backlite's key/value logging to slog.
type queueLogger struct{}

func (queueLogger) Info(message string, params ...any) {
	slog.Info(message, append([]any{"component", "tasks"}, params...)...)
}

func (queueLogger) Error(message string, params ...any) {
	slog.Error(message, append([]any{"component", "tasks"}, params...)...)
}
