// Package catalog defines the storage-agnostic contracts of the library
// catalog: entity capabilities, repository interfaces, list queries and the
// sentinel errors shared by every store.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mrlokans/catalog/internal/entities"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrHasBooks     = errors.New("still referenced by books")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("already exists")
)

// Entity is implemented by every record served through a repository.
type Entity interface {
	GetID() string
	GetAccessLevel() int
	DisplayName() string
}

// ValidationError describes a rejected form field. It matches ErrInvalidInput.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Invalid builds a ValidationError for the given field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// UserMessage returns the part of err that is safe to show in a form, or an
// empty string for internal failures.
func UserMessage(err error) string {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, ErrDuplicate):
		return ErrDuplicate.Error()
	default:
		return ""
	}
}

// Query narrows a List call. Zero values leave the corresponding filter off.
type Query struct {
	// MaxAccessLevel hides entities above the given level; nil means unrestricted.
	MaxAccessLevel *int
	// Name is a case-insensitive substring match on the name (title for books,
	// name or username for users).
	Name string

	// Book-only filters.
	AuthorID        string
	SeriesID        string
	TagID           string
	MinWordCount    *int
	MaxWordCount    *int
	PublishedAfter  *time.Time
	PublishedBefore *time.Time

	// Newest orders by creation time, most recent first.
	Newest bool
	Limit  int
}

// VisibleTo returns a query restricted to what a user with the given access
// level may see.
func VisibleTo(level int) Query {
	return Query{MaxAccessLevel: &level}
}

// CanView reports whether an entity is visible at the given access level.
func CanView(e Entity, level int) bool {
	return e.GetAccessLevel() <= level
}

// Repository is the persistence capability every resource handler relies on.
// Save inserts when the entity has no ID yet and updates it otherwise. Delete
// returns ErrHasBooks when books still reference the entity.
type Repository[E Entity] interface {
	GetByID(ctx context.Context, id string) (E, error)
	List(ctx context.Context, q Query) ([]E, error)
	Save(ctx context.Context, e E) error
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	Repository[*entities.User]
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	Count(ctx context.Context) (int64, error)
}

// AuditRecorder persists audit events.
type AuditRecorder interface {
	LogEvent(ctx context.Context, event *entities.AuditEvent) error
	ListEvents(ctx context.Context, limit int) ([]entities.AuditEvent, error)
	DeleteOldEvents(ctx context.Context, olderThan time.Time) (int64, error)
}

// Pinger reports store liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Stores bundles the repositories of one storage backend.
type Stores struct {
	Users   UserRepository
	Authors Repository[*entities.Author]
	Books   Repository[*entities.Book]
	Series  Repository[*entities.Series]
	Tags    Repository[*entities.Tag]
	Audit   AuditRecorder
	Health  Pinger
}
