package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/entities"
)

const writeTimeout = 5 * time.Second

// Service provides high-level audit logging functionality. A nil *Service
// discards every event.
type Service struct {
	repo catalog.AuditRecorder
	wg   sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo catalog.AuditRecorder) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	if s == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := s.repo.LogEvent(ctx, event); err != nil {
			slog.Error("Failed to log audit event", "action", event.Action, "error", err)
		}
	}()
}

// Wait blocks until pending asynchronous writes finish.
func (s *Service) Wait() {
	if s == nil {
		return
	}
	s.wg.Wait()
}

// Change describes an admin mutation of a catalog record.
type Change struct {
	UserID     string
	Type       entities.AuditEventType // create, update or delete
	EntityType string                  // "book", "author", ...
	EntityID   string
	EntityName string
	IPAddress  string
	Err        error
}

// LogChange records a create, update or delete of a catalog record.
func (s *Service) LogChange(ch Change) {
	if s == nil {
		return
	}
	verb := map[entities.AuditEventType]string{
		entities.AuditEventCreate: "Created",
		entities.AuditEventUpdate: "Updated",
		entities.AuditEventDelete: "Deleted",
	}[ch.Type]

	event := &entities.AuditEvent{
		UserID:      ch.UserID,
		EventType:   ch.Type,
		Action:      ch.EntityType + "_" + string(ch.Type),
		Description: truncate(verb+" "+ch.EntityType+": "+ch.EntityName, 500),
		EntityType:  ch.EntityType,
		EntityID:    ch.EntityID,
		IPAddress:   ch.IPAddress,
		Status:      entities.AuditStatusSuccess,
	}
	if ch.Err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(ch.Err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogAuth records an authentication event. The username is kept in the
// description so failed attempts for unknown accounts remain traceable.
func (s *Service) LogAuth(userID, username, action, ipAddr, userAgent string, success bool) {
	if s == nil {
		return
	}
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventAuth,
		Action:      action,
		Description: truncate(action+": "+username, 500),
		IPAddress:   ipAddr,
		UserAgent:   truncate(userAgent, 500),
		Status:      entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// ListEvents returns the most recent audit events.
func (s *Service) ListEvents(ctx context.Context, limit int) ([]entities.AuditEvent, error) {
	return s.repo.ListEvents(ctx, limit)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

// truncate shortens a string to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
