package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/frahmantamala/tenant-admin/internal/core/events"
	"github.com/google/uuid"
)

type Repository interface {
	CreateAuditLog(ctx context.Context, entry Entry) error
	CreateLoginAttempt(ctx context.Context, attempt Attempt) error
	ListAuditLogs(ctx context.Context, filter Filter) ([]LogView, error)
}

// Service writes audit records through the event bus so the request path
// never waits on audit persistence. Login attempts bypass the bus: they are
// written before the authentication response goes out.
type Service struct {
	repo   Repository
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo Repository, bus *events.EventBus, logger *slog.Logger) *Service {
	s := &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}

	bus.Subscribe(EventTypeAuditRecorded, s.persistAuditEvent)
	return s
}

// Record publishes the entry asynchronously. Failures are logged by the bus
// handler and never reach the caller.
func (s *Service) Record(ctx context.Context, entry Entry) {
	event := events.BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventTypeAuditRecorded,
		Timestamp: time.Now(),
		Data:      entry,
	}

	// detach from the request context so an in-flight write survives the
	// response being sent
	if err := s.bus.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Error("failed to publish audit event", "action", entry.Action, "error", err)
	}
}

func (s *Service) persistAuditEvent(ctx context.Context, event events.Event) error {
	entry, ok := event.Payload().(Entry)
	if !ok {
		s.logger.Error("audit event carried unexpected payload", "event_id", event.EventID())
		return nil
	}

	if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Error("failed to persist audit log",
			"action", entry.Action,
			"entity", entry.Entity,
			"error", err)
	}
	return nil
}

func (s *Service) RecordLoginAttempt(ctx context.Context, attempt Attempt) error {
	return s.repo.CreateLoginAttempt(ctx, attempt)
}

func (s *Service) ListAuditLogs(ctx context.Context, filter Filter) ([]LogView, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.repo.ListAuditLogs(ctx, filter)
}

// MarshalMeta renders entry metadata for storage; invalid values degrade to
// an empty object instead of failing the write.
func MarshalMeta(meta map[string]interface{}) string {
	if len(meta) == 0 {
		return ""
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return "{}"
	}
	return string(b)
}
