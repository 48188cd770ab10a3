package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/audit"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/auth"
)

var ErrIncompleteEntry = errors.New("audit entry requires actor, action and entity")

// Service records leave decisions and lets HR administrators read them back.
type Service struct {
	repo   audit.Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo audit.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger.With(slog.String("component", "audit")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Record implements leave.AuditSink.
func (s *Service) Record(ctx context.Context, entry audit.Entry) error {
	if entry.ActorID == "" || entry.Action == "" || entry.EntityType == "" || entry.EntityID == "" {
		return ErrIncompleteEntry
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}

	if err := s.repo.Create(ctx, &entry); err != nil {
		return fmt.Errorf("record %s: %w", entry.Action, err)
	}

	s.logger.InfoContext(ctx, "audit entry recorded",
		slog.String("action", string(entry.Action)),
		slog.String("entity_id", entry.EntityID),
		slog.String("actor_id", entry.ActorID),
	)
	return nil
}

// List returns the newest entries matching filter. Admins only.
func (s *Service) List(ctx context.Context, actor auth.Actor, filter audit.Filter) ([]audit.EntryResponse, error) {
	if !actor.IsAdmin() {
		return nil, auth.ErrAdminAccessRequired
	}

	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]audit.EntryResponse, len(entries))
	for i, e := range entries {
		out[i] = audit.ToResponse(e)
	}
	return out, nil
}
