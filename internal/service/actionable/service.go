package actionable

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

type itemRepo interface {
	Create(ctx context.Context, item *domain.ActionableItem) (*domain.ActionableItem, error)
	GetByID(ctx context.Context, userID, itemID uuid.UUID) (*domain.ActionableItem, error)
	ListActive(ctx context.Context, userID uuid.UUID, f domain.ItemFilter) ([]*domain.ActionableItem, error)
	ListArchived(ctx context.Context, userID uuid.UUID, f domain.ItemFilter) ([]*domain.ActionableItem, error)
	Counts(ctx context.Context, userID uuid.UUID, now, dayStart, dayEnd time.Time) (domain.ItemDashboard, error)
	Complete(ctx context.Context, userID, itemID uuid.UUID, at time.Time) error
	SetArchived(ctx context.Context, userID, itemID uuid.UUID, at *time.Time, reason *domain.ArchiveReason) error
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
}

type inboxCounter interface {
	CountOpen(ctx context.Context, userID uuid.UUID) (pending, needsInfo int, err error)
}

type archiver interface {
	Enforce(ctx context.Context, userID uuid.UUID) error
}

// Service manages todos and info items. Every read that lists or counts
// items enforces the archive rules first.
type Service struct {
	items   itemRepo
	inbox   inboxCounter
	archive archiver
	loc     *time.Location
	now     func() time.Time
	log     *slog.Logger
}

// NewService creates the service. loc defines the user's "today" for the
// dashboard.
func NewService(logger *slog.Logger, items itemRepo, inbox inboxCounter, archive archiver, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		items:   items,
		inbox:   inbox,
		archive: archive,
		loc:     loc,
		now:     func() time.Time { return time.Now().UTC() },
		log:     logger.With("service", "actionable"),
	}
}
