package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

type eventRepo interface {
	Create(ctx context.Context, e *domain.Event) (*domain.Event, error)
	LinkPeople(ctx context.Context, userID, eventID uuid.UUID, personIDs []uuid.UUID) error
	GetByID(ctx context.Context, userID, eventID uuid.UUID) (*domain.Event, error)
	List(ctx context.Context, userID uuid.UUID, f domain.EventFilter) ([]*domain.Event, error)
	SetExternalID(ctx context.Context, userID, eventID uuid.UUID, externalID string) error
	Delete(ctx context.Context, userID, eventID uuid.UUID) error
}

type calendarSync interface {
	CreateEvent(ctx context.Context, userID uuid.UUID, draft domain.CalendarEventDraft) *string
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service manages committed events.
type Service struct {
	events   eventRepo
	calendar calendarSync
	tx       txManager
	now      func() time.Time
	log      *slog.Logger
}

// NewService creates a new event service.
func NewService(logger *slog.Logger, events eventRepo, calendar calendarSync, tx txManager) *Service {
	return &Service{
		events:   events,
		calendar: calendar,
		tx:       tx,
		now:      func() time.Time { return time.Now().UTC() },
		log:      logger.With("service", "event"),
	}
}

func draftOf(e *domain.Event) domain.CalendarEventDraft {
	return domain.CalendarEventDraft{
		Title:     e.Title,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		Location:  e.Location,
		Category:  e.Category,
	}
}
