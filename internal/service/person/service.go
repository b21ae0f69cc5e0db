package person

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
)

const (
	overviewEventLimit = 100
	overviewItemLimit  = 100
)

type personRepo interface {
	Upsert(ctx context.Context, p *domain.Person) (*domain.Person, error)
	Update(ctx context.Context, p *domain.Person) (*domain.Person, error)
	GetByID(ctx context.Context, userID, personID uuid.UUID) (*domain.Person, error)
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Person, error)
	Delete(ctx context.Context, userID, personID uuid.UUID) error
}

type eventLister interface {
	List(ctx context.Context, userID uuid.UUID, f domain.EventFilter) ([]*domain.Event, error)
}

type itemLister interface {
	ListActive(ctx context.Context, userID uuid.UUID, f domain.ItemFilter) ([]*domain.ActionableItem, error)
}

type archiver interface {
	Enforce(ctx context.Context, userID uuid.UUID) error
}

// Service manages the user's people graph.
type Service struct {
	people  personRepo
	events  eventLister
	items   itemLister
	archive archiver
	log     *slog.Logger
}

// NewService creates a new person service.
func NewService(logger *slog.Logger, people personRepo, events eventLister, items itemLister, archive archiver) *Service {
	return &Service{
		people:  people,
		events:  events,
		items:   items,
		archive: archive,
		log:     logger.With("service", "person"),
	}
}
