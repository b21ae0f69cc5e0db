package inbox

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

type inboxRepo interface {
	GetByID(ctx context.Context, userID, entryID uuid.UUID) (*domain.InboxEntry, error)
	GetForUpdate(ctx context.Context, userID, entryID uuid.UUID) (*domain.InboxEntry, error)
	List(ctx context.Context, userID uuid.UUID, statuses []domain.InboxStatus, limit, offset int) ([]*domain.InboxEntry, int, error)
	Resolve(ctx context.Context, userID, entryID uuid.UUID, status domain.InboxStatus, at time.Time) error
	Delete(ctx context.Context, userID, entryID uuid.UUID) error
}

type eventRepo interface {
	Create(ctx context.Context, e *domain.Event) (*domain.Event, error)
	LinkPeople(ctx context.Context, userID, eventID uuid.UUID, personIDs []uuid.UUID) error
}

type personRepo interface {
	Upsert(ctx context.Context, p *domain.Person) (*domain.Person, error)
}

type itemRepo interface {
	Create(ctx context.Context, item *domain.ActionableItem) (*domain.ActionableItem, error)
}

type dumpLinker interface {
	LinkPeople(ctx context.Context, userID, dumpID uuid.UUID, personIDs []uuid.UUID) error
}

type calendarSync interface {
	CreateEvent(ctx context.Context, userID uuid.UUID, draft domain.CalendarEventDraft) *string
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Deps groups the collaborators needed to turn an inbox entry into
// committed records.
type Deps struct {
	Inbox    inboxRepo
	Events   eventRepo
	People   personRepo
	Items    itemRepo
	Dumps    dumpLinker
	Calendar calendarSync
	Tx       txManager
}

// Service lets the user review proposals held by the triage router.
type Service struct {
	inbox    inboxRepo
	events   eventRepo
	people   personRepo
	items    itemRepo
	dumps    dumpLinker
	calendar calendarSync
	tx       txManager
	now      func() time.Time
	log      *slog.Logger
}

// NewService creates a new inbox service.
func NewService(log *slog.Logger, deps Deps) *Service {
	return &Service{
		inbox:    deps.Inbox,
		events:   deps.Events,
		people:   deps.People,
		items:    deps.Items,
		dumps:    deps.Dumps,
		calendar: deps.Calendar,
		tx:       deps.Tx,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With("service", "inbox"),
	}
}

// trimOrNil trims whitespace. Returns nil if result is empty.
func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
