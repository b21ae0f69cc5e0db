package rest

import (
	"context"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/internal/service/actionable"
	"github.com/heartmarshall/mindump-backend/internal/service/calendaraccount"
	"github.com/heartmarshall/mindump-backend/internal/service/dump"
	"github.com/heartmarshall/mindump-backend/internal/service/event"
	"github.com/heartmarshall/mindump-backend/internal/service/inbox"
	"github.com/heartmarshall/mindump-backend/internal/service/person"
)

type dumpServiceMock struct {
	CreateFunc  func(ctx context.Context, input dump.CreateInput) (*domain.Dump, error)
	GetFunc     func(ctx context.Context, dumpID uuid.UUID) (*domain.Dump, error)
	HistoryFunc func(ctx context.Context, input dump.HistoryInput) ([]*domain.DumpWithOutcome, int, error)
}

func (m *dumpServiceMock) Create(ctx context.Context, input dump.CreateInput) (*domain.Dump, error) {
	return m.CreateFunc(ctx, input)
}

func (m *dumpServiceMock) Get(ctx context.Context, dumpID uuid.UUID) (*domain.Dump, error) {
	return m.GetFunc(ctx, dumpID)
}

func (m *dumpServiceMock) History(ctx context.Context, input dump.HistoryInput) ([]*domain.DumpWithOutcome, int, error) {
	return m.HistoryFunc(ctx, input)
}

type inboxServiceMock struct {
	ListFunc    func(ctx context.Context, input inbox.ListInput) ([]*domain.InboxEntry, int, error)
	GetFunc     func(ctx context.Context, entryID uuid.UUID) (*domain.InboxEntry, error)
	ConfirmFunc func(ctx context.Context, input inbox.ConfirmInput) (*inbox.ConfirmResult, error)
	DismissFunc func(ctx context.Context, entryID uuid.UUID) (*domain.InboxEntry, error)
	DeleteFunc  func(ctx context.Context, entryID uuid.UUID) error
}

func (m *inboxServiceMock) List(ctx context.Context, input inbox.ListInput) ([]*domain.InboxEntry, int, error) {
	return m.ListFunc(ctx, input)
}

func (m *inboxServiceMock) Get(ctx context.Context, entryID uuid.UUID) (*domain.InboxEntry, error) {
	return m.GetFunc(ctx, entryID)
}

func (m *inboxServiceMock) Confirm(ctx context.Context, input inbox.ConfirmInput) (*inbox.ConfirmResult, error) {
	return m.ConfirmFunc(ctx, input)
}

func (m *inboxServiceMock) Dismiss(ctx context.Context, entryID uuid.UUID) (*domain.InboxEntry, error) {
	return m.DismissFunc(ctx, entryID)
}

func (m *inboxServiceMock) Delete(ctx context.Context, entryID uuid.UUID) error {
	return m.DeleteFunc(ctx, entryID)
}

type eventServiceMock struct {
	CreateFunc func(ctx context.Context, input event.CreateInput) (*domain.Event, error)
	SyncFunc   func(ctx context.Context, eventID uuid.UUID) (*domain.Event, error)
	ListFunc   func(ctx context.Context, input event.ListInput) ([]*domain.Event, error)
	GetFunc    func(ctx context.Context, eventID uuid.UUID) (*domain.Event, error)
	DeleteFunc func(ctx context.Context, eventID uuid.UUID) error
}

func (m *eventServiceMock) Create(ctx context.Context, input event.CreateInput) (*domain.Event, error) {
	return m.CreateFunc(ctx, input)
}

func (m *eventServiceMock) Sync(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	return m.SyncFunc(ctx, eventID)
}

func (m *eventServiceMock) List(ctx context.Context, input event.ListInput) ([]*domain.Event, error) {
	return m.ListFunc(ctx, input)
}

func (m *eventServiceMock) Get(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	return m.GetFunc(ctx, eventID)
}

func (m *eventServiceMock) Delete(ctx context.Context, eventID uuid.UUID) error {
	return m.DeleteFunc(ctx, eventID)
}

type personServiceMock struct {
	UpsertFunc   func(ctx context.Context, input person.UpsertInput) (*domain.Person, error)
	UpdateFunc   func(ctx context.Context, input person.UpdateInput) (*domain.Person, error)
	GetFunc      func(ctx context.Context, personID uuid.UUID) (*domain.Person, error)
	ListFunc     func(ctx context.Context) ([]*domain.Person, error)
	OverviewFunc func(ctx context.Context, personID uuid.UUID) (*domain.PersonOverview, error)
	DeleteFunc   func(ctx context.Context, personID uuid.UUID) error
}

func (m *personServiceMock) Upsert(ctx context.Context, input person.UpsertInput) (*domain.Person, error) {
	return m.UpsertFunc(ctx, input)
}

func (m *personServiceMock) Update(ctx context.Context, input person.UpdateInput) (*domain.Person, error) {
	return m.UpdateFunc(ctx, input)
}

func (m *personServiceMock) Get(ctx context.Context, personID uuid.UUID) (*domain.Person, error) {
	return m.GetFunc(ctx, personID)
}

func (m *personServiceMock) List(ctx context.Context) ([]*domain.Person, error) {
	return m.ListFunc(ctx)
}

func (m *personServiceMock) Overview(ctx context.Context, personID uuid.UUID) (*domain.PersonOverview, error) {
	return m.OverviewFunc(ctx, personID)
}

func (m *personServiceMock) Delete(ctx context.Context, personID uuid.UUID) error {
	return m.DeleteFunc(ctx, personID)
}

type itemServiceMock struct {
	CreateFunc       func(ctx context.Context, input actionable.CreateInput) (*domain.ActionableItem, error)
	ListActiveFunc   func(ctx context.Context, input actionable.ListInput) ([]*domain.ActionableItem, error)
	ListArchivedFunc func(ctx context.Context, input actionable.ListInput) ([]*domain.ActionableItem, error)
	GetFunc          func(ctx context.Context, itemID uuid.UUID) (*domain.ActionableItem, error)
	DashboardFunc    func(ctx context.Context) (domain.ItemDashboard, error)
	CompleteFunc     func(ctx context.Context, itemID uuid.UUID) (*domain.ActionableItem, error)
	ArchiveFunc      func(ctx context.Context, itemID uuid.UUID) (*domain.ActionableItem, error)
	UnarchiveFunc    func(ctx context.Context, itemID uuid.UUID) (*domain.ActionableItem, error)
	DeleteFunc       func(ctx context.Context, itemID uuid.UUID) error
}

func (m *itemServiceMock) Create(ctx context.Context, input actionable.CreateInput) (*domain.ActionableItem, error) {
	return m.CreateFunc(ctx, input)
}

func (m *itemServiceMock) ListActive(ctx context.Context, input actionable.ListInput) ([]*domain.ActionableItem, error) {
	return m.ListActiveFunc(ctx, input)
}

func (m *itemServiceMock) ListArchived(ctx context.Context, input actionable.ListInput) ([]*domain.ActionableItem, error) {
	return m.ListArchivedFunc(ctx, input)
}

func (m *itemServiceMock) Get(ctx context.Context, itemID uuid.UUID) (*domain.ActionableItem, error) {
	return m.GetFunc(ctx, itemID)
}

func (m *itemServiceMock) Dashboard(ctx context.Context) (domain.ItemDashboard, error) {
	return m.DashboardFunc(ctx)
}

func (m *itemServiceMock) Complete(ctx context.Context, itemID uuid.UUID) (*domain.ActionableItem, error) {
	return m.CompleteFunc(ctx, itemID)
}

func (m *itemServiceMock) Archive(ctx context.Context, itemID uuid.UUID) (*domain.ActionableItem, error) {
	return m.ArchiveFunc(ctx, itemID)
}

func (m *itemServiceMock) Unarchive(ctx context.Context, itemID uuid.UUID) (*domain.ActionableItem, error) {
	return m.UnarchiveFunc(ctx, itemID)
}

func (m *itemServiceMock) Delete(ctx context.Context, itemID uuid.UUID) error {
	return m.DeleteFunc(ctx, itemID)
}

type calendarServiceMock struct {
	StartFunc  func(ctx context.Context) (*calendaraccount.AuthStart, error)
	LinkFunc   func(ctx context.Context, input calendaraccount.LinkInput) (*domain.CalendarAccount, error)
	GetFunc    func(ctx context.Context) (*domain.CalendarAccount, error)
	UnlinkFunc func(ctx context.Context) error
}

func (m *calendarServiceMock) Start(ctx context.Context) (*calendaraccount.AuthStart, error) {
	return m.StartFunc(ctx)
}

func (m *calendarServiceMock) Link(ctx context.Context, input calendaraccount.LinkInput) (*domain.CalendarAccount, error) {
	return m.LinkFunc(ctx, input)
}

func (m *calendarServiceMock) Get(ctx context.Context) (*domain.CalendarAccount, error) {
	return m.GetFunc(ctx)
}

func (m *calendarServiceMock) Unlink(ctx context.Context) error {
	return m.UnlinkFunc(ctx)
}

type tokenValidatorMock struct {
	userID uuid.UUID
	err    error
}

func (m *tokenValidatorMock) ValidateToken(_ context.Context, _ string) (uuid.UUID, error) {
	return m.userID, m.err
}
