package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
)

var (
	_ dumpRepo        = &dumpRepoMock{}
	_ eventRepo       = &eventRepoMock{}
	_ inboxRepo       = &inboxRepoMock{}
	_ personRepo      = &personRepoMock{}
	_ embedder        = &embedderMock{}
	_ retriever       = &retrieverMock{}
	_ extractor       = &extractorMock{}
	_ conflictChecker = &conflictCheckerMock{}
	_ calendarSync    = &calendarSyncMock{}
	_ txManager       = &txManagerMock{}
)

type dumpRepoMock struct {
	GetByIDFunc       func(ctx context.Context, dumpID uuid.UUID) (*domain.Dump, error)
	SetEmbeddingFunc  func(ctx context.Context, userID, dumpID uuid.UUID, embedding []float32) error
	MarkProcessedFunc func(ctx context.Context, userID, dumpID uuid.UUID, at time.Time) error
	LinkPeopleFunc    func(ctx context.Context, userID, dumpID uuid.UUID, personIDs []uuid.UUID) error

	mu    sync.Mutex
	calls struct {
		SetEmbedding  [][]float32
		MarkProcessed []uuid.UUID
		LinkPeople    [][]uuid.UUID
	}
}

func (m *dumpRepoMock) GetByID(ctx context.Context, dumpID uuid.UUID) (*domain.Dump, error) {
	if m.GetByIDFunc == nil {
		panic("dumpRepoMock.GetByIDFunc: method is nil but dumpRepo.GetByID was just called")
	}
	return m.GetByIDFunc(ctx, dumpID)
}

func (m *dumpRepoMock) SetEmbedding(ctx context.Context, userID, dumpID uuid.UUID, embedding []float32) error {
	m.mu.Lock()
	m.calls.SetEmbedding = append(m.calls.SetEmbedding, embedding)
	m.mu.Unlock()
	if m.SetEmbeddingFunc == nil {
		return nil
	}
	return m.SetEmbeddingFunc(ctx, userID, dumpID, embedding)
}

func (m *dumpRepoMock) MarkProcessed(ctx context.Context, userID, dumpID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	m.calls.MarkProcessed = append(m.calls.MarkProcessed, dumpID)
	m.mu.Unlock()
	if m.MarkProcessedFunc == nil {
		return nil
	}
	return m.MarkProcessedFunc(ctx, userID, dumpID, at)
}

func (m *dumpRepoMock) LinkPeople(ctx context.Context, userID, dumpID uuid.UUID, personIDs []uuid.UUID) error {
	m.mu.Lock()
	m.calls.LinkPeople = append(m.calls.LinkPeople, personIDs)
	m.mu.Unlock()
	if m.LinkPeopleFunc == nil {
		return nil
	}
	return m.LinkPeopleFunc(ctx, userID, dumpID, personIDs)
}

func (m *dumpRepoMock) MarkProcessedCalls() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.MarkProcessed
}

func (m *dumpRepoMock) SetEmbeddingCalls() [][]float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.SetEmbedding
}

type eventRepoMock struct {
	CreateFunc     func(ctx context.Context, e *domain.Event) (*domain.Event, error)
	LinkPeopleFunc func(ctx context.Context, userID, eventID uuid.UUID, personIDs []uuid.UUID) error

	mu    sync.Mutex
	calls struct {
		Create     []*domain.Event
		LinkPeople [][]uuid.UUID
	}
}

func (m *eventRepoMock) Create(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	m.mu.Lock()
	m.calls.Create = append(m.calls.Create, e)
	m.mu.Unlock()
	if m.CreateFunc == nil {
		return e, nil
	}
	return m.CreateFunc(ctx, e)
}

func (m *eventRepoMock) LinkPeople(ctx context.Context, userID, eventID uuid.UUID, personIDs []uuid.UUID) error {
	m.mu.Lock()
	m.calls.LinkPeople = append(m.calls.LinkPeople, personIDs)
	m.mu.Unlock()
	if m.LinkPeopleFunc == nil {
		return nil
	}
	return m.LinkPeopleFunc(ctx, userID, eventID, personIDs)
}

func (m *eventRepoMock) CreateCalls() []*domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Create
}

func (m *eventRepoMock) LinkPeopleCalls() [][]uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.LinkPeople
}

type inboxRepoMock struct {
	CreateFunc func(ctx context.Context, e *domain.InboxEntry) (*domain.InboxEntry, error)

	mu    sync.Mutex
	calls []*domain.InboxEntry
}

func (m *inboxRepoMock) Create(ctx context.Context, e *domain.InboxEntry) (*domain.InboxEntry, error) {
	m.mu.Lock()
	m.calls = append(m.calls, e)
	m.mu.Unlock()
	if m.CreateFunc == nil {
		return e, nil
	}
	return m.CreateFunc(ctx, e)
}

func (m *inboxRepoMock) CreateCalls() []*domain.InboxEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type personRepoMock struct {
	ListFunc func(ctx context.Context, userID uuid.UUID) ([]*domain.Person, error)
}

func (m *personRepoMock) List(ctx context.Context, userID uuid.UUID) ([]*domain.Person, error) {
	if m.ListFunc == nil {
		return nil, nil
	}
	return m.ListFunc(ctx, userID)
}

type embedderMock struct {
	EmbedFunc func(ctx context.Context, text string) ([]float32, error)

	mu    sync.Mutex
	calls []string
}

func (m *embedderMock) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()
	if m.EmbedFunc == nil {
		panic("embedderMock.EmbedFunc: method is nil but embedder.Embed was just called")
	}
	return m.EmbedFunc(ctx, text)
}

func (m *embedderMock) EmbedCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type findSimilarCall struct {
	UserID  uuid.UUID
	Limit   int
	Exclude []uuid.UUID
}

type retrieverMock struct {
	FindSimilarFunc func(ctx context.Context, userID uuid.UUID, embedding []float32, limit int, exclude ...uuid.UUID) ([]domain.SimilarDump, error)

	mu    sync.Mutex
	calls []findSimilarCall
}

func (m *retrieverMock) FindSimilar(ctx context.Context, userID uuid.UUID, embedding []float32, limit int, exclude ...uuid.UUID) ([]domain.SimilarDump, error) {
	m.mu.Lock()
	m.calls = append(m.calls, findSimilarCall{userID, limit, exclude})
	m.mu.Unlock()
	if m.FindSimilarFunc == nil {
		return nil, nil
	}
	return m.FindSimilarFunc(ctx, userID, embedding, limit, exclude...)
}

func (m *retrieverMock) FindSimilarCalls() []findSimilarCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type extractorMock struct {
	ExtractFunc func(ctx context.Context, req domain.ExtractRequest) (*domain.Proposal, error)

	mu    sync.Mutex
	calls []domain.ExtractRequest
}

func (m *extractorMock) Extract(ctx context.Context, req domain.ExtractRequest) (*domain.Proposal, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	if m.ExtractFunc == nil {
		panic("extractorMock.ExtractFunc: method is nil but extractor.Extract was just called")
	}
	return m.ExtractFunc(ctx, req)
}

func (m *extractorMock) ExtractCalls() []domain.ExtractRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type conflictCheckerMock struct {
	HasConflictFunc func(ctx context.Context, userID uuid.UUID, start, end time.Time) bool

	mu    sync.Mutex
	calls int
}

func (m *conflictCheckerMock) HasConflict(ctx context.Context, userID uuid.UUID, start, end time.Time) bool {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.HasConflictFunc == nil {
		return false
	}
	return m.HasConflictFunc(ctx, userID, start, end)
}

func (m *conflictCheckerMock) HasConflictCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type calendarSyncMock struct {
	CreateEventFunc func(ctx context.Context, userID uuid.UUID, draft domain.CalendarEventDraft) *string

	mu    sync.Mutex
	calls []domain.CalendarEventDraft
}

func (m *calendarSyncMock) CreateEvent(ctx context.Context, userID uuid.UUID, draft domain.CalendarEventDraft) *string {
	m.mu.Lock()
	m.calls = append(m.calls, draft)
	m.mu.Unlock()
	if m.CreateEventFunc == nil {
		return nil
	}
	return m.CreateEventFunc(ctx, userID, draft)
}

func (m *calendarSyncMock) CreateEventCalls() []domain.CalendarEventDraft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.RunInTxFunc == nil {
		return fn(ctx)
	}
	return m.RunInTxFunc(ctx, fn)
}
