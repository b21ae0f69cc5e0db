package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/pkg/ctxutil"
)

func ptr[T any](v T) *T { return &v }

var testNow = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

type fixture struct {
	dump      *domain.Dump
	dumps     *dumpRepoMock
	events    *eventRepoMock
	inbox     *inboxRepoMock
	people    *personRepoMock
	embedder  *embedderMock
	retriever *retrieverMock
	extractor *extractorMock
	conflicts *conflictCheckerMock
	calendar  *calendarSyncMock
	tx        *txManagerMock
	o         *Orchestrator
}

func newFixture(t *testing.T, text *string) *fixture {
	t.Helper()

	d := &domain.Dump{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Source:    domain.DumpSourceManual,
		Text:      text,
		CreatedAt: testNow.Add(-time.Minute),
	}

	f := &fixture{
		dump: d,
		dumps: &dumpRepoMock{GetByIDFunc: func(_ context.Context, id uuid.UUID) (*domain.Dump, error) {
			if id != d.ID {
				return nil, domain.ErrNotFound
			}
			return d, nil
		}},
		events: &eventRepoMock{},
		inbox:  &inboxRepoMock{},
		people: &personRepoMock{},
		embedder: &embedderMock{EmbedFunc: func(context.Context, string) ([]float32, error) {
			return []float32{0.1, 0.2, 0.3}, nil
		}},
		retriever: &retrieverMock{},
		extractor: &extractorMock{},
		conflicts: &conflictCheckerMock{},
		calendar:  &calendarSyncMock{},
		tx:        &txManagerMock{},
	}

	f.o = NewOrchestrator(slog.New(slog.DiscardHandler), Deps{
		Dumps:     f.dumps,
		Events:    f.events,
		Inbox:     f.inbox,
		People:    f.people,
		Embedder:  f.embedder,
		Retriever: f.retriever,
		Extractor: f.extractor,
		Conflicts: f.conflicts,
		Calendar:  f.calendar,
		Tx:        f.tx,
	}, 3)
	f.o.now = func() time.Time { return testNow }
	return f
}

func (f *fixture) extracts(p *domain.Proposal, err error) {
	f.extractor.ExtractFunc = func(context.Context, domain.ExtractRequest) (*domain.Proposal, error) {
		return p, err
	}
}

func TestOrchestrator_ConfidentProposalCommitsEvent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ptr("Dentist Tue 3pm to 4pm at Main St"))
	start := time.Date(2026, 5, 5, 15, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	known := uuid.New()

	f.extracts(&domain.Proposal{
		Title:      "Dentist",
		StartTime:  &start,
		EndTime:    &end,
		Location:   "Main St",
		Confidence: 0.95,
		People: []domain.ProposedPerson{
			{Name: "Mia", PersonID: &known},
			{Name: "Dr. Lee", IsNew: true},
		},
	}, nil)
	f.calendar.CreateEventFunc = func(context.Context, uuid.UUID, domain.CalendarEventDraft) *string {
		return ptr("gcal-1")
	}

	outcome, err := f.o.run(context.Background(), f.dump.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, outcome)

	require.Len(t, f.calendar.CreateEventCalls(), 1)
	assert.Equal(t, "Dentist", f.calendar.CreateEventCalls()[0].Title)

	events := f.events.CreateCalls()
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, f.dump.UserID, ev.UserID)
	require.NotNil(t, ev.ExternalCalendarID)
	assert.Equal(t, "gcal-1", *ev.ExternalCalendarID)
	require.NotNil(t, ev.DumpID)
	assert.Equal(t, f.dump.ID, *ev.DumpID)
	assert.Equal(t, [][]uuid.UUID{{known}}, f.events.LinkPeopleCalls())

	assert.Empty(t, f.inbox.CreateCalls())
	assert.Equal(t, []uuid.UUID{f.dump.ID}, f.dumps.MarkProcessedCalls())
	assert.Equal(t, 1, f.conflicts.HasConflictCalls())
}

func TestOrchestrator_NoStartDateGoesToInboxNeedsInfo(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ptr("Remember the thing with the school sometime"))
	f.extracts(&domain.Proposal{
		Title:       "School thing",
		Confidence:  0.97,
		MissingInfo: []string{"start_time"},
	}, nil)

	outcome, err := f.o.run(context.Background(), f.dump.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeHeld, outcome)

	entries := f.inbox.CreateCalls()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, domain.InboxStatusNeedsInfo, e.Status)
	require.NotNil(t, e.FlagReason)
	assert.Equal(t, "missing_context, missing_fields", *e.FlagReason)
	assert.Equal(t, f.dump.ID, e.DumpID)
	assert.InDelta(t, 0.97, e.Confidence, 1e-9)
	assert.Equal(t, domain.ProposedDataVersion, e.Data.Version)
	assert.Equal(t, "School thing", e.Data.Proposal.Title)

	assert.Empty(t, f.events.CreateCalls())
	assert.Empty(t, f.calendar.CreateEventCalls())
	assert.Zero(t, f.conflicts.HasConflictCalls(), "no window, no conflict check")
	assert.Equal(t, []uuid.UUID{f.dump.ID}, f.dumps.MarkProcessedCalls())
}

func TestOrchestrator_ExtractionFailureMarksProcessedOnly(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ptr("asdf"))
	f.extracts(nil, errors.New("model overloaded"))

	outcome, err := f.o.run(context.Background(), f.dump.ID)
	require.Error(t, err)
	assert.Equal(t, OutcomeEmpty, outcome)

	assert.Empty(t, f.events.CreateCalls())
	assert.Empty(t, f.inbox.CreateCalls())
	assert.Empty(t, f.calendar.CreateEventCalls())
	assert.Equal(t, []uuid.UUID{f.dump.ID}, f.dumps.MarkProcessedCalls())
}

func TestOrchestrator_ConflictHoldsPending(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ptr("Soccer Sat 10-11"))
	start := time.Date(2026, 5, 9, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	f.extracts(&domain.Proposal{Title: "Soccer", StartTime: &start, EndTime: &end, Confidence: 0.99}, nil)
	f.conflicts.HasConflictFunc = func(_ context.Context, _ uuid.UUID, s, e time.Time) bool {
		assert.Equal(t, start, s)
		assert.Equal(t, end, e)
		return true
	}

	outcome, err := f.o.run(context.Background(), f.dump.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeHeld, outcome)

	entries := f.inbox.CreateCalls()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.InboxStatusPending, entries[0].Status)
	assert.Equal(t, ptr("conflict_detected"), entries[0].FlagReason)
	assert.Empty(t, f.calendar.CreateEventCalls())
}

func TestOrchestrator_StartWithoutEndSkipsConflictCheck(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ptr("Recital Friday 6pm"))
	start := time.Date(2026, 5, 8, 18, 0, 0, 0, time.UTC)
	f.extracts(&domain.Proposal{Title: "Recital", StartTime: &start, Confidence: 0.93}, nil)

	outcome, err := f.o.run(context.Background(), f.dump.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, outcome)
	assert.Zero(t, f.conflicts.HasConflictCalls())
	require.Len(t, f.events.CreateCalls(), 1)
	assert.Nil(t, f.events.CreateCalls()[0].EndTime)
}

func TestOrchestrator_ContextFromSimilarDumps(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ptr("Mia practice moved"))
	f.retriever.FindSimilarFunc = func(context.Context, uuid.UUID, []float32, int, ...uuid.UUID) ([]domain.SimilarDump, error) {
		return []domain.SimilarDump{{Text: "Mia practice Wed 5pm", Similarity: 0.9}, {Text: "Mia soccer", Similarity: 0.8}}, nil
	}
	personID := uuid.New()
	f.people.ListFunc = func(context.Context, uuid.UUID) ([]*domain.Person, error) {
		return []*domain.Person{{ID: personID, Name: "Mia", Relationship: "child", Metadata: map[string]string{"grade": "3"}}}, nil
	}
	f.extracts(&domain.Proposal{Title: "Practice", Confidence: 0.4}, nil)

	_, err := f.o.run(context.Background(), f.dump.ID)
	require.NoError(t, err)

	require.Len(t, f.dumps.SetEmbeddingCalls(), 1)

	calls := f.retriever.FindSimilarCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, 3, calls[0].Limit)
	assert.Equal(t, []uuid.UUID{f.dump.ID}, calls[0].Exclude)
	assert.Equal(t, f.dump.UserID, calls[0].UserID)

	req := f.extractor.ExtractCalls()[0]
	assert.Equal(t, []string{"Mia practice Wed 5pm", "Mia soccer"}, req.Context)
	require.Len(t, req.People, 1)
	assert.Equal(t, personID, req.People[0].ID)
	assert.Equal(t, "3", req.People[0].Metadata["grade"])
	assert.Equal(t, testNow, req.Now)
}

func TestOrchestrator_EmbeddingFailureExtractsWithoutContext(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ptr("Pay lunch money"))
	f.embedder.EmbedFunc = func(context.Context, string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}
	f.extracts(&domain.Proposal{Title: "Lunch money", Confidence: 0.5}, nil)

	outcome, err := f.o.run(context.Background(), f.dump.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeHeld, outcome)
	assert.Empty(t, f.retriever.FindSimilarCalls())
	assert.Empty(t, f.dumps.SetEmbeddingCalls())
	assert.Empty(t, f.extractor.ExtractCalls()[0].Context)
}

func TestOrchestrator_MediaOnlyDumpSkipsEmbedding(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.dump.MediaRef = ptr("azblob://notice.jpg")
	f.extracts(&domain.Proposal{Title: "Bake sale", Confidence: 0.6}, nil)

	_, err := f.o.run(context.Background(), f.dump.ID)
	require.NoError(t, err)
	assert.Empty(t, f.embedder.EmbedCalls())
	assert.Equal(t, ptr("azblob://notice.jpg"), f.extractor.ExtractCalls()[0].MediaRef)
}

func TestOrchestrator_CalendarUnavailableStillCommits(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ptr("Vet Monday 9-10"))
	start := time.Date(2026, 5, 11, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	f.extracts(&domain.Proposal{Title: "Vet", StartTime: &start, EndTime: &end, Confidence: 0.96}, nil)

	outcome, err := f.o.run(context.Background(), f.dump.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, outcome)
	require.Len(t, f.events.CreateCalls(), 1)
	assert.Nil(t, f.events.CreateCalls()[0].ExternalCalendarID)
}

func TestOrchestrator_ExactlyThresholdHoldsWithoutReason(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ptr("Book club Thu 7-8pm"))
	start := time.Date(2026, 5, 7, 19, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	f.extracts(&domain.Proposal{Title: "Book club", StartTime: &start, EndTime: &end, Confidence: 0.9}, nil)

	outcome, err := f.o.run(context.Background(), f.dump.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeHeld, outcome)
	entries := f.inbox.CreateCalls()
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].FlagReason)
	assert.Equal(t, domain.InboxStatusPending, entries[0].Status)
}

func TestOrchestrator_DumpNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ptr("x"))

	outcome, err := f.o.run(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Empty(t, f.dumps.MarkProcessedCalls())
	assert.Empty(t, f.extractor.ExtractCalls())
}

func TestOrchestrator_AlreadyProcessedIsSkipped(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ptr("x"))
	f.dump.ProcessedAt = ptr(testNow.Add(-time.Hour))

	outcome, err := f.o.run(context.Background(), f.dump.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Empty(t, f.extractor.ExtractCalls())
}

func TestOrchestrator_PersistFailureStillMarksProcessed(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ptr("Dance class Tue 4-5"))
	f.extracts(&domain.Proposal{Title: "Dance", Confidence: 0.3}, nil)
	f.inbox.CreateFunc = func(context.Context, *domain.InboxEntry) (*domain.InboxEntry, error) {
		return nil, errors.New("connection reset")
	}

	outcome, err := f.o.run(context.Background(), f.dump.ID)
	require.Error(t, err)
	assert.Equal(t, OutcomeEmpty, outcome)
	assert.Equal(t, []uuid.UUID{f.dump.ID}, f.dumps.MarkProcessedCalls())
}

func TestOrchestrator_DuplicateInboxEntryIsSkipped(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ptr("x"))
	f.extracts(&domain.Proposal{Title: "x", Confidence: 0.1}, nil)
	f.inbox.CreateFunc = func(context.Context, *domain.InboxEntry) (*domain.InboxEntry, error) {
		return nil, domain.ErrAlreadyExists
	}

	outcome, err := f.o.run(context.Background(), f.dump.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
}

func TestOrchestrator_DuplicateEventIsSkipped(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ptr("Swim lesson Sat 10-11"))
	start := time.Date(2026, 5, 9, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	f.extracts(&domain.Proposal{Title: "Swim lesson", StartTime: &start, EndTime: &end, Confidence: 0.97}, nil)
	f.calendar.CreateEventFunc = func(context.Context, uuid.UUID, domain.CalendarEventDraft) *string {
		return ptr("gcal-9")
	}
	f.events.CreateFunc = func(context.Context, *domain.Event) (*domain.Event, error) {
		return nil, fmt.Errorf("event for dump: %w", domain.ErrAlreadyExists)
	}

	outcome, err := f.o.run(context.Background(), f.dump.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Len(t, f.calendar.CreateEventCalls(), 1)
	assert.Empty(t, f.inbox.CreateCalls())
	assert.Equal(t, []uuid.UUID{f.dump.ID}, f.dumps.MarkProcessedCalls())
}

func TestOrchestrator_MarkProcessedSurvivesExpiredDeadline(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ptr("x"))
	ctx, cancel := context.WithCancel(context.Background())
	f.extractor.ExtractFunc = func(context.Context, domain.ExtractRequest) (*domain.Proposal, error) {
		cancel()
		return nil, context.Canceled
	}
	var markErr error
	f.dumps.MarkProcessedFunc = func(ctx context.Context, _, _ uuid.UUID, _ time.Time) error {
		markErr = ctx.Err()
		return nil
	}

	_, _ = f.o.run(ctx, f.dump.ID)
	assert.NoError(t, markErr)
	assert.Len(t, f.dumps.MarkProcessedCalls(), 1)
}

func TestOrchestrator_ProcessDumpCarriesUserID(t *testing.T) {
	t.Parallel()

	f := newFixture(t, ptr("x"))
	var seen uuid.UUID
	f.extractor.ExtractFunc = func(ctx context.Context, _ domain.ExtractRequest) (*domain.Proposal, error) {
		seen, _ = ctxutil.UserIDFromCtx(ctx)
		return &domain.Proposal{Title: "x", Confidence: 0.2}, nil
	}

	f.o.ProcessDump(context.Background(), f.dump.ID)
	assert.Equal(t, f.dump.UserID, seen)
	assert.Len(t, f.inbox.CreateCalls(), 1)
}
