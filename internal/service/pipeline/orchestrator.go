// Package pipeline runs the dump lifecycle: embed, retrieve, extract,
// check conflicts, route, persist, mark processed.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/internal/service/retrieval"
	"github.com/heartmarshall/mindump-backend/internal/service/triage"
	"github.com/heartmarshall/mindump-backend/pkg/ctxutil"
)

// markTimeout bounds the final processed_at write, which runs even when
// the dump's own deadline has passed.
const markTimeout = 5 * time.Second

type dumpRepo interface {
	GetByID(ctx context.Context, dumpID uuid.UUID) (*domain.Dump, error)
	SetEmbedding(ctx context.Context, userID, dumpID uuid.UUID, embedding []float32) error
	MarkProcessed(ctx context.Context, userID, dumpID uuid.UUID, at time.Time) error
	LinkPeople(ctx context.Context, userID, dumpID uuid.UUID, personIDs []uuid.UUID) error
}

type eventRepo interface {
	Create(ctx context.Context, e *domain.Event) (*domain.Event, error)
	LinkPeople(ctx context.Context, userID, eventID uuid.UUID, personIDs []uuid.UUID) error
}

type inboxRepo interface {
	Create(ctx context.Context, e *domain.InboxEntry) (*domain.InboxEntry, error)
}

type personRepo interface {
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Person, error)
}

type embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type retriever interface {
	FindSimilar(ctx context.Context, userID uuid.UUID, embedding []float32, limit int, exclude ...uuid.UUID) ([]domain.SimilarDump, error)
}

type extractor interface {
	Extract(ctx context.Context, req domain.ExtractRequest) (*domain.Proposal, error)
}

type conflictChecker interface {
	HasConflict(ctx context.Context, userID uuid.UUID, start, end time.Time) bool
}

type calendarSync interface {
	CreateEvent(ctx context.Context, userID uuid.UUID, draft domain.CalendarEventDraft) *string
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Deps groups the orchestrator's collaborators.
type Deps struct {
	Dumps     dumpRepo
	Events    eventRepo
	Inbox     inboxRepo
	People    personRepo
	Embedder  embedder
	Retriever retriever
	Extractor extractor
	Conflicts conflictChecker
	Calendar  calendarSync
	Tx        txManager
}

// Outcome is what processing left behind for a dump.
type Outcome string

const (
	OutcomeCommitted Outcome = "committed"
	OutcomeHeld      Outcome = "held"
	// OutcomeEmpty means the dump was attempted and marked processed
	// without producing an event or an inbox entry.
	OutcomeEmpty Outcome = "empty"
	// OutcomeSkipped means nothing was done: the dump is missing, was
	// already processed, or another run already stored its outcome.
	OutcomeSkipped Outcome = "skipped"
)

// Orchestrator drives a single dump through the pipeline.
type Orchestrator struct {
	deps         Deps
	contextLimit int
	now          func() time.Time
	metrics      *Metrics
	log          *slog.Logger
}

// NewOrchestrator creates an Orchestrator. contextLimit is how many similar
// dumps are handed to the extractor.
func NewOrchestrator(logger *slog.Logger, deps Deps, contextLimit int) *Orchestrator {
	if contextLimit < 0 {
		contextLimit = 0
	}
	return &Orchestrator{
		deps:         deps,
		contextLimit: contextLimit,
		now:          func() time.Time { return time.Now().UTC() },
		metrics:      NewMetrics(),
		log:          logger.With("service", "pipeline"),
	}
}

// ProcessDump runs the pipeline for one dump. It never returns an error:
// every failure is logged and the dump is marked processed whenever it
// could be loaded.
func (o *Orchestrator) ProcessDump(ctx context.Context, dumpID uuid.UUID) {
	start := time.Now()
	outcome, err := o.run(ctx, dumpID)

	o.metrics.Processed.WithLabelValues(string(outcome)).Inc()
	o.metrics.Duration.Observe(time.Since(start).Seconds())

	if err != nil {
		o.log.ErrorContext(ctx, "dump processing failed",
			slog.String("dump_id", dumpID.String()),
			slog.String("outcome", string(outcome)),
			slog.String("error", err.Error()),
		)
		return
	}
	o.log.InfoContext(ctx, "dump processed",
		slog.String("dump_id", dumpID.String()),
		slog.String("outcome", string(outcome)),
		slog.Duration("took", time.Since(start)),
	)
}

func (o *Orchestrator) run(ctx context.Context, dumpID uuid.UUID) (Outcome, error) {
	d, err := o.deps.Dumps.GetByID(ctx, dumpID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			o.log.WarnContext(ctx, "dump not found", slog.String("dump_id", dumpID.String()))
			return OutcomeSkipped, nil
		}
		return OutcomeSkipped, fmt.Errorf("load dump: %w", err)
	}
	if d.IsProcessed() {
		return OutcomeSkipped, nil
	}

	userID := d.UserID
	ctx = ctxutil.WithUserID(ctx, userID)

	contextTexts := o.similarContext(ctx, d)
	roster := o.roster(ctx, userID)

	proposal, err := o.deps.Extractor.Extract(ctx, domain.ExtractRequest{
		UserID:   userID,
		Text:     d.Text,
		MediaRef: d.MediaRef,
		Context:  contextTexts,
		People:   roster,
		Now:      o.now(),
	})
	if err != nil {
		o.markProcessed(ctx, d)
		return OutcomeEmpty, fmt.Errorf("extract: %w", err)
	}

	hasConflict := false
	if proposal.HasTimeWindow() {
		hasConflict = o.deps.Conflicts.HasConflict(ctx, userID, *proposal.StartTime, *proposal.EndTime)
	}

	switch decision := triage.Decide(triage.SignalsFor(proposal, hasConflict)).(type) {
	case triage.Commit:
		if err := o.commit(ctx, d, proposal); err != nil {
			o.markProcessed(ctx, d)
			if errors.Is(err, domain.ErrAlreadyExists) {
				return OutcomeSkipped, nil
			}
			return OutcomeEmpty, fmt.Errorf("commit event: %w", err)
		}
		return OutcomeCommitted, nil
	case triage.Hold:
		if err := o.hold(ctx, d, proposal, decision); err != nil {
			o.markProcessed(ctx, d)
			if errors.Is(err, domain.ErrAlreadyExists) {
				return OutcomeSkipped, nil
			}
			return OutcomeEmpty, fmt.Errorf("hold in inbox: %w", err)
		}
		return OutcomeHeld, nil
	default:
		o.markProcessed(ctx, d)
		return OutcomeEmpty, fmt.Errorf("unknown triage decision %T", decision)
	}
}

// similarContext embeds the dump text, stores the embedding and returns the
// texts of the closest earlier dumps. Failures yield an empty context.
func (o *Orchestrator) similarContext(ctx context.Context, d *domain.Dump) []string {
	if !d.HasText() {
		return nil
	}

	emb, err := o.deps.Embedder.Embed(ctx, *d.Text)
	if err != nil {
		o.metrics.StepFailures.WithLabelValues("embed").Inc()
		o.log.WarnContext(ctx, "embedding failed, extracting without context",
			slog.String("dump_id", d.ID.String()),
			slog.String("error", err.Error()),
		)
		return nil
	}

	if err := o.deps.Dumps.SetEmbedding(ctx, d.UserID, d.ID, emb); err != nil {
		o.metrics.StepFailures.WithLabelValues("store_embedding").Inc()
		o.log.WarnContext(ctx, "store embedding failed",
			slog.String("dump_id", d.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	if o.contextLimit == 0 {
		return nil
	}
	similar, err := o.deps.Retriever.FindSimilar(ctx, d.UserID, emb, o.contextLimit, d.ID)
	if err != nil {
		o.metrics.StepFailures.WithLabelValues("retrieve").Inc()
		o.log.WarnContext(ctx, "similar dump lookup failed",
			slog.String("dump_id", d.ID.String()),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return retrieval.Texts(similar)
}

func (o *Orchestrator) roster(ctx context.Context, userID uuid.UUID) []domain.KnownPerson {
	people, err := o.deps.People.List(ctx, userID)
	if err != nil {
		o.metrics.StepFailures.WithLabelValues("roster").Inc()
		o.log.WarnContext(ctx, "people roster unavailable", slog.String("error", err.Error()))
		return nil
	}
	out := make([]domain.KnownPerson, 0, len(people))
	for _, p := range people {
		out = append(out, p.ToKnownPerson())
	}
	return out
}

func (o *Orchestrator) commit(ctx context.Context, d *domain.Dump, p *domain.Proposal) error {
	externalID := o.deps.Calendar.CreateEvent(ctx, d.UserID, domain.CalendarEventDraft{
		Title:     p.Title,
		StartTime: *p.StartTime,
		EndTime:   p.EndTime,
		Location:  p.Location,
		Category:  p.Category,
	})
	if externalID == nil {
		o.metrics.CalendarUnsynced.Inc()
	}

	dumpID := d.ID
	peopleIDs := existingPeople(p)

	err := o.deps.Tx.RunInTx(ctx, func(ctx context.Context) error {
		ev, err := o.deps.Events.Create(ctx, &domain.Event{
			ID:                 uuid.New(),
			UserID:             d.UserID,
			Title:              p.Title,
			StartTime:          *p.StartTime,
			EndTime:            p.EndTime,
			Location:           p.Location,
			Category:           p.Category,
			ExternalCalendarID: externalID,
			DumpID:             &dumpID,
		})
		if err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		if err := o.deps.Events.LinkPeople(ctx, d.UserID, ev.ID, peopleIDs); err != nil {
			return fmt.Errorf("link event people: %w", err)
		}
		if err := o.deps.Dumps.LinkPeople(ctx, d.UserID, d.ID, peopleIDs); err != nil {
			return fmt.Errorf("link dump people: %w", err)
		}
		return o.deps.Dumps.MarkProcessed(ctx, d.UserID, d.ID, o.now())
	})
	if err != nil && externalID != nil {
		o.log.WarnContext(ctx, "event not stored, external calendar entry left orphaned",
			slog.String("dump_id", d.ID.String()),
			slog.String("external_id", *externalID),
			slog.String("error", err.Error()),
		)
	}
	return err
}

func (o *Orchestrator) hold(ctx context.Context, d *domain.Dump, p *domain.Proposal, h triage.Hold) error {
	peopleIDs := existingPeople(p)

	return o.deps.Tx.RunInTx(ctx, func(ctx context.Context) error {
		_, err := o.deps.Inbox.Create(ctx, &domain.InboxEntry{
			ID:         uuid.New(),
			UserID:     d.UserID,
			DumpID:     d.ID,
			Data:       domain.NewProposedData(*p),
			Confidence: p.Confidence,
			FlagReason: h.FlagReason,
			Status:     h.Status,
		})
		if err != nil {
			return fmt.Errorf("create inbox entry: %w", err)
		}
		if err := o.deps.Dumps.LinkPeople(ctx, d.UserID, d.ID, peopleIDs); err != nil {
			return fmt.Errorf("link dump people: %w", err)
		}
		return o.deps.Dumps.MarkProcessed(ctx, d.UserID, d.ID, o.now())
	})
}

// markProcessed stamps processed_at outside the dump's deadline.
func (o *Orchestrator) markProcessed(ctx context.Context, d *domain.Dump) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), markTimeout)
	defer cancel()

	if err := o.deps.Dumps.MarkProcessed(ctx, d.UserID, d.ID, o.now()); err != nil {
		o.log.ErrorContext(ctx, "mark dump processed failed",
			slog.String("dump_id", d.ID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// existingPeople returns the ids of people the proposal resolved to
// existing contacts.
func existingPeople(p *domain.Proposal) []uuid.UUID {
	var ids []uuid.UUID
	for _, pp := range p.People {
		if pp.PersonID != nil {
			ids = append(ids, *pp.PersonID)
		}
	}
	return ids
}
