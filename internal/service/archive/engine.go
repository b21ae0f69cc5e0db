// Package archive demotes overdue todos out of the active list. Rules are
// enforced lazily, at the start of every read that lists or counts items.
package archive

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
)

// Cutoff is how long past its due date an open todo stays active.
const Cutoff = 12 * time.Hour

type itemRepo interface {
	ArchiveOverdue(ctx context.Context, userID *uuid.UUID, cutoff, now time.Time) (int64, error)
}

// Engine applies the archive rules.
type Engine struct {
	items   itemRepo
	now     func() time.Time
	metrics *Metrics
	log     *slog.Logger
}

// NewEngine creates an Engine. now may be nil to use the wall clock.
func NewEngine(logger *slog.Logger, items itemRepo, now func() time.Time) *Engine {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Engine{
		items:   items,
		now:     now,
		metrics: NewMetrics(),
		log:     logger.With("service", "archive"),
	}
}

// IsOverdue reports whether item should be archived as overdue at now.
// An item due exactly Cutoff ago is not yet overdue.
func IsOverdue(item *domain.ActionableItem, now time.Time) bool {
	if item.IsArchived() || item.Completed || item.DueDate == nil {
		return false
	}
	return item.DueDate.Before(now.Add(-Cutoff))
}

// Enforce archives the user's overdue todos. It is idempotent.
func (e *Engine) Enforce(ctx context.Context, userID uuid.UUID) error {
	_, err := e.run(ctx, &userID)
	return err
}

// EnforceAll sweeps every user and returns how many items were archived.
func (e *Engine) EnforceAll(ctx context.Context) (int64, error) {
	return e.run(ctx, nil)
}

func (e *Engine) run(ctx context.Context, userID *uuid.UUID) (int64, error) {
	now := e.now()
	n, err := e.items.ArchiveOverdue(ctx, userID, now.Add(-Cutoff), now)
	if err != nil {
		e.metrics.Failures.Inc()
		return 0, fmt.Errorf("archive overdue items: %w", err)
	}

	if n > 0 {
		e.metrics.Archived.Add(float64(n))
		attrs := []any{slog.Int64("archived", n)}
		if userID != nil {
			attrs = append(attrs, slog.String("user_id", userID.String()))
		}
		e.log.InfoContext(ctx, "overdue items archived", attrs...)
	}
	return n, nil
}
