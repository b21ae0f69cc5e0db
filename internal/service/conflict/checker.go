// Package conflict tells whether a proposed time window collides with the
// user's existing commitments.
package conflict

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
)

type eventRepo interface {
	HasOverlap(ctx context.Context, userID uuid.UUID, start, end time.Time) (bool, error)
}

type busyChecker interface {
	IsBusy(ctx context.Context, userID uuid.UUID, start, end time.Time) (bool, error)
}

// Checker consults the local events table and, when available, the
// user's external calendar.
type Checker struct {
	events   eventRepo
	calendar busyChecker
	log      *slog.Logger
}

// NewChecker creates a Checker. calendar may be nil.
func NewChecker(logger *slog.Logger, events eventRepo, calendar busyChecker) *Checker {
	return &Checker{
		events:   events,
		calendar: calendar,
		log:      logger.With("service", "conflict"),
	}
}

// HasConflict reports whether [start, end) overlaps an existing commitment.
// A source that fails counts as having no conflict.
func (c *Checker) HasConflict(ctx context.Context, userID uuid.UUID, start, end time.Time) bool {
	overlap, err := c.events.HasOverlap(ctx, userID, start, end)
	if err != nil {
		c.log.WarnContext(ctx, "local conflict check failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
	} else if overlap {
		return true
	}

	if c.calendar == nil {
		return false
	}

	busy, err := c.calendar.IsBusy(ctx, userID, start, end)
	if err != nil {
		if !errors.Is(err, domain.ErrCalendarNotLinked) {
			c.log.WarnContext(ctx, "calendar conflict check failed",
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()),
			)
		}
		return false
	}
	return busy
}
