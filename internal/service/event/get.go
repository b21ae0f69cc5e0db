package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/pkg/ctxutil"
)

// List returns events ordered by start time.
func (s *Service) List(ctx context.Context, input ListInput) ([]*domain.Event, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = DefaultLimit
	}

	events, err := s.events.List(ctx, userID, domain.EventFilter{
		From:     input.From,
		To:       input.To,
		PersonID: input.PersonID,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// Get returns one event.
func (s *Service) Get(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	ev, err := s.events.GetByID(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

// Delete removes the local event. The external calendar entry is left
// in place.
func (s *Service) Delete(ctx context.Context, eventID uuid.UUID) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := s.events.Delete(ctx, userID, eventID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	s.log.InfoContext(ctx, "event deleted",
		slog.String("user_id", userID.String()),
		slog.String("event_id", eventID.String()),
	)
	return nil
}
