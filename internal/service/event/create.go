package event

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/pkg/ctxutil"
)

// Create stores a manually entered event. The external calendar entry is
// attempted first; a sync failure leaves the event local-only.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Event, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	ev := &domain.Event{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     strings.TrimSpace(input.Title),
		StartTime: input.StartTime.UTC(),
		EndTime:   input.EndTime,
		Location:  strings.TrimSpace(input.Location),
		Category:  strings.TrimSpace(input.Category),
		CreatedAt: s.now(),
	}
	ev.ExternalCalendarID = s.calendar.CreateEvent(ctx, userID, draftOf(ev))

	var created *domain.Event
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.events.Create(txCtx, ev)
		if err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		if err := s.events.LinkPeople(txCtx, userID, created.ID, input.PersonIDs); err != nil {
			return fmt.Errorf("link event people: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "event created",
		slog.String("user_id", userID.String()),
		slog.String("event_id", created.ID.String()),
		slog.Bool("synced", created.ExternalCalendarID != nil),
	)
	return created, nil
}

// Sync pushes an event that has no external calendar entry yet. It is a
// no-op for events that are already synced.
func (s *Service) Sync(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	ev, err := s.events.GetByID(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if ev.ExternalCalendarID != nil {
		return ev, nil
	}

	externalID := s.calendar.CreateEvent(ctx, userID, draftOf(ev))
	if externalID == nil {
		return nil, fmt.Errorf("sync event %s: %w", eventID, domain.ErrCalendarUnavailable)
	}
	if err := s.events.SetExternalID(ctx, userID, eventID, *externalID); err != nil {
		return nil, fmt.Errorf("store external id: %w", err)
	}
	ev.ExternalCalendarID = externalID

	s.log.InfoContext(ctx, "event synced",
		slog.String("user_id", userID.String()),
		slog.String("event_id", eventID.String()),
	)
	return ev, nil
}
