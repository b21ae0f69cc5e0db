package person

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/pkg/ctxutil"
)

// Get returns one person.
func (s *Service) Get(ctx context.Context, personID uuid.UUID) (*domain.Person, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	p, err := s.people.GetByID(ctx, userID, personID)
	if err != nil {
		return nil, fmt.Errorf("get person: %w", err)
	}
	return p, nil
}

// List returns every person: pinned first, then important, then by name.
func (s *Service) List(ctx context.Context) ([]*domain.Person, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	people, err := s.people.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	return people, nil
}

// Overview returns the person with linked events and active items. The
// archive rules run first so overdue items never show as active.
func (s *Service) Overview(ctx context.Context, personID uuid.UUID) (*domain.PersonOverview, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	p, err := s.people.GetByID(ctx, userID, personID)
	if err != nil {
		return nil, fmt.Errorf("get person: %w", err)
	}

	if err := s.archive.Enforce(ctx, userID); err != nil {
		return nil, fmt.Errorf("enforce archive rules: %w", err)
	}

	events, err := s.events.List(ctx, userID, domain.EventFilter{PersonID: &personID, Limit: overviewEventLimit})
	if err != nil {
		return nil, fmt.Errorf("list person events: %w", err)
	}

	items, err := s.items.ListActive(ctx, userID, domain.ItemFilter{PersonID: &personID, Limit: overviewItemLimit})
	if err != nil {
		return nil, fmt.Errorf("list person items: %w", err)
	}

	return &domain.PersonOverview{Person: *p, Events: events, ActiveItems: items}, nil
}
