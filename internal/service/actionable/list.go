package actionable

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/pkg/ctxutil"
)

// ListActive returns items that are neither archived nor overdue.
func (s *Service) ListActive(ctx context.Context, input ListInput) ([]*domain.ActionableItem, error) {
	userID, err := s.enforce(ctx, input)
	if err != nil {
		return nil, err
	}

	items, err := s.items.ListActive(ctx, userID, input.filter())
	if err != nil {
		return nil, fmt.Errorf("list active items: %w", err)
	}
	return items, nil
}

// ListArchived returns archived items, including freshly demoted ones.
func (s *Service) ListArchived(ctx context.Context, input ListInput) ([]*domain.ActionableItem, error) {
	userID, err := s.enforce(ctx, input)
	if err != nil {
		return nil, err
	}

	items, err := s.items.ListArchived(ctx, userID, input.filter())
	if err != nil {
		return nil, fmt.Errorf("list archived items: %w", err)
	}
	return items, nil
}

// Get returns one item, archived first if it has gone overdue.
func (s *Service) Get(ctx context.Context, itemID uuid.UUID) (*domain.ActionableItem, error) {
	userID, err := s.enforce(ctx, ListInput{})
	if err != nil {
		return nil, err
	}

	item, err := s.items.GetByID(ctx, userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// Dashboard returns item and inbox counters for the caller.
func (s *Service) Dashboard(ctx context.Context) (domain.ItemDashboard, error) {
	userID, err := s.enforce(ctx, ListInput{})
	if err != nil {
		return domain.ItemDashboard{}, err
	}

	now := s.now()
	local := now.In(s.loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	d, err := s.items.Counts(ctx, userID, now, dayStart, dayEnd)
	if err != nil {
		return domain.ItemDashboard{}, fmt.Errorf("count items: %w", err)
	}

	d.PendingInbox, d.NeedsInfoInbox, err = s.inbox.CountOpen(ctx, userID)
	if err != nil {
		return domain.ItemDashboard{}, fmt.Errorf("count inbox: %w", err)
	}
	return d, nil
}

func (s *Service) enforce(ctx context.Context, input ListInput) (uuid.UUID, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return uuid.Nil, err
	}
	if err := s.archive.Enforce(ctx, userID); err != nil {
		return uuid.Nil, fmt.Errorf("enforce archive rules: %w", err)
	}
	return userID, nil
}
