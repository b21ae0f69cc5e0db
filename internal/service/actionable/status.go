package actionable

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/pkg/ctxutil"
)

// Complete marks the item done. It leaves the active list with reason
// user_completed.
func (s *Service) Complete(ctx context.Context, itemID uuid.UUID) (*domain.ActionableItem, error) {
	return s.transition(ctx, itemID, "completed", func(userID uuid.UUID) error {
		return s.items.Complete(ctx, userID, itemID, s.now())
	})
}

// Archive moves the item to the archive with reason user_archived.
func (s *Service) Archive(ctx context.Context, itemID uuid.UUID) (*domain.ActionableItem, error) {
	return s.transition(ctx, itemID, "archived", func(userID uuid.UUID) error {
		at := s.now()
		reason := domain.ArchiveReasonUserArchived
		return s.items.SetArchived(ctx, userID, itemID, &at, &reason)
	})
}

// Unarchive returns the item to the active list, clearing both archive
// fields. An item still past the overdue cutoff is demoted again on the
// next read.
func (s *Service) Unarchive(ctx context.Context, itemID uuid.UUID) (*domain.ActionableItem, error) {
	return s.transition(ctx, itemID, "unarchived", func(userID uuid.UUID) error {
		return s.items.SetArchived(ctx, userID, itemID, nil, nil)
	})
}

// Delete removes the item.
func (s *Service) Delete(ctx context.Context, itemID uuid.UUID) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := s.items.Delete(ctx, userID, itemID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	s.log.InfoContext(ctx, "item deleted",
		slog.String("user_id", userID.String()),
		slog.String("item_id", itemID.String()),
	)
	return nil
}

func (s *Service) transition(ctx context.Context, itemID uuid.UUID, action string, apply func(userID uuid.UUID) error) (*domain.ActionableItem, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := apply(userID); err != nil {
		return nil, fmt.Errorf("item %s: %w", action, err)
	}

	item, err := s.items.GetByID(ctx, userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("reload item: %w", err)
	}

	s.log.InfoContext(ctx, "item "+action,
		slog.String("user_id", userID.String()),
		slog.String("item_id", itemID.String()),
	)
	return item, nil
}
