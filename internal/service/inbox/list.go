package inbox

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/pkg/ctxutil"
)

// List returns a page of entries newest first and the total count for the
// same filter. No statuses means all statuses.
func (s *Service) List(ctx context.Context, input ListInput) ([]*domain.InboxEntry, int, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, 0, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, 0, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = DefaultLimit
	}

	entries, total, err := s.inbox.List(ctx, userID, input.statuses(), limit, input.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list inbox entries: %w", err)
	}
	return entries, total, nil
}

// Get returns a single entry by ID.
func (s *Service) Get(ctx context.Context, entryID uuid.UUID) (*domain.InboxEntry, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	entry, err := s.inbox.GetByID(ctx, userID, entryID)
	if err != nil {
		return nil, fmt.Errorf("get inbox entry: %w", err)
	}
	return entry, nil
}
