package dump

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/pkg/ctxutil"
)

// Get returns one of the caller's dumps.
func (s *Service) Get(ctx context.Context, dumpID uuid.UUID) (*domain.Dump, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	d, err := s.dumps.GetForUser(ctx, userID, dumpID)
	if err != nil {
		return nil, fmt.Errorf("get dump: %w", err)
	}
	return d, nil
}

// History lists the caller's dumps, newest first, with what each produced.
// Dumps that yielded nothing show an empty outcome.
func (s *Service) History(ctx context.Context, input HistoryInput) ([]*domain.DumpWithOutcome, int, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, 0, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, 0, err
	}

	items, total, err := s.dumps.ListHistory(ctx, userID, domain.DumpHistoryFilter{
		Processed: input.Processed,
		Source:    input.Source,
		Limit:     input.Limit,
		Offset:    input.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list dump history: %w", err)
	}
	return items, total, nil
}
