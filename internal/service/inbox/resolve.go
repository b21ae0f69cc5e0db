package inbox

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/pkg/ctxutil"
)

// Dismiss closes an open entry without committing anything. Closed entries
// yield domain.ErrConflict.
func (s *Service) Dismiss(ctx context.Context, entryID uuid.UUID) (*domain.InboxEntry, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := s.inbox.Resolve(ctx, userID, entryID, domain.InboxStatusDismissed, s.now()); err != nil {
		return nil, fmt.Errorf("dismiss inbox entry: %w", err)
	}

	entry, err := s.inbox.GetByID(ctx, userID, entryID)
	if err != nil {
		return nil, fmt.Errorf("reload inbox entry: %w", err)
	}

	s.log.InfoContext(ctx, "inbox entry dismissed",
		slog.String("user_id", userID.String()),
		slog.String("entry_id", entryID.String()),
	)
	return entry, nil
}

// Delete removes an entry regardless of status.
func (s *Service) Delete(ctx context.Context, entryID uuid.UUID) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := s.inbox.Delete(ctx, userID, entryID); err != nil {
		return fmt.Errorf("delete inbox entry: %w", err)
	}

	s.log.InfoContext(ctx, "inbox entry deleted",
		slog.String("user_id", userID.String()),
		slog.String("entry_id", entryID.String()),
	)
	return nil
}
