package dump

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/pkg/ctxutil"
)

// Create stores a dump and submits it for processing. It returns as soon as
// the dump is stored; a full queue leaves the dump unprocessed for a later
// reprocess run instead of failing the request.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Dump, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	source := input.Source
	if source == "" {
		source = domain.DumpSourceManual
	}

	d, err := s.dumps.Create(ctx, &domain.Dump{
		ID:        uuid.New(),
		UserID:    userID,
		Source:    source,
		Text:      trimOrNil(input.Text),
		MediaRef:  trimOrNil(input.MediaRef),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create dump: %w", err)
	}

	if _, err := s.queue.Submit(ctx, d.ID); err != nil {
		s.log.WarnContext(ctx, "dump not queued",
			slog.String("user_id", userID.String()),
			slog.String("dump_id", d.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	s.log.InfoContext(ctx, "dump captured",
		slog.String("user_id", userID.String()),
		slog.String("dump_id", d.ID.String()),
		slog.String("source", string(source)),
	)
	return d, nil
}
