package dump

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/mindump-backend/internal/service/pipeline"
)

// ReprocessResult summarises a reprocess run.
type ReprocessResult struct {
	Found     int
	Submitted int
	Handles   []*pipeline.Handle
}

// Reprocess submits dumps of any user that were created more than olderThan
// ago and never processed. It stops at the first full-queue rejection.
func (s *Service) Reprocess(ctx context.Context, olderThan time.Duration, limit int) (ReprocessResult, error) {
	if limit <= 0 {
		limit = 100
	}

	pending, err := s.dumps.ListUnprocessed(ctx, time.Now().UTC().Add(-olderThan), limit)
	if err != nil {
		return ReprocessResult{}, fmt.Errorf("list unprocessed dumps: %w", err)
	}

	res := ReprocessResult{Found: len(pending)}
	for _, d := range pending {
		h, err := s.queue.Submit(ctx, d.ID)
		if err != nil {
			if errors.Is(err, pipeline.ErrQueueFull) || errors.Is(err, pipeline.ErrQueueClosed) {
				break
			}
			return res, fmt.Errorf("submit dump %s: %w", d.ID, err)
		}
		res.Submitted++
		res.Handles = append(res.Handles, h)
	}

	s.log.InfoContext(ctx, "unprocessed dumps resubmitted",
		slog.Int("found", res.Found),
		slog.Int("submitted", res.Submitted),
	)
	return res, nil
}
