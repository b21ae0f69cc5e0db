package dump

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/mindump-backend/internal/domain"
	"github.com/heartmarshall/mindump-backend/internal/service/pipeline"
)

type dumpRepo interface {
	Create(ctx context.Context, d *domain.Dump) (*domain.Dump, error)
	GetForUser(ctx context.Context, userID, dumpID uuid.UUID) (*domain.Dump, error)
	ListHistory(ctx context.Context, userID uuid.UUID, f domain.DumpHistoryFilter) ([]*domain.DumpWithOutcome, int, error)
	ListUnprocessed(ctx context.Context, olderThan time.Time, limit int) ([]*domain.Dump, error)
}

type queue interface {
	Submit(ctx context.Context, dumpID uuid.UUID) (*pipeline.Handle, error)
}

// Service captures dumps and hands them to the pipeline.
type Service struct {
	dumps dumpRepo
	queue queue
	log   *slog.Logger
}

func NewService(logger *slog.Logger, dumps dumpRepo, queue queue) *Service {
	return &Service{
		dumps: dumps,
		queue: queue,
		log:   logger.With("service", "dump"),
	}
}
