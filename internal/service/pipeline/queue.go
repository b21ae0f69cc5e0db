package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/mindump-backend/internal/config"
	"github.com/heartmarshall/mindump-backend/pkg/ctxutil"
)

var (
	// ErrQueueFull is returned by Submit when no buffer slot is free.
	ErrQueueFull = errors.New("pipeline queue full")
	// ErrQueueClosed is returned by Submit after shutdown, and reported by
	// handles whose job never reached a worker.
	ErrQueueClosed = errors.New("pipeline queue closed")
)

type processor interface {
	ProcessDump(ctx context.Context, dumpID uuid.UUID)
}

// Handle tracks one submitted dump.
type Handle struct {
	DumpID uuid.UUID
	done   chan struct{}
	err    error
}

// Done is closed once the dump has been processed or abandoned.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Err is nil when a worker ran the dump, or the reason it never ran.
// Only meaningful after Done is closed.
func (h *Handle) Err() error { return h.err }

// Wait blocks until the handle completes or ctx ends.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handle) finish(err error) {
	h.err = err
	close(h.done)
}

type job struct {
	handle *Handle
	// carries user and request ids for log correlation
	origin context.Context
}

// Queue is a bounded in-process job queue served by a fixed worker pool.
// Dumps are never retried.
type Queue struct {
	proc    processor
	jobs    chan job
	workers int
	timeout time.Duration
	metrics *Metrics
	log     *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewQueue creates a Queue. Call Run to start the workers.
func NewQueue(logger *slog.Logger, proc processor, cfg config.PipelineConfig) *Queue {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	size := cfg.QueueSize
	if size < 1 {
		size = 1
	}
	return &Queue{
		proc:    proc,
		jobs:    make(chan job, size),
		workers: workers,
		timeout: cfg.DumpTimeout,
		metrics: NewMetrics(),
		log:     logger.With("service", "pipeline_queue"),
	}
}

// Submit enqueues a dump without waiting for it to be processed.
func (q *Queue) Submit(ctx context.Context, dumpID uuid.UUID) (*Handle, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.metrics.QueueRejected.Inc()
		return nil, ErrQueueClosed
	}

	h := &Handle{DumpID: dumpID, done: make(chan struct{})}
	select {
	case q.jobs <- job{handle: h, origin: ctxutil.Detach(ctx)}:
		q.metrics.QueueDepth.Inc()
		return h, nil
	default:
		q.metrics.QueueRejected.Inc()
		q.log.WarnContext(ctx, "pipeline queue full", slog.String("dump_id", dumpID.String()))
		return nil, ErrQueueFull
	}
}

// Run starts the workers and blocks until ctx is cancelled or Close is
// called and the buffer drained. Jobs still queued when ctx ends are
// finished with ErrQueueClosed.
func (q *Queue) Run(ctx context.Context) error {
	q.log.InfoContext(ctx, "pipeline workers started", slog.Int("workers", q.workers))

	g, gctx := errgroup.WithContext(ctx)
	for range q.workers {
		g.Go(func() error {
			q.work(gctx)
			return nil
		})
	}
	err := g.Wait()

	q.Close()
	abandoned := 0
	for j := range q.jobs {
		q.metrics.QueueDepth.Dec()
		j.handle.finish(ErrQueueClosed)
		abandoned++
	}

	q.log.InfoContext(context.WithoutCancel(ctx), "pipeline workers stopped", slog.Int("abandoned", abandoned))
	return err
}

// QueueStats is a point-in-time view of the queue.
type QueueStats struct {
	Pending  int
	Capacity int
	Workers  int
}

// Stats reports how many jobs are buffered.
func (q *Queue) Stats() QueueStats {
	return QueueStats{Pending: len(q.jobs), Capacity: cap(q.jobs), Workers: q.workers}
}

// Close stops accepting submissions. Workers finish the buffered jobs.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.jobs)
}

func (q *Queue) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-q.jobs:
			if !ok {
				return
			}
			q.metrics.QueueDepth.Dec()
			q.process(ctx, j)
		}
	}
}

func (q *Queue) process(ctx context.Context, j job) {
	ctx = ctxutil.Carry(ctx, j.origin)
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			q.log.ErrorContext(ctx, "panic while processing dump",
				slog.String("dump_id", j.handle.DumpID.String()),
				slog.Any("panic", r),
			)
			j.handle.finish(errors.New("dump processing panicked"))
		}
	}()

	q.proc.ProcessDump(ctx, j.handle.DumpID)
	j.handle.finish(nil)
}
