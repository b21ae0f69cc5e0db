package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/mindump-backend/internal/adapter/postgres"
	actionablerepo "github.com/heartmarshall/mindump-backend/internal/adapter/postgres/actionable"
	calendaraccountrepo "github.com/heartmarshall/mindump-backend/internal/adapter/postgres/calendaraccount"
	dumprepo "github.com/heartmarshall/mindump-backend/internal/adapter/postgres/dump"
	eventrepo "github.com/heartmarshall/mindump-backend/internal/adapter/postgres/event"
	inboxrepo "github.com/heartmarshall/mindump-backend/internal/adapter/postgres/inbox"
	personrepo "github.com/heartmarshall/mindump-backend/internal/adapter/postgres/person"
	"github.com/heartmarshall/mindump-backend/internal/adapter/provider/claude"
	"github.com/heartmarshall/mindump-backend/internal/adapter/provider/embedder"
	"github.com/heartmarshall/mindump-backend/internal/adapter/provider/google"
	"github.com/heartmarshall/mindump-backend/internal/adapter/storage/media"
	"github.com/heartmarshall/mindump-backend/internal/config"
	"github.com/heartmarshall/mindump-backend/internal/service/actionable"
	"github.com/heartmarshall/mindump-backend/internal/service/archive"
	"github.com/heartmarshall/mindump-backend/internal/service/calendaraccount"
	"github.com/heartmarshall/mindump-backend/internal/service/conflict"
	"github.com/heartmarshall/mindump-backend/internal/service/dump"
	"github.com/heartmarshall/mindump-backend/internal/service/event"
	"github.com/heartmarshall/mindump-backend/internal/service/inbox"
	"github.com/heartmarshall/mindump-backend/internal/service/person"
	"github.com/heartmarshall/mindump-backend/internal/service/pipeline"
	"github.com/heartmarshall/mindump-backend/internal/service/retrieval"
)

// Container is the wired object graph shared by the server and the admin
// CLI. Close releases the database pool.
type Container struct {
	Config *config.Config
	Log    *slog.Logger
	Pool   *pgxpool.Pool

	Queue   *pipeline.Queue
	Archive *archive.Engine

	Dumps     *dump.Service
	Inbox     *inbox.Service
	Events    *event.Service
	People    *person.Service
	Items     *actionable.Service
	Calendars *calendaraccount.Service
}

// Build connects to the database and constructs every adapter and service.
// The pipeline queue is created but not started.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	loc, err := time.LoadLocation(cfg.Calendar.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", cfg.Calendar.TimeZone, err)
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	c, err := build(cfg, logger, pool, loc)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return c, nil
}

func build(cfg *config.Config, logger *slog.Logger, pool *pgxpool.Pool, loc *time.Location) (*Container, error) {
	tx := postgres.NewTxManager(pool)
	dumps := dumprepo.New(pool)
	events := eventrepo.New(pool)
	inboxes := inboxrepo.New(pool)
	people := personrepo.New(pool)
	items := actionablerepo.New(pool)
	accounts := calendaraccountrepo.New(pool)

	resolver, err := media.New(cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("create media resolver: %w", err)
	}
	if !cfg.AI.HasAI() {
		logger.Warn("ai.api_key is not set; extraction requests will fail")
	}
	extractor, err := claude.NewExtractor(cfg.AI, cfg.Calendar.TimeZone, resolver, logger)
	if err != nil {
		return nil, fmt.Errorf("create extractor: %w", err)
	}
	emb, err := embedder.New(cfg.Embedding, logger)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	cal := google.NewCalendar(cfg.Calendar, accounts, logger)

	archiveEngine := archive.NewEngine(logger, items, nil)

	orchestrator := pipeline.NewOrchestrator(logger, pipeline.Deps{
		Dumps:     dumps,
		Events:    events,
		Inbox:     inboxes,
		People:    people,
		Embedder:  emb,
		Retriever: retrieval.NewRetriever(dumps),
		Extractor: extractor,
		Conflicts: conflict.NewChecker(logger, events, cal),
		Calendar:  cal,
		Tx:        tx,
	}, cfg.Pipeline.ContextLimit)
	queue := pipeline.NewQueue(logger, orchestrator, cfg.Pipeline)

	return &Container{
		Config:  cfg,
		Log:     logger,
		Pool:    pool,
		Queue:   queue,
		Archive: archiveEngine,

		Dumps: dump.NewService(logger, dumps, queue),
		Inbox: inbox.NewService(logger, inbox.Deps{
			Inbox:    inboxes,
			Events:   events,
			People:   people,
			Items:    items,
			Dumps:    dumps,
			Calendar: cal,
			Tx:       tx,
		}),
		Events:    event.NewService(logger, events, cal, tx),
		People:    person.NewService(logger, people, events, items, archiveEngine),
		Items:     actionable.NewService(logger, items, inboxes, archiveEngine, loc),
		Calendars: calendaraccount.NewService(logger, accounts, cal),
	}, nil
}

// Close releases the database pool.
func (c *Container) Close() {
	c.Pool.Close()
}
