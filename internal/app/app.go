package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/mindump-backend/internal/auth"
	"github.com/heartmarshall/mindump-backend/internal/config"
	"github.com/heartmarshall/mindump-backend/internal/transport/middleware"
	"github.com/heartmarshall/mindump-backend/internal/transport/rest"
)

const rateLimitCleanup = time.Minute

// Run is the server entry point. It loads configuration, builds the object
// graph, and serves HTTP alongside the pipeline workers until ctx is
// cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	c, err := Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, rateLimitCleanup)
	defer limiter.Stop()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      newHandler(c, limiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return serve(ctx, c, srv)
}

func newHandler(c *Container, limiter *middleware.RateLimiter) http.Handler {
	cfg := c.Config
	log := c.Log

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	return rest.NewRouter(rest.Handlers{
		Health:   rest.NewHealthHandler(c.Pool, c.Queue, BuildVersion()),
		Dump:     rest.NewDumpHandler(c.Dumps, log),
		Inbox:    rest.NewInboxHandler(c.Inbox, log),
		Event:    rest.NewEventHandler(c.Events, log),
		Person:   rest.NewPersonHandler(c.People, log),
		Item:     rest.NewItemHandler(c.Items, log),
		Calendar: rest.NewCalendarHandler(c.Calendars, log),
	}, rest.RouterConfig{
		Outer: middleware.Chain(
			middleware.Recovery(log),
			middleware.RequestID,
			middleware.Logger(log),
			middleware.CORS(cfg.CORS),
		),
		Auth: middleware.Chain(
			middleware.Auth(auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)),
			limiter.Limit(),
		),
		MetricsPath: metricsPath,
	})
}

// serve runs the HTTP server and the pipeline workers. On shutdown the
// server stops first, then the queue stops accepting work and drains its
// buffer until the shutdown timeout.
func serve(ctx context.Context, c *Container, srv *http.Server) error {
	log := c.Log
	timeout := c.Config.Server.ShutdownTimeout

	queueCtx, cancelQueue := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelQueue()
	queueDone := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(queueDone)
		return c.Queue.Run(queueCtx)
	})

	g.Go(func() error {
		log.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown", slog.String("error", err.Error()))
		}

		c.Queue.Close()
		select {
		case <-queueDone:
		case <-shutdownCtx.Done():
			log.Warn("pipeline drain timed out")
			cancelQueue()
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("stopped")
	return nil
}
