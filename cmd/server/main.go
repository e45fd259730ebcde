package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ganot/questline/internal/app"
	"github.com/ganot/questline/internal/config"
	"github.com/ganot/questline/internal/notify"
	"github.com/ganot/questline/internal/scheduler"
	"github.com/ganot/questline/internal/sqlite"
	"github.com/ganot/questline/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Stdout carries JSON-RPC in stdio mode.
	var logWriter io.Writer = os.Stdout
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	logger := newLogger(logWriter, cfg.Log)

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return fmt.Errorf("preparing database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	if err := db.RunMigrations(); err != nil {
		return err
	}
	logger.Info().Str("path", cfg.DB.Path).Msg("connected to sqlite")

	checks := map[string]transport.Checker{"sqlite": transport.CheckFunc(db.PingContext)}

	var jobs scheduler.Store = scheduler.NewMemoryStore()
	if cfg.Scheduler.Store == "redis" {
		rdb, err := scheduler.Open(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		jobs = scheduler.NewRedisStore(rdb, cfg.Redis.Prefix)
		checks["redis"] = transport.CheckFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		logger.Info().Str("prefix", cfg.Redis.Prefix).Msg("jobs stored in redis")
	} else {
		logger.Warn().Msg("jobs kept in memory, planned hints are lost on restart")
	}

	var bus notify.Conn = notify.NewLogConn(logger.With().Str("component", "bus").Logger())
	if cfg.NATS.URL != "" {
		nc, err := notify.Connect(notify.ConnConfig{
			URL:           cfg.NATS.URL,
			Name:          cfg.NATS.Name,
			MaxReconnects: cfg.NATS.MaxReconnects,
			ReconnectWait: cfg.NATS.ReconnectWait,
		}, logger)
		if err != nil {
			return err
		}
		defer nc.Close()
		bus = nc
		checks["nats"] = natsChecker{nc}
		logger.Info().Str("url", nc.ConnectedUrl()).Msg("connected to NATS")
	}

	a := app.New(app.Deps{
		DB:            db,
		Jobs:          jobs,
		Bus:           bus,
		SubjectPrefix: cfg.NATS.SubjectPrefix,
		Runner: scheduler.Config{
			PollInterval: cfg.Scheduler.PollInterval,
			Workers:      cfg.Scheduler.Workers,
			BatchSize:    cfg.Scheduler.BatchSize,
			MaxAttempts:  cfg.Scheduler.MaxAttempts,
			RetryDelay:   cfg.Scheduler.RetryDelay,
		},
		TransportMode: cfg.Transport.Mode,
		Version:       version,
		Logger:        logger,
	})

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Runner.Run(gctx)
	})

	if cfg.Transport.Mode == "stdio" {
		g.Go(func() error {
			// The session ends when stdin closes; the runner stops with it.
			defer stop()
			logger.Info().Msg("starting stdio transport")
			return a.MCP.Run(gctx, &sdkmcp.StdioTransport{})
		})
	} else {
		srv := transport.NewServer(cfg.Server.Addr(), transport.NewRouter(a.MCP, checks, logger), logger)
		g.Go(func() error {
			return srv.Run(gctx)
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info().Msg("shutting down http server")
			return srv.Shutdown(context.Background())
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info().Msg("stopped")
	return nil
}

func newLogger(w io.Writer, cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Str("service", "questline").Logger()
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

type natsChecker struct{ nc *nats.Conn }

func (c natsChecker) Check(context.Context) error {
	if !c.nc.IsConnected() {
		return fmt.Errorf("nats status %s", c.nc.Status())
	}
	return nil
}
