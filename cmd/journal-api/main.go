// Package main is the journal backend: the REST service storing students,
// subjects and grades that the journal page talks to.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alem-hub/grade-journal/config"
	"github.com/alem-hub/grade-journal/internal/domain/journal"
	"github.com/alem-hub/grade-journal/internal/infrastructure/metrics"
	"github.com/alem-hub/grade-journal/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/grade-journal/internal/infrastructure/persistence/postgres"
	"github.com/alem-hub/grade-journal/internal/infrastructure/persistence/redis"
	"github.com/alem-hub/grade-journal/internal/infrastructure/persistence/sqlite"
	"github.com/alem-hub/grade-journal/internal/interface/api"
	"github.com/alem-hub/grade-journal/internal/interface/health"
	"github.com/alem-hub/grade-journal/pkg/logger"
	"github.com/alem-hub/grade-journal/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION AND LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	log.Info("starting journal API",
		"env", cfg.App.Environment,
		"driver", cfg.Database.Driver,
		"redis", cfg.Redis.Enabled,
	)
	appLog := logger.FromSlog(log)
	checker := health.NewChecker(cfg.App.Version)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. STORAGE
	// ─────────────────────────────────────────────────────────────────────────
	repo, closeRepo, err := openRepository(ctx, cfg, log, checker)
	if err != nil {
		return err
	}
	defer closeRepo()

	// ─────────────────────────────────────────────────────────────────────────
	// 3. REDIS LIST CACHE (optional)
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Redis.Enabled {
		redisCfg := redis.DefaultConfig()
		redisCfg.Addr = cfg.Redis.Addr
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB

		cache, err := retry.DoWithData(ctx, func(ctx context.Context) (*redis.Cache, error) {
			return redis.NewCache(ctx, redisCfg)
		}, retry.WithMaxAttempts(3), retry.WithRetryIf(func(error) bool { return true }))
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
		} else {
			defer cache.Close()
			repo = redis.NewCachedRepository(repo, cache, cfg.Redis.TTL, appLog)
			checker.Add("redis", health.PingCheck(cache))
			log.Info("Redis list cache enabled", "addr", redisCfg.Addr)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. API SERVER
	// ─────────────────────────────────────────────────────────────────────────
	apiCfg := api.DefaultConfig()
	apiCfg.Host = cfg.API.Host
	apiCfg.Port = cfg.API.Port
	apiCfg.AllowedOrigins = cfg.API.AllowedOrigins
	apiCfg.RequestTimeout = cfg.API.RequestTimeout
	apiCfg.EnableMetrics = cfg.Observability.MetricsEnabled

	server := api.NewServer(apiCfg, api.Dependencies{
		Repository: repo,
		Logger:     appLog,
		Metrics:    metrics.New("journal_api"),
		Health:     checker,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("api server error: %w", err)
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 5. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("journal API is running", "address", apiCfg.Address())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop API server gracefully", "error", err)
		return err
	}
	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// openRepository connects the configured driver, retrying while the store
// comes up, and registers its health check.
func openRepository(ctx context.Context, cfg *config.Config, log *slog.Logger, checker *health.Checker) (journal.Repository, func(), error) {
	onRetry := func(attempt int, err error, delay time.Duration) {
		log.Warn("storage not ready, retrying", "attempt", attempt, "delay", delay.String(), "error", err)
	}
	retrier := retry.ConnectRetrier(cfg.Database.ConnectRetries, onRetry)

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		opts := postgres.DefaultPoolOptions()
		opts.MaxConns = cfg.Database.MaxConns

		var conn *postgres.Connection
		err := retrier.Do(ctx, func(ctx context.Context) error {
			var err error
			conn, err = postgres.Connect(ctx, cfg.Database.URL, opts)
			return err
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		migrator := postgres.NewMigrator(conn)
		if err := migrator.Migrate(ctx); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		if status, err := migrator.Status(ctx); err == nil {
			log.Info("migrations completed", "total", len(status))
		}

		checker.Add("postgres", health.PingCheck(conn))
		return postgres.NewJournalRepository(conn), conn.Close, nil

	case config.DriverSQLite:
		repo, err := sqlite.Open(cfg.Database.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		checker.Add("sqlite", health.PingCheck(repo))
		log.Info("sqlite database opened", "path", cfg.Database.SQLitePath)
		return repo, func() { _ = repo.Close() }, nil

	default:
		log.Info("using in-memory storage; data is lost on restart")
		return memory.NewJournalRepository(), func() {}, nil
	}
}

// setupLogger builds the process logger: text in development, JSON otherwise.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logger.ParseLevel(cfg.Observability.LogLevel)}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.IsDevelopment() || cfg.Observability.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler).With("service", "journal-api")
	slog.SetDefault(log)
	return log
}
