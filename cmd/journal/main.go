// Package main is the grade journal page: it loads the journal from the
// backend REST service, renders the colored table with its summary footer
// and forwards edits back to the backend.
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

	"github.com/alem-hub/grade-journal/config"
	"github.com/alem-hub/grade-journal/internal/application/gradebook"
	"github.com/alem-hub/grade-journal/internal/infrastructure/external/journalapi"
	"github.com/alem-hub/grade-journal/internal/infrastructure/metrics"
	"github.com/alem-hub/grade-journal/internal/interface/health"
	"github.com/alem-hub/grade-journal/internal/interface/web"
	"github.com/alem-hub/grade-journal/internal/interface/web/presenter"
	"github.com/alem-hub/grade-journal/pkg/circuitbreaker"
	"github.com/alem-hub/grade-journal/pkg/logger"
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
	log.Info("starting grade journal",
		"env", cfg.App.Environment,
		"locale", cfg.App.Locale,
		"backend", cfg.Gateway.BaseURL,
	)
	appLog := logger.FromSlog(log)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. GATEWAY
	// ─────────────────────────────────────────────────────────────────────────
	m := metrics.New("journal")

	clientCfg := journalapi.DefaultClientConfig(cfg.Gateway.BaseURL)
	clientCfg.Timeout = cfg.Gateway.Timeout
	clientCfg.Logger = log
	clientCfg.Recorder = m
	clientCfg.Debug = cfg.App.Debug
	clientCfg.CircuitBreaker.Enabled = cfg.Gateway.BreakerEnabled
	clientCfg.CircuitBreaker.FailureThreshold = cfg.Gateway.BreakerThreshold
	clientCfg.CircuitBreaker.Timeout = cfg.Gateway.BreakerTimeout
	clientCfg.CircuitBreaker.OnStateChange = func(name string, from, to circuitbreaker.State) {
		m.SetBreakerState(name, int(to))
		log.Warn("backend circuit breaker changed state", "from", from.String(), "to", to.String())
	}
	client := journalapi.NewClient(clientCfg)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. MODEL AND CONTROLLERS
	// ─────────────────────────────────────────────────────────────────────────
	model := gradebook.NewModel(client,
		gradebook.WithMessages(gradebook.MessagesFor(cfg.App.Locale)),
		gradebook.WithLogger(appLog),
		gradebook.WithRefreshRecorder(m),
	)
	editor := gradebook.NewEditController(client, model, appLog)
	dispatcher := gradebook.NewDispatcher(model, editor)

	// The first load failing is not fatal: the page shows the error and
	// retries on the next request.
	if err := model.Refresh(ctx); err != nil {
		log.Warn("initial load failed", "error", err)
	}

	checker := health.NewChecker(cfg.App.Version)
	checker.Add("backend", func(ctx context.Context) error {
		if client.BreakerState() == circuitbreaker.StateOpen {
			return circuitbreaker.ErrCircuitOpen
		}
		return nil
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 4. WEB SERVER
	// ─────────────────────────────────────────────────────────────────────────
	webCfg := web.DefaultConfig()
	webCfg.Host = cfg.Web.Host
	webCfg.Port = cfg.Web.Port
	webCfg.RateLimitPerMinute = cfg.Web.RateLimitPerMinute
	webCfg.EnableMetrics = cfg.Observability.MetricsEnabled

	server := web.NewServer(webCfg, web.Dependencies{
		Model:      model,
		Editor:     editor,
		Dispatcher: dispatcher,
		Labels:     presenter.LabelsFor(cfg.App.Locale),
		Logger:     appLog,
		Metrics:    m,
		Health:     checker,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("web server error: %w", err)
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 5. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("grade journal is running", "address", webCfg.Address())

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
		log.Error("failed to stop web server gracefully", "error", err)
		return err
	}
	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

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

	log := slog.New(handler).With("service", "journal")
	slog.SetDefault(log)
	return log
}
