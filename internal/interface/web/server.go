// Package web serves the journal page: the rendered table, the filter bar,
// the add/delete forms and one form per score cell. Every mutating form
// posts to the server, which writes through the gateway and redirects back.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/alem-hub/grade-journal/internal/application/gradebook"
	"github.com/alem-hub/grade-journal/internal/infrastructure/metrics"
	"github.com/alem-hub/grade-journal/internal/interface/health"
	"github.com/alem-hub/grade-journal/internal/interface/web/presenter"
	"github.com/alem-hub/grade-journal/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains web server configuration.
type Config struct {
	Host string
	Port int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MaxHeaderBytes int

	// MaxBodyBytes caps form bodies.
	MaxBodyBytes int64

	// EnableMetrics exposes /metrics.
	EnableMetrics bool

	// RateLimitPerMinute caps requests per client IP; 0 turns it off.
	RateLimitPerMinute int
}

// DefaultConfig listens on :8080 on all interfaces.
func DefaultConfig() Config {
	return Config{
		Host:               "0.0.0.0",
		Port:               8080,
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       30 * time.Second,
		IdleTimeout:        60 * time.Second,
		MaxHeaderBytes:     1 << 20,
		MaxBodyBytes:       64 << 10,
		EnableMetrics:      true,
		RateLimitPerMinute: 0,
	}
}

// Address is the host:port passed to the listener.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Dependencies contains everything the page handlers need.
type Dependencies struct {
	Model      *gradebook.Model
	Editor     *gradebook.EditController
	Dispatcher *gradebook.Dispatcher
	Labels     presenter.Labels

	Logger  *logger.Logger
	Metrics *metrics.Metrics
	Health  *health.Checker
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server is the journal page server.
type Server struct {
	config     Config
	deps       Dependencies
	httpServer *http.Server
	router     *http.ServeMux
	handler    http.Handler
	logger     *logger.Logger

	limiter *rateLimiter
	running atomic.Bool
}

// NewServer creates a web server with the given configuration and dependencies.
func NewServer(config Config, deps Dependencies) *Server {
	s := &Server{
		config: config,
		deps:   deps,
		router: http.NewServeMux(),
		logger: deps.Logger,
	}
	if s.logger == nil {
		s.logger = logger.Default()
	}
	s.logger = s.logger.With(logger.Component("web"))
	if s.deps.Health == nil {
		s.deps.Health = health.NewChecker("")
	}
	if config.RateLimitPerMinute > 0 {
		s.limiter = newRateLimiter(config.RateLimitPerMinute, time.Minute)
	}

	s.setupRoutes()
	s.handler = s.wrap(s.router)

	s.httpServer = &http.Server{
		Addr:           config.Address(),
		Handler:        s.handler,
		ReadTimeout:    config.ReadTimeout,
		WriteTimeout:   config.WriteTimeout,
		IdleTimeout:    config.IdleTimeout,
		MaxHeaderBytes: config.MaxHeaderBytes,
	}
	return s
}

// Handler returns the fully wrapped handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTING
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Page
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /{$}", s.handleIndex)
	s.router.HandleFunc("POST /refresh", s.handleRefresh)
	s.router.HandleFunc("POST /students", s.handleAddStudent)
	s.router.HandleFunc("POST /subjects", s.handleAddSubject)
	s.router.HandleFunc("POST /students/{id}/delete", s.handleDeleteStudent)
	s.router.HandleFunc("POST /subjects/{id}/delete", s.handleDeleteSubject)
	s.router.HandleFunc("POST /grades/{student}/{subject}", s.handleEditCell)

	// ─────────────────────────────────────────────────────────────────────────
	// JSON
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /api/table", s.handleTable)

	// ─────────────────────────────────────────────────────────────────────────
	// Health & Metrics
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /live", s.handleLive)
	if s.config.EnableMetrics && s.deps.Metrics != nil {
		s.router.Handle("GET /metrics", s.deps.Metrics.Handler())
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start blocks serving the page. A second call while running is an error.
func (s *Server) Start() error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("web: already started")
	}

	s.logger.Info("journal page listening", logger.String("address", s.config.Address()))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web: listen: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests. It is a no-op when not started.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	s.logger.Info("journal page stopping")
	return s.httpServer.Shutdown(ctx)
}
