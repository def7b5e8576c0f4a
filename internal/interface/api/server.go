// Package api is the REST backend of the journal: students, subjects and
// grades over a journal.Repository, in the shape the page client consumes.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/alem-hub/grade-journal/internal/application/command"
	"github.com/alem-hub/grade-journal/internal/application/query"
	"github.com/alem-hub/grade-journal/internal/domain/journal"
	"github.com/alem-hub/grade-journal/internal/infrastructure/metrics"
	"github.com/alem-hub/grade-journal/internal/interface/health"
	"github.com/alem-hub/grade-journal/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains API server configuration.
type Config struct {
	Host string
	Port int

	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration

	// AllowedOrigins - allowed origins for CORS.
	AllowedOrigins []string

	EnableMetrics bool
}

// DefaultConfig returns default server configuration. The port matches the
// client's default backend URL.
func DefaultConfig() Config {
	return Config{
		Host:           "127.0.0.1",
		Port:           8000,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		RequestTimeout: 10 * time.Second,
		AllowedOrigins: []string{"*"},
		EnableMetrics:  true,
	}
}

// Address returns the server address string.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Dependencies contains what the handlers need.
type Dependencies struct {
	Repository journal.Repository

	Logger  *logger.Logger
	Metrics *metrics.Metrics
	Health  *health.Checker
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server is the journal REST backend.
type Server struct {
	config     Config
	deps       Dependencies
	router     chi.Router
	httpServer *http.Server
	logger     *logger.Logger
	validate   *validator.Validate

	createStudent *command.CreateStudentHandler
	createSubject *command.CreateSubjectHandler
	deleter       *command.DeleteHandler
	recordGrade   *command.RecordGradeHandler
	lists         *query.ListJournalHandler

	mu      sync.Mutex
	running bool
}

// NewServer wires handlers and routes.
func NewServer(config Config, deps Dependencies) *Server {
	log := deps.Logger
	if log == nil {
		log = logger.Default()
	}
	log = log.With(logger.Component("api"))
	if deps.Health == nil {
		deps.Health = health.NewChecker("")
	}

	s := &Server{
		config:        config,
		deps:          deps,
		logger:        log,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		createStudent: command.NewCreateStudentHandler(deps.Repository, log),
		createSubject: command.NewCreateSubjectHandler(deps.Repository, log),
		deleter:       command.NewDeleteHandler(deps.Repository, log),
		recordGrade:   command.NewRecordGradeHandler(deps.Repository, log),
		lists:         query.NewListJournalHandler(deps.Repository),
	}
	s.router = s.routes()
	s.httpServer = &http.Server{
		Addr:         config.Address(),
		Handler:      s.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTING
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	if s.config.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.config.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Route("/students", func(r chi.Router) {
		r.Get("/", s.listStudents)
		r.Post("/", s.createStudentHandler)
		r.Delete("/{id}", s.deleteStudent)
	})
	r.Route("/subjects", func(r chi.Router) {
		r.Get("/", s.listSubjects)
		r.Post("/", s.createSubjectHandler)
		r.Delete("/{id}", s.deleteSubject)
	})
	r.Route("/grades", func(r chi.Router) {
		r.Get("/", s.listGrades)
		r.Post("/", s.upsertGrade)
	})

	r.Get("/health", s.health)
	r.Get("/ready", s.health)
	r.Get("/live", s.live)
	if s.config.EnableMetrics && s.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method Not Allowed")
	})
	return r
}

// logRequests logs each request with chi's request id and feeds the HTTP metrics.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		reqLog := s.logger.WithRequestID(middleware.GetReqID(r.Context()))
		next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), reqLog)))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		if s.deps.Metrics != nil {
			s.deps.Metrics.ObserveHTTP(r.Method, route, status, time.Since(start))
		}
		reqLog.Debug("http request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Latency(time.Since(start)),
		)
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("starting API server", logger.String("address", s.config.Address()))
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
