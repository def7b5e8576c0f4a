// Package journalapi implements the Remote Data Gateway: a typed client for
// the journal backend's REST endpoints. Every failure surfaces as a
// *FetchError; nothing is retried.
package journalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
	"github.com/alem-hub/grade-journal/pkg/circuitbreaker"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Endpoint paths of the canonical backend contract.
const (
	PathStudents = "/students/"
	PathSubjects = "/subjects/"
	PathGrades   = "/grades/"
)

// DefaultBaseURL is where journal-api listens by default.
const DefaultBaseURL = "http://127.0.0.1:8000"

// CallRecorder receives one observation per backend call.
type CallRecorder interface {
	ObserveCall(operation string, d time.Duration, err error)
}

// CircuitBreakerConfig configures the breaker around backend calls.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	SuccessThreshold int
	Timeout          time.Duration

	// MaxHalfOpenRequests is how many calls may probe a recovering backend
	// at once. It must cover the three concurrent reads of a refresh.
	MaxHalfOpenRequests int

	OnStateChange func(name string, from, to circuitbreaker.State)
}

// DefaultCircuitBreakerConfig returns the breaker defaults.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		SuccessThreshold: 1,
		Timeout:          15 * time.Second,

		MaxHalfOpenRequests: 3,
	}
}

// ClientConfig contains configuration for the gateway client.
type ClientConfig struct {
	// BaseURL is the backend root, without a trailing slash.
	BaseURL string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// CircuitBreaker guards against a dead backend.
	CircuitBreaker CircuitBreakerConfig

	// UserAgent is sent with every request.
	UserAgent string

	// Logger for structured logging.
	Logger *slog.Logger

	// Recorder receives call metrics (optional).
	Recorder CallRecorder

	// HTTPClient overrides the default client (optional).
	HTTPClient *http.Client

	// Debug enables per-request debug logging.
	Debug bool
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return ClientConfig{
		BaseURL:        baseURL,
		Timeout:        10 * time.Second,
		CircuitBreaker: DefaultCircuitBreakerConfig(),
		UserAgent:      "grade-journal/1.0",
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the journal backend client.
type Client struct {
	config     ClientConfig
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	breaker    *circuitbreaker.CircuitBreaker
	recorder   CallRecorder
}

// NewClient creates a new gateway client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	c := &Client{
		config:     config,
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		logger:     config.Logger.With("component", "journalapi"),
		recorder:   config.Recorder,
	}

	if cb := config.CircuitBreaker; cb.Enabled {
		c.breaker = circuitbreaker.New("journal-api",
			circuitbreaker.WithFailureThreshold(cb.FailureThreshold),
			circuitbreaker.WithSuccessThreshold(cb.SuccessThreshold),
			circuitbreaker.WithTimeout(cb.Timeout),
			circuitbreaker.WithMaxHalfOpenRequests(cb.MaxHalfOpenRequests),
			circuitbreaker.WithOnStateChange(cb.OnStateChange),
			circuitbreaker.WithIsFailure(countsAgainstBackend),
		)
	}
	return c
}

// countsAgainstBackend keeps client mistakes (4xx) and caller cancellations
// from opening the breaker.
func countsAgainstBackend(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Transient()
	}
	return true
}

// ══════════════════════════════════════════════════════════════════════════════
// READ OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// ListStudents fetches every student.
func (c *Client) ListStudents(ctx context.Context) ([]journal.Student, error) {
	var dtos []StudentDTO
	if err := c.do(ctx, "list_students", http.MethodGet, PathStudents, nil, &dtos); err != nil {
		return nil, err
	}
	return studentsToDomain(dtos), nil
}

// ListSubjects fetches every subject.
func (c *Client) ListSubjects(ctx context.Context) ([]journal.Subject, error) {
	var dtos []SubjectDTO
	if err := c.do(ctx, "list_subjects", http.MethodGet, PathSubjects, nil, &dtos); err != nil {
		return nil, err
	}
	return subjectsToDomain(dtos), nil
}

// ListGrades fetches every grade. Scores outside [0,100] are dropped.
func (c *Client) ListGrades(ctx context.Context) ([]journal.Grade, error) {
	var dtos []GradeDTO
	if err := c.do(ctx, "list_grades", http.MethodGet, PathGrades, nil, &dtos); err != nil {
		return nil, err
	}
	grades, dropped := gradesToDomain(dtos)
	if dropped > 0 {
		c.logger.Warn("dropped grades with out-of-range scores", "count", dropped)
	}
	return grades, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// WRITE OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// CreateStudent adds a student and returns it as stored.
func (c *Client) CreateStudent(ctx context.Context, name string) (journal.Student, error) {
	var dto StudentDTO
	if err := c.do(ctx, "create_student", http.MethodPost, PathStudents, NameRequest{Name: name}, &dto); err != nil {
		return journal.Student{}, err
	}
	return dto.ToDomain(), nil
}

// CreateSubject adds a subject and returns it as stored.
func (c *Client) CreateSubject(ctx context.Context, name string) (journal.Subject, error) {
	var dto SubjectDTO
	if err := c.do(ctx, "create_subject", http.MethodPost, PathSubjects, NameRequest{Name: name}, &dto); err != nil {
		return journal.Subject{}, err
	}
	return dto.ToDomain(), nil
}

// UpsertGrade creates or replaces the grade of (studentID, subjectID).
func (c *Client) UpsertGrade(ctx context.Context, studentID, subjectID int64, score int) error {
	body := GradeRequest{StudentID: studentID, SubjectID: subjectID, Score: score}
	return c.do(ctx, "upsert_grade", http.MethodPost, PathGrades, body, nil)
}

// DeleteStudent removes a student and their grades.
func (c *Client) DeleteStudent(ctx context.Context, id int64) error {
	return c.do(ctx, "delete_student", http.MethodDelete, PathStudents+strconv.FormatInt(id, 10), nil, nil)
}

// DeleteSubject removes a subject and its grades.
func (c *Client) DeleteSubject(ctx context.Context, id int64) error {
	return c.do(ctx, "delete_subject", http.MethodDelete, PathSubjects+strconv.FormatInt(id, 10), nil, nil)
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH AND STATUS
// ══════════════════════════════════════════════════════════════════════════════

// BreakerState reports the breaker position; closed when the breaker is disabled.
func (c *Client) BreakerState() circuitbreaker.State {
	if c.breaker == nil {
		return circuitbreaker.StateClosed
	}
	return c.breaker.State()
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP PLUMBING
// ══════════════════════════════════════════════════════════════════════════════

// do performs one call through the breaker. Every error it returns is a *FetchError.
func (c *Client) do(ctx context.Context, op, method, path string, body, result any) error {
	start := time.Now()
	fullURL := c.baseURL + path

	call := func(ctx context.Context) error {
		return c.doSingleRequest(ctx, op, method, fullURL, body, result)
	}

	var err error
	if c.breaker != nil {
		err = c.breaker.Execute(ctx, call)
		if circuitbreaker.IsRejection(err) {
			err = &FetchError{
				Op:      op,
				Method:  method,
				URL:     fullURL,
				Message: "backend temporarily unavailable",
				Err:     err,
			}
		}
	} else {
		err = call(ctx)
	}

	if c.recorder != nil {
		c.recorder.ObserveCall(op, time.Since(start), err)
	}
	if err != nil {
		c.logger.Warn("backend call failed", "operation", op, "method", method, "path", path, "error", err)
	}
	return err
}

// doSingleRequest performs a single HTTP request.
func (c *Client) doSingleRequest(ctx context.Context, op, method, fullURL string, body, result any) error {
	fail := func(status int, err error) *FetchError {
		return &FetchError{Op: op, Method: method, URL: fullURL, StatusCode: status, Err: err}
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fail(0, fmt.Errorf("marshal body: %w", err))
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return fail(0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	if c.config.Debug {
		c.logger.Debug("journal api request", "method", method, "url", fullURL)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fetchErr := fail(resp.StatusCode, nil)
		var eb errorBody
		if json.Unmarshal(respBody, &eb) == nil {
			fetchErr.Code, fetchErr.Message = eb.codeAndMessage()
		}
		return fetchErr
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fail(resp.StatusCode, fmt.Errorf("unmarshal response: %w", err))
		}
	}
	return nil
}
