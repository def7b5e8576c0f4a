package gradebook

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
	"github.com/alem-hub/grade-journal/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT
// ══════════════════════════════════════════════════════════════════════════════

// Snapshot is one complete, immutable read of the backend. The three
// collections always come from the same refresh cycle.
type Snapshot struct {
	Students  []journal.Student
	Subjects  []journal.Subject
	Grades    []journal.Grade
	FetchedAt time.Time

	// Version is 0 for the empty initial snapshot and grows by one per
	// stored refresh, in store order.
	Version uint64
}

// Loaded reports whether the snapshot came from the backend.
func (s *Snapshot) Loaded() bool {
	return s.Version > 0
}

// Student looks a student up by id.
func (s *Snapshot) Student(id int64) (journal.Student, bool) {
	for _, st := range s.Students {
		if st.ID == id {
			return st, true
		}
	}
	return journal.Student{}, false
}

// Subject looks a subject up by id.
func (s *Snapshot) Subject(id int64) (journal.Subject, bool) {
	for _, sub := range s.Subjects {
		if sub.ID == id {
			return sub, true
		}
	}
	return journal.Subject{}, false
}

// Grade returns the first grade recorded for ref.
func (s *Snapshot) Grade(ref journal.CellRef) (journal.Grade, bool) {
	for _, g := range s.Grades {
		if g.Ref() == ref {
			return g, true
		}
	}
	return journal.Grade{}, false
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR SURFACE
// ══════════════════════════════════════════════════════════════════════════════

// ErrorSurface is the single user-visible error message.
type ErrorSurface struct {
	mu         sync.RWMutex
	message    string
	reportedAt time.Time
}

// Report replaces the current message.
func (e *ErrorSurface) Report(message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.message = message
	e.reportedAt = time.Now()
}

// Clear removes the current message.
func (e *ErrorSurface) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.message = ""
	e.reportedAt = time.Time{}
}

// ClearReportedBefore removes the current message only if it was reported
// before t, so a refresh does not wipe an error raised while it ran.
func (e *ErrorSurface) ClearReportedBefore(t time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.reportedAt.Before(t) {
		e.message = ""
		e.reportedAt = time.Time{}
	}
}

// Message returns the current message, empty when there is none.
func (e *ErrorSurface) Message() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.message
}

// ReportedAt returns when the current message was set.
func (e *ErrorSurface) ReportedAt() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.reportedAt
}

// ══════════════════════════════════════════════════════════════════════════════
// MODEL
// ══════════════════════════════════════════════════════════════════════════════

// Model owns the application state of one journal client: the current
// snapshot and the error surface. It replaces module-level globals.
type Model struct {
	reader   Reader
	messages Messages
	logger   *logger.Logger
	recorder RefreshRecorder
	now      func() time.Time

	snapshot atomic.Pointer[Snapshot]
	errors   ErrorSurface
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithMessages sets the localized messages.
func WithMessages(m Messages) ModelOption {
	return func(model *Model) { model.messages = m }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) ModelOption {
	return func(model *Model) {
		if l != nil {
			model.logger = l
		}
	}
}

// WithRefreshRecorder sets the refresh metrics sink.
func WithRefreshRecorder(r RefreshRecorder) ModelOption {
	return func(model *Model) { model.recorder = r }
}

// NewModel creates a model holding an empty snapshot.
func NewModel(reader Reader, opts ...ModelOption) *Model {
	m := &Model{
		reader:   reader,
		messages: MessagesFor(DefaultLocale),
		logger:   logger.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logger.Component("gradebook.model"))
	m.snapshot.Store(&Snapshot{
		Students: []journal.Student{},
		Subjects: []journal.Subject{},
		Grades:   []journal.Grade{},
	})
	return m
}

// Snapshot returns the current snapshot. Callers must not modify it.
func (m *Model) Snapshot() *Snapshot {
	return m.snapshot.Load()
}

// Errors returns the error surface.
func (m *Model) Errors() *ErrorSurface {
	return &m.errors
}

// Messages returns the localized messages in use.
func (m *Model) Messages() Messages {
	return m.messages
}

// Refresh reads students, subjects and grades concurrently. Only when all
// three succeed is the snapshot replaced, in one atomic store; the first
// failure cancels the other reads, keeps the previous snapshot and reports
// the load message. Overlapping refreshes are allowed; the last one to
// complete wins and gets the highest version. A success clears only
// messages reported before the refresh started.
func (m *Model) Refresh(ctx context.Context) error {
	start := time.Now()

	var (
		students []journal.Student
		subjects []journal.Subject
		grades   []journal.Grade
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		students, err = m.reader.ListStudents(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		subjects, err = m.reader.ListSubjects(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		grades, err = m.reader.ListGrades(gctx)
		return err
	})
	err := g.Wait()

	if m.recorder != nil {
		m.recorder.ObserveRefresh(time.Since(start), err)
	}

	if err != nil {
		m.logger.Warn("refresh failed", logger.Err(err), logger.Latency(time.Since(start)))
		m.errors.Report(m.messages.LoadFailed)
		return fmt.Errorf("refresh: %w", err)
	}

	next := &Snapshot{
		Students:  orEmpty(students),
		Subjects:  orEmpty(subjects),
		Grades:    orEmpty(grades),
		FetchedAt: m.now(),
	}
	for {
		prev := m.snapshot.Load()
		next.Version = prev.Version + 1
		if m.snapshot.CompareAndSwap(prev, next) {
			break
		}
	}
	m.errors.ClearReportedBefore(start)

	m.logger.Debug("refresh completed",
		logger.Int("students", len(next.Students)),
		logger.Int("subjects", len(next.Subjects)),
		logger.Int("grades", len(next.Grades)),
		logger.Latency(time.Since(start)),
	)
	return nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
