// Package memory provides an in-process journal.Repository, used as the
// default backend driver and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
)

// JournalRepository keeps the journal in maps guarded by one mutex.
type JournalRepository struct {
	mu sync.RWMutex

	students map[int64]journal.Student
	subjects map[int64]journal.Subject
	grades   map[journal.CellRef]journal.Grade

	nextStudentID int64
	nextSubjectID int64
	nextGradeID   int64
}

// NewJournalRepository creates an empty repository.
func NewJournalRepository() *JournalRepository {
	return &JournalRepository{
		students: make(map[int64]journal.Student),
		subjects: make(map[int64]journal.Subject),
		grades:   make(map[journal.CellRef]journal.Grade),
	}
}

var _ journal.Repository = (*JournalRepository)(nil)

// ─────────────────────────────────────────────────────────────────────────────
// Students
// ─────────────────────────────────────────────────────────────────────────────

// ListStudents returns every student ordered by id.
func (r *JournalRepository) ListStudents(ctx context.Context) ([]journal.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]journal.Student, 0, len(r.students))
	for _, s := range r.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateStudent stores a student with a fresh id.
func (r *JournalRepository) CreateStudent(ctx context.Context, name string) (journal.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.students {
		if s.Name == name {
			return journal.Student{}, journal.ErrStudentAlreadyExists
		}
	}
	r.nextStudentID++
	s := journal.Student{ID: r.nextStudentID, Name: name}
	r.students[s.ID] = s
	return s, nil
}

// DeleteStudent removes a student and their grades.
func (r *JournalRepository) DeleteStudent(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.students[id]; !ok {
		return journal.ErrStudentNotFound
	}
	delete(r.students, id)
	for ref := range r.grades {
		if ref.StudentID == id {
			delete(r.grades, ref)
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Subjects
// ─────────────────────────────────────────────────────────────────────────────

// ListSubjects returns every subject ordered by id.
func (r *JournalRepository) ListSubjects(ctx context.Context) ([]journal.Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]journal.Subject, 0, len(r.subjects))
	for _, s := range r.subjects {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateSubject stores a subject with a fresh id.
func (r *JournalRepository) CreateSubject(ctx context.Context, name string) (journal.Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.subjects {
		if s.Name == name {
			return journal.Subject{}, journal.ErrSubjectAlreadyExists
		}
	}
	r.nextSubjectID++
	s := journal.Subject{ID: r.nextSubjectID, Name: name}
	r.subjects[s.ID] = s
	return s, nil
}

// DeleteSubject removes a subject and its grades.
func (r *JournalRepository) DeleteSubject(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subjects[id]; !ok {
		return journal.ErrSubjectNotFound
	}
	delete(r.subjects, id)
	for ref := range r.grades {
		if ref.SubjectID == id {
			delete(r.grades, ref)
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Grades
// ─────────────────────────────────────────────────────────────────────────────

// ListGrades returns every grade ordered by id.
func (r *JournalRepository) ListGrades(ctx context.Context) ([]journal.Grade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]journal.Grade, 0, len(r.grades))
	for _, g := range r.grades {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpsertGrade creates or replaces the grade of a (student, subject) pair.
// The grade keeps its id across updates.
func (r *JournalRepository) UpsertGrade(ctx context.Context, g journal.Grade) (journal.Grade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.students[g.StudentID]; !ok {
		return journal.Grade{}, journal.ErrStudentNotFound
	}
	if _, ok := r.subjects[g.SubjectID]; !ok {
		return journal.Grade{}, journal.ErrSubjectNotFound
	}

	ref := g.Ref()
	if existing, ok := r.grades[ref]; ok {
		existing.Score = g.Score
		r.grades[ref] = existing
		return existing, nil
	}
	r.nextGradeID++
	g.ID = r.nextGradeID
	r.grades[ref] = g
	return g, nil
}
