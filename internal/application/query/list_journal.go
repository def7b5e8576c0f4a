// Package query contains read operations of the journal backend (CQRS - Queries).
package query

import (
	"context"
	"fmt"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST QUERIES
// ══════════════════════════════════════════════════════════════════════════════

// ListGradesQuery optionally narrows grades to one student or one subject.
// Zero means no constraint.
type ListGradesQuery struct {
	StudentID int64
	SubjectID int64
}

// Validate validates the query.
func (q ListGradesQuery) Validate() error {
	if q.StudentID < 0 || q.SubjectID < 0 {
		return journal.ErrInvalidID
	}
	return nil
}

// ListJournalHandler serves the three collection reads.
type ListJournalHandler struct {
	repo journal.Repository
}

// NewListJournalHandler creates a new ListJournalHandler.
func NewListJournalHandler(repo journal.Repository) *ListJournalHandler {
	return &ListJournalHandler{repo: repo}
}

// Students returns every student.
func (h *ListJournalHandler) Students(ctx context.Context) ([]journal.Student, error) {
	students, err := h.repo.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list_students: %w", err)
	}
	return students, nil
}

// Subjects returns every subject.
func (h *ListJournalHandler) Subjects(ctx context.Context) ([]journal.Subject, error) {
	subjects, err := h.repo.ListSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list_subjects: %w", err)
	}
	return subjects, nil
}

// Grades returns the grades matching q.
func (h *ListJournalHandler) Grades(ctx context.Context, q ListGradesQuery) ([]journal.Grade, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("list_grades: %w", err)
	}
	grades, err := h.repo.ListGrades(ctx)
	if err != nil {
		return nil, fmt.Errorf("list_grades: %w", err)
	}
	if q.StudentID == 0 && q.SubjectID == 0 {
		return grades, nil
	}

	out := make([]journal.Grade, 0, len(grades))
	for _, g := range grades {
		if q.StudentID != 0 && g.StudentID != q.StudentID {
			continue
		}
		if q.SubjectID != 0 && g.SubjectID != q.SubjectID {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}
