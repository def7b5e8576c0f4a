package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
)

// ══════════════════════════════════════════════════════════════════════════════
// JOURNAL REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// JournalRepository implements journal.Repository for PostgreSQL.
// Cascading deletes are left to the grades foreign keys.
type JournalRepository struct {
	conn *Connection
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(conn *Connection) *JournalRepository {
	return &JournalRepository{conn: conn}
}

var _ journal.Repository = (*JournalRepository)(nil)

// ─────────────────────────────────────────────────────────────────────────────
// Students
// ─────────────────────────────────────────────────────────────────────────────

// ListStudents returns every student ordered by id.
func (r *JournalRepository) ListStudents(ctx context.Context) ([]journal.Student, error) {
	q, err := r.conn.querier()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, `SELECT id, name FROM students ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (journal.Student, error) {
		var s journal.Student
		err := row.Scan(&s.ID, &s.Name)
		return s, err
	})
}

// CreateStudent inserts a student and returns it with its generated id.
func (r *JournalRepository) CreateStudent(ctx context.Context, name string) (journal.Student, error) {
	q, err := r.conn.querier()
	if err != nil {
		return journal.Student{}, err
	}
	s := journal.Student{Name: name}
	err = q.QueryRow(ctx, `INSERT INTO students (name) VALUES ($1) RETURNING id`, name).Scan(&s.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return journal.Student{}, journal.ErrStudentAlreadyExists
		}
		return journal.Student{}, fmt.Errorf("failed to create student: %w", err)
	}
	return s, nil
}

// DeleteStudent removes a student; their grades go with them.
func (r *JournalRepository) DeleteStudent(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, `DELETE FROM students WHERE id = $1`, id, journal.ErrStudentNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// Subjects
// ─────────────────────────────────────────────────────────────────────────────

// ListSubjects returns every subject ordered by id.
func (r *JournalRepository) ListSubjects(ctx context.Context) ([]journal.Subject, error) {
	q, err := r.conn.querier()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, `SELECT id, name FROM subjects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (journal.Subject, error) {
		var s journal.Subject
		err := row.Scan(&s.ID, &s.Name)
		return s, err
	})
}

// CreateSubject inserts a subject and returns it with its generated id.
func (r *JournalRepository) CreateSubject(ctx context.Context, name string) (journal.Subject, error) {
	q, err := r.conn.querier()
	if err != nil {
		return journal.Subject{}, err
	}
	s := journal.Subject{Name: name}
	err = q.QueryRow(ctx, `INSERT INTO subjects (name) VALUES ($1) RETURNING id`, name).Scan(&s.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return journal.Subject{}, journal.ErrSubjectAlreadyExists
		}
		return journal.Subject{}, fmt.Errorf("failed to create subject: %w", err)
	}
	return s, nil
}

// DeleteSubject removes a subject; its grades go with it.
func (r *JournalRepository) DeleteSubject(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, `DELETE FROM subjects WHERE id = $1`, id, journal.ErrSubjectNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// Grades
// ─────────────────────────────────────────────────────────────────────────────

// ListGrades returns every grade ordered by id.
func (r *JournalRepository) ListGrades(ctx context.Context) ([]journal.Grade, error) {
	q, err := r.conn.querier()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, `SELECT id, student_id, subject_id, score FROM grades ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (journal.Grade, error) {
		var g journal.Grade
		err := row.Scan(&g.ID, &g.StudentID, &g.SubjectID, &g.Score)
		return g, err
	})
}

// UpsertGrade inserts the grade of a cell or overwrites its score in one
// statement. The row id is kept on update.
func (r *JournalRepository) UpsertGrade(ctx context.Context, g journal.Grade) (journal.Grade, error) {
	q, err := r.conn.querier()
	if err != nil {
		return journal.Grade{}, err
	}
	const query = `
		INSERT INTO grades (student_id, subject_id, score)
		VALUES ($1, $2, $3)
		ON CONFLICT (student_id, subject_id) DO UPDATE SET score = EXCLUDED.score
		RETURNING id
	`
	err = q.QueryRow(ctx, query, g.StudentID, g.SubjectID, g.Score).Scan(&g.ID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			switch ConstraintName(err) {
			case constraintGradeStudent:
				return journal.Grade{}, journal.ErrStudentNotFound
			case constraintGradeSubject:
				return journal.Grade{}, journal.ErrSubjectNotFound
			}
		}
		return journal.Grade{}, fmt.Errorf("failed to upsert grade: %w", err)
	}
	return g, nil
}

func (r *JournalRepository) deleteByID(ctx context.Context, query string, id int64, notFound error) error {
	q, err := r.conn.querier()
	if err != nil {
		return err
	}
	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}
