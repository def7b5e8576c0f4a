package journal

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository is the backend storage of the journal.
// Lists are ordered by id ascending.
type Repository interface {
	// ListStudents returns every student.
	ListStudents(ctx context.Context) ([]Student, error)

	// CreateStudent stores a new student.
	// Returns ErrStudentAlreadyExists if the name is taken.
	CreateStudent(ctx context.Context, name string) (Student, error)

	// DeleteStudent removes a student together with their grades.
	// Returns ErrStudentNotFound if there is no such student.
	DeleteStudent(ctx context.Context, id int64) error

	// ListSubjects returns every subject.
	ListSubjects(ctx context.Context) ([]Subject, error)

	// CreateSubject stores a new subject.
	// Returns ErrSubjectAlreadyExists if the name is taken.
	CreateSubject(ctx context.Context, name string) (Subject, error)

	// DeleteSubject removes a subject together with its grades.
	// Returns ErrSubjectNotFound if there is no such subject.
	DeleteSubject(ctx context.Context, id int64) error

	// ListGrades returns every grade.
	ListGrades(ctx context.Context) ([]Grade, error)

	// UpsertGrade creates the grade for (StudentID, SubjectID) or replaces its score.
	// Returns ErrStudentNotFound or ErrSubjectNotFound for unknown references.
	UpsertGrade(ctx context.Context, grade Grade) (Grade, error)
}
