// Package command contains write operations of the journal backend (CQRS - Commands).
package command

import (
	"context"
	"fmt"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
	"github.com/alem-hub/grade-journal/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE STUDENT / CREATE SUBJECT
// Both rosters share the same rules: a trimmed, non-empty, unique name.
// ══════════════════════════════════════════════════════════════════════════════

// CreateStudentCommand adds a student to the journal.
type CreateStudentCommand struct {
	Name string
}

// Validate normalizes and checks the name.
func (c *CreateStudentCommand) Validate() error {
	c.Name = journal.NormalizeName(c.Name)
	return journal.ValidateName(c.Name)
}

// CreateSubjectCommand adds a subject to the journal.
type CreateSubjectCommand struct {
	Name string
}

// Validate normalizes and checks the name.
func (c *CreateSubjectCommand) Validate() error {
	c.Name = journal.NormalizeName(c.Name)
	return journal.ValidateName(c.Name)
}

// CreateStudentHandler handles CreateStudentCommand.
type CreateStudentHandler struct {
	repo   journal.Repository
	logger *logger.Logger
}

// NewCreateStudentHandler creates a new CreateStudentHandler.
func NewCreateStudentHandler(repo journal.Repository, log *logger.Logger) *CreateStudentHandler {
	return &CreateStudentHandler{repo: repo, logger: orDefault(log)}
}

// Handle creates the student.
func (h *CreateStudentHandler) Handle(ctx context.Context, cmd CreateStudentCommand) (journal.Student, error) {
	if err := cmd.Validate(); err != nil {
		return journal.Student{}, fmt.Errorf("create_student: %w", err)
	}
	s, err := h.repo.CreateStudent(ctx, cmd.Name)
	if err != nil {
		return journal.Student{}, fmt.Errorf("create_student: %w", err)
	}
	h.logger.Info("student created", logger.StudentID(s.ID), logger.String("name", s.Name))
	return s, nil
}

// CreateSubjectHandler handles CreateSubjectCommand.
type CreateSubjectHandler struct {
	repo   journal.Repository
	logger *logger.Logger
}

// NewCreateSubjectHandler creates a new CreateSubjectHandler.
func NewCreateSubjectHandler(repo journal.Repository, log *logger.Logger) *CreateSubjectHandler {
	return &CreateSubjectHandler{repo: repo, logger: orDefault(log)}
}

// Handle creates the subject.
func (h *CreateSubjectHandler) Handle(ctx context.Context, cmd CreateSubjectCommand) (journal.Subject, error) {
	if err := cmd.Validate(); err != nil {
		return journal.Subject{}, fmt.Errorf("create_subject: %w", err)
	}
	s, err := h.repo.CreateSubject(ctx, cmd.Name)
	if err != nil {
		return journal.Subject{}, fmt.Errorf("create_subject: %w", err)
	}
	h.logger.Info("subject created", logger.SubjectID(s.ID), logger.String("name", s.Name))
	return s, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DELETE STUDENT / DELETE SUBJECT
// Deleting either side of a grade deletes the grade with it.
// ══════════════════════════════════════════════════════════════════════════════

// DeleteStudentCommand removes a student.
type DeleteStudentCommand struct {
	StudentID int64
}

// Validate validates the command.
func (c DeleteStudentCommand) Validate() error {
	if c.StudentID <= 0 {
		return journal.ErrInvalidID
	}
	return nil
}

// DeleteSubjectCommand removes a subject.
type DeleteSubjectCommand struct {
	SubjectID int64
}

// Validate validates the command.
func (c DeleteSubjectCommand) Validate() error {
	if c.SubjectID <= 0 {
		return journal.ErrInvalidID
	}
	return nil
}

// DeleteHandler handles both delete commands.
type DeleteHandler struct {
	repo   journal.Repository
	logger *logger.Logger
}

// NewDeleteHandler creates a new DeleteHandler.
func NewDeleteHandler(repo journal.Repository, log *logger.Logger) *DeleteHandler {
	return &DeleteHandler{repo: repo, logger: orDefault(log)}
}

// HandleStudent deletes a student and their grades.
func (h *DeleteHandler) HandleStudent(ctx context.Context, cmd DeleteStudentCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("delete_student: %w", err)
	}
	if err := h.repo.DeleteStudent(ctx, cmd.StudentID); err != nil {
		return fmt.Errorf("delete_student: %w", err)
	}
	h.logger.Info("student deleted", logger.StudentID(cmd.StudentID))
	return nil
}

// HandleSubject deletes a subject and its grades.
func (h *DeleteHandler) HandleSubject(ctx context.Context, cmd DeleteSubjectCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("delete_subject: %w", err)
	}
	if err := h.repo.DeleteSubject(ctx, cmd.SubjectID); err != nil {
		return fmt.Errorf("delete_subject: %w", err)
	}
	h.logger.Info("subject deleted", logger.SubjectID(cmd.SubjectID))
	return nil
}

func orDefault(l *logger.Logger) *logger.Logger {
	if l == nil {
		return logger.Default()
	}
	return l
}
