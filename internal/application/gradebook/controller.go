package gradebook

import (
	"context"
	"errors"
	"fmt"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
	"github.com/alem-hub/grade-journal/pkg/logger"
)

// ErrIgnored is returned by the add actions when the name is blank.
var ErrIgnored = errors.New("gradebook: blank input ignored")

// EditController turns user actions into write-through calls. Each
// successful write is followed by exactly one full refresh of the model;
// a failed write reports its localized message and skips the refresh.
type EditController struct {
	writer Writer
	model  *Model
	logger *logger.Logger
}

// NewEditController creates an edit controller bound to model.
func NewEditController(writer Writer, model *Model, log *logger.Logger) *EditController {
	if log == nil {
		log = logger.Default()
	}
	return &EditController{
		writer: writer,
		model:  model,
		logger: log.With(logger.Component("gradebook.edit")),
	}
}

// EditCell validates raw and, if it is a score in [0,100], upserts it and
// refreshes. Invalid input is logged and dropped without touching the
// gateway; the returned error wraps journal.ErrInvalidScore.
func (c *EditController) EditCell(ctx context.Context, ref journal.CellRef, raw string) error {
	score, err := journal.ParseScore(raw)
	if err != nil {
		c.logger.Warn("score rejected",
			logger.Cell(ref.String()),
			logger.String("value", raw),
			logger.Err(err),
		)
		return err
	}

	if err := c.writer.UpsertGrade(ctx, ref.StudentID, ref.SubjectID, score); err != nil {
		return c.writeFailed(c.model.messages.GradeUpdateFailed, "upsert_grade", err)
	}

	c.logger.Info("grade saved",
		logger.StudentID(ref.StudentID),
		logger.SubjectID(ref.SubjectID),
		logger.Score(score),
	)
	return c.model.Refresh(ctx)
}

// AddStudent creates a student. A blank name is ignored.
func (c *EditController) AddStudent(ctx context.Context, name string) error {
	name = journal.NormalizeName(name)
	if name == "" {
		return ErrIgnored
	}
	if _, err := c.writer.CreateStudent(ctx, name); err != nil {
		return c.writeFailed(c.model.messages.AddStudentFailed, "create_student", err)
	}
	return c.model.Refresh(ctx)
}

// AddSubject creates a subject. A blank name is ignored.
func (c *EditController) AddSubject(ctx context.Context, name string) error {
	name = journal.NormalizeName(name)
	if name == "" {
		return ErrIgnored
	}
	if _, err := c.writer.CreateSubject(ctx, name); err != nil {
		return c.writeFailed(c.model.messages.AddSubjectFailed, "create_subject", err)
	}
	return c.model.Refresh(ctx)
}

// DeleteStudent removes a student and their grades.
func (c *EditController) DeleteStudent(ctx context.Context, id int64) error {
	if err := c.writer.DeleteStudent(ctx, id); err != nil {
		return c.writeFailed(c.model.messages.DeleteStudentFailed, "delete_student", err)
	}
	return c.model.Refresh(ctx)
}

// DeleteSubject removes a subject and its grades.
func (c *EditController) DeleteSubject(ctx context.Context, id int64) error {
	if err := c.writer.DeleteSubject(ctx, id); err != nil {
		return c.writeFailed(c.model.messages.DeleteSubjectFailed, "delete_subject", err)
	}
	return c.model.Refresh(ctx)
}

func (c *EditController) writeFailed(prefix, op string, err error) error {
	c.logger.Warn("write failed", logger.Operation(op), logger.Err(err))
	c.model.errors.Report(prefix + reason(err))
	return fmt.Errorf("%s: %w", op, err)
}
