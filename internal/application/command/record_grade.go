package command

import (
	"context"
	"fmt"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
	"github.com/alem-hub/grade-journal/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD GRADE COMMAND
// Creates the grade of a (student, subject) pair or overwrites its score.
// ══════════════════════════════════════════════════════════════════════════════

// RecordGradeCommand contains the grade to store.
type RecordGradeCommand struct {
	StudentID int64
	SubjectID int64
	Score     int
}

// Validate validates the command.
func (c RecordGradeCommand) Validate() error {
	if !(journal.CellRef{StudentID: c.StudentID, SubjectID: c.SubjectID}).Valid() {
		return journal.ErrInvalidID
	}
	if !journal.ValidScore(c.Score) {
		return fmt.Errorf("%w: got %d", journal.ErrInvalidScore, c.Score)
	}
	return nil
}

// RecordGradeResult is the stored grade.
type RecordGradeResult struct {
	Grade journal.Grade
}

// RecordGradeHandler handles RecordGradeCommand.
type RecordGradeHandler struct {
	repo   journal.Repository
	logger *logger.Logger
}

// NewRecordGradeHandler creates a new RecordGradeHandler.
func NewRecordGradeHandler(repo journal.Repository, log *logger.Logger) *RecordGradeHandler {
	return &RecordGradeHandler{repo: repo, logger: orDefault(log)}
}

// Handle executes the command.
func (h *RecordGradeHandler) Handle(ctx context.Context, cmd RecordGradeCommand) (*RecordGradeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("record_grade: %w", err)
	}

	g, err := h.repo.UpsertGrade(ctx, journal.Grade{
		StudentID: cmd.StudentID,
		SubjectID: cmd.SubjectID,
		Score:     cmd.Score,
	})
	if err != nil {
		return nil, fmt.Errorf("record_grade: %w", err)
	}

	h.logger.Debug("grade recorded",
		logger.StudentID(g.StudentID),
		logger.SubjectID(g.SubjectID),
		logger.Score(g.Score),
	)
	return &RecordGradeResult{Grade: g}, nil
}
