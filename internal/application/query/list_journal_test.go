package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
	"github.com/alem-hub/grade-journal/internal/infrastructure/persistence/memory"
)

func TestListGradesFilters(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewJournalRepository()
	ali, _ := repo.CreateStudent(ctx, "Ali")
	vali, _ := repo.CreateStudent(ctx, "Vali")
	math, _ := repo.CreateSubject(ctx, "Math")
	physics, _ := repo.CreateSubject(ctx, "Physics")
	for _, st := range []journal.Student{ali, vali} {
		for _, sub := range []journal.Subject{math, physics} {
			_, err := repo.UpsertGrade(ctx, journal.Grade{StudentID: st.ID, SubjectID: sub.ID, Score: 60})
			require.NoError(t, err)
		}
	}
	h := NewListJournalHandler(repo)

	all, err := h.Grades(ctx, ListGradesQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	byStudent, err := h.Grades(ctx, ListGradesQuery{StudentID: vali.ID})
	require.NoError(t, err)
	assert.Len(t, byStudent, 2)

	one, err := h.Grades(ctx, ListGradesQuery{StudentID: ali.ID, SubjectID: physics.ID})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, journal.CellRef{StudentID: ali.ID, SubjectID: physics.ID}, one[0].Ref())

	_, err = h.Grades(ctx, ListGradesQuery{StudentID: -1})
	assert.ErrorIs(t, err, journal.ErrInvalidID)

	students, err := h.Students(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 2)
	subjects, err := h.Subjects(ctx)
	require.NoError(t, err)
	assert.Len(t, subjects, 2)
}
