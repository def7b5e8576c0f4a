package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
)

func TestStudentsAndSubjects(t *testing.T) {
	ctx := context.Background()
	repo := NewJournalRepository()

	ali, err := repo.CreateStudent(ctx, "Ali")
	require.NoError(t, err)
	vali, err := repo.CreateStudent(ctx, "Vali")
	require.NoError(t, err)
	assert.Less(t, ali.ID, vali.ID)

	_, err = repo.CreateStudent(ctx, "Ali")
	assert.ErrorIs(t, err, journal.ErrStudentAlreadyExists)
	assert.True(t, journal.IsAlreadyExists(err))

	students, err := repo.ListStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []journal.Student{ali, vali}, students)

	math, err := repo.CreateSubject(ctx, "Math")
	require.NoError(t, err)
	_, err = repo.CreateSubject(ctx, "Math")
	assert.ErrorIs(t, err, journal.ErrSubjectAlreadyExists)

	subjects, err := repo.ListSubjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []journal.Subject{math}, subjects)
}

func TestUpsertGrade(t *testing.T) {
	ctx := context.Background()
	repo := NewJournalRepository()
	ali, _ := repo.CreateStudent(ctx, "Ali")
	math, _ := repo.CreateSubject(ctx, "Math")

	g, err := repo.UpsertGrade(ctx, journal.Grade{StudentID: ali.ID, SubjectID: math.ID, Score: 80})
	require.NoError(t, err)
	assert.NotZero(t, g.ID)

	again, err := repo.UpsertGrade(ctx, journal.Grade{StudentID: ali.ID, SubjectID: math.ID, Score: 95})
	require.NoError(t, err)
	assert.Equal(t, g.ID, again.ID)
	assert.Equal(t, 95, again.Score)

	grades, err := repo.ListGrades(ctx)
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, 95, grades[0].Score)

	_, err = repo.UpsertGrade(ctx, journal.Grade{StudentID: 99, SubjectID: math.ID, Score: 1})
	assert.ErrorIs(t, err, journal.ErrStudentNotFound)
	_, err = repo.UpsertGrade(ctx, journal.Grade{StudentID: ali.ID, SubjectID: 99, Score: 1})
	assert.ErrorIs(t, err, journal.ErrSubjectNotFound)
}

func TestDeleteCascadesGrades(t *testing.T) {
	ctx := context.Background()
	repo := NewJournalRepository()
	ali, _ := repo.CreateStudent(ctx, "Ali")
	vali, _ := repo.CreateStudent(ctx, "Vali")
	math, _ := repo.CreateSubject(ctx, "Math")
	physics, _ := repo.CreateSubject(ctx, "Physics")

	for _, st := range []journal.Student{ali, vali} {
		for _, sub := range []journal.Subject{math, physics} {
			_, err := repo.UpsertGrade(ctx, journal.Grade{StudentID: st.ID, SubjectID: sub.ID, Score: 50})
			require.NoError(t, err)
		}
	}

	require.NoError(t, repo.DeleteStudent(ctx, ali.ID))
	grades, _ := repo.ListGrades(ctx)
	assert.Len(t, grades, 2)

	require.NoError(t, repo.DeleteSubject(ctx, math.ID))
	grades, _ = repo.ListGrades(ctx)
	require.Len(t, grades, 1)
	assert.Equal(t, journal.CellRef{StudentID: vali.ID, SubjectID: physics.ID}, grades[0].Ref())

	assert.ErrorIs(t, repo.DeleteStudent(ctx, ali.ID), journal.ErrStudentNotFound)
	assert.ErrorIs(t, repo.DeleteSubject(ctx, math.ID), journal.ErrSubjectNotFound)
}
