package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
)

func openTestRepo(t *testing.T) *JournalRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	repo, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestCreateAndListOrderedByID(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	vali, err := repo.CreateStudent(ctx, "Vali")
	require.NoError(t, err)
	ali, err := repo.CreateStudent(ctx, "Ali")
	require.NoError(t, err)
	assert.Less(t, vali.ID, ali.ID)

	students, err := repo.ListStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []journal.Student{vali, ali}, students)

	_, err = repo.CreateStudent(ctx, "Ali")
	assert.ErrorIs(t, err, journal.ErrStudentAlreadyExists)

	math, err := repo.CreateSubject(ctx, "Math")
	require.NoError(t, err)
	_, err = repo.CreateSubject(ctx, "Math")
	assert.ErrorIs(t, err, journal.ErrSubjectAlreadyExists)

	subjects, err := repo.ListSubjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []journal.Subject{math}, subjects)

	require.NoError(t, repo.Ping(ctx))
}

func TestUpsertGradeKeepsOneRowPerCell(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	ali, _ := repo.CreateStudent(ctx, "Ali")
	math, _ := repo.CreateSubject(ctx, "Math")

	first, err := repo.UpsertGrade(ctx, journal.Grade{StudentID: ali.ID, SubjectID: math.ID, Score: 80})
	require.NoError(t, err)
	second, err := repo.UpsertGrade(ctx, journal.Grade{StudentID: ali.ID, SubjectID: math.ID, Score: 45})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	grades, err := repo.ListGrades(ctx)
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, 45, grades[0].Score)

	_, err = repo.UpsertGrade(ctx, journal.Grade{StudentID: 999, SubjectID: math.ID, Score: 1})
	assert.ErrorIs(t, err, journal.ErrStudentNotFound)
	_, err = repo.UpsertGrade(ctx, journal.Grade{StudentID: ali.ID, SubjectID: 999, Score: 1})
	assert.ErrorIs(t, err, journal.ErrSubjectNotFound)
}

func TestDeleteCascadesToGrades(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
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
