package gradebook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
	"github.com/alem-hub/grade-journal/pkg/logger"
)

func newTestController(t *testing.T) (*EditController, *Model, *fakeGateway) {
	t.Helper()
	gw := seededGateway()
	m := newTestModel(gw)
	require.NoError(t, m.Refresh(context.Background()))
	return NewEditController(gw, m, logger.Nop()), m, gw
}

func TestEditCellOutOfRangeNeverWrites(t *testing.T) {
	c, m, gw := newTestController(t)
	before := m.Snapshot()

	for _, raw := range []string{"150", "-1", "abc", ""} {
		err := c.EditCell(context.Background(), journal.CellRef{StudentID: 1, SubjectID: 1}, raw)
		assert.ErrorIs(t, err, journal.ErrInvalidScore, raw)
	}

	assert.Zero(t, gw.count("upsert_grade"))
	assert.Equal(t, 1, gw.count("list_grades"))
	assert.Same(t, before, m.Snapshot())
	assert.Empty(t, m.Errors().Message())
}

func TestEditCellWritesOnceThenRefreshesOnce(t *testing.T) {
	c, m, gw := newTestController(t)
	ref := journal.CellRef{StudentID: 1, SubjectID: 1}

	require.NoError(t, c.EditCell(context.Background(), ref, "95"))

	assert.Equal(t, 1, gw.count("upsert_grade"))
	assert.Equal(t, 2, gw.count("list_grades"))
	assert.Equal(t, []string{"refresh", "upsert_grade", "refresh"}, gw.writeEvents())

	g, ok := m.Snapshot().Grade(ref)
	require.True(t, ok)
	assert.Equal(t, 95, g.Score)
}

func TestEditCellCreatesMissingGrade(t *testing.T) {
	c, m, gw := newTestController(t)
	gw.seed(
		[]journal.Student{{ID: 1, Name: "Ali"}, {ID: 2, Name: "Vali"}},
		[]journal.Subject{{ID: 1, Name: "Math"}},
		[]journal.Grade{{StudentID: 1, SubjectID: 1, Score: 80}},
	)

	require.NoError(t, c.EditCell(context.Background(), journal.CellRef{StudentID: 2, SubjectID: 1}, "40"))
	assert.Len(t, m.Snapshot().Grades, 2)
}

func TestEditCellWriteFailureSkipsRefresh(t *testing.T) {
	c, m, gw := newTestController(t)
	gw.failOn("upsert_grade", &stubFetchError{msg: "Internal Server Error"})

	err := c.EditCell(context.Background(), journal.CellRef{StudentID: 1, SubjectID: 1}, "10")
	require.Error(t, err)

	assert.Equal(t, 1, gw.count("list_grades"))
	assert.Equal(t, "Baho yangilashda xatolik: Internal Server Error", m.Errors().Message())
	assert.Equal(t, 80, m.Snapshot().Grades[0].Score)
}

func TestAddStudentAndSubject(t *testing.T) {
	c, m, gw := newTestController(t)
	ctx := context.Background()

	assert.ErrorIs(t, c.AddStudent(ctx, "   "), ErrIgnored)
	assert.ErrorIs(t, c.AddSubject(ctx, ""), ErrIgnored)
	assert.Zero(t, gw.count("create_student"))
	assert.Zero(t, gw.count("create_subject"))

	require.NoError(t, c.AddStudent(ctx, "  Vali "))
	require.NoError(t, c.AddSubject(ctx, "Physics"))

	snap := m.Snapshot()
	require.Len(t, snap.Students, 2)
	assert.Equal(t, "Vali", snap.Students[1].Name)
	require.Len(t, snap.Subjects, 2)
	assert.Equal(t, "Physics", snap.Subjects[1].Name)
	assert.Equal(t, 3, gw.count("list_students"))
}

func TestAddStudentFailureReportsDistinctMessage(t *testing.T) {
	c, m, gw := newTestController(t)
	gw.failOn("create_student", &stubFetchError{msg: "student already exists"})

	require.Error(t, c.AddStudent(context.Background(), "Ali"))
	assert.Equal(t, "Talaba qo‘shishda xatolik: student already exists", m.Errors().Message())
	assert.Equal(t, 1, gw.count("list_students"))
}

func TestDeleteActions(t *testing.T) {
	c, m, gw := newTestController(t)
	ctx := context.Background()

	require.NoError(t, c.DeleteSubject(ctx, 1))
	assert.Empty(t, m.Snapshot().Subjects)

	gw.failOn("delete_student", &stubFetchError{msg: "Student not found"})
	require.Error(t, c.DeleteStudent(ctx, 1))
	assert.Equal(t, "Talabani o‘chirishda xatolik: Student not found", m.Errors().Message())
}
