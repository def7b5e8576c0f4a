package gradebook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
	"github.com/alem-hub/grade-journal/pkg/logger"
)

func TestDispatcherRoutesKnownCells(t *testing.T) {
	gw := seededGateway()
	m := newTestModel(gw)
	d := NewDispatcher(m, NewEditController(gw, m, logger.Nop()))
	ctx := context.Background()

	assert.Zero(t, d.Len())
	assert.ErrorIs(t, d.Dispatch(ctx, journal.CellRef{StudentID: 1, SubjectID: 1}, "70"), ErrUnknownCell)

	require.NoError(t, m.Refresh(ctx))
	assert.Equal(t, 1, d.Len())
	assert.True(t, d.Bound(journal.CellRef{StudentID: 1, SubjectID: 1}))

	require.NoError(t, d.Dispatch(ctx, journal.CellRef{StudentID: 1, SubjectID: 1}, "70"))
	assert.Equal(t, 1, gw.count("upsert_grade"))

	assert.ErrorIs(t, d.Dispatch(ctx, journal.CellRef{StudentID: 9, SubjectID: 1}, "70"), ErrUnknownCell)
	assert.Equal(t, 1, gw.count("upsert_grade"))
}

func TestDispatcherFollowsSnapshotChanges(t *testing.T) {
	gw := seededGateway()
	m := newTestModel(gw)
	c := NewEditController(gw, m, logger.Nop())
	d := NewDispatcher(m, c)
	ctx := context.Background()
	require.NoError(t, m.Refresh(ctx))

	require.NoError(t, c.AddSubject(ctx, "Physics"))
	assert.Equal(t, 2, d.Len())

	physics := m.Snapshot().Subjects[1].ID
	assert.True(t, d.Bound(journal.CellRef{StudentID: 1, SubjectID: physics}))
}
