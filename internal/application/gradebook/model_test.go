package gradebook

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
	"github.com/alem-hub/grade-journal/pkg/logger"
)

type refreshObservation struct {
	failed bool
}

type fakeRefreshRecorder struct {
	mu  sync.Mutex
	obs []refreshObservation
}

func (r *fakeRefreshRecorder) ObserveRefresh(_ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, refreshObservation{failed: err != nil})
}

func seededGateway() *fakeGateway {
	gw := newFakeGateway()
	gw.seed(
		[]journal.Student{{ID: 1, Name: "Ali"}},
		[]journal.Subject{{ID: 1, Name: "Math"}},
		[]journal.Grade{{StudentID: 1, SubjectID: 1, Score: 80}},
	)
	return gw
}

func newTestModel(gw Reader, opts ...ModelOption) *Model {
	return NewModel(gw, append([]ModelOption{WithLogger(logger.Nop())}, opts...)...)
}

func TestNewModelStartsEmpty(t *testing.T) {
	m := newTestModel(newFakeGateway())

	snap := m.Snapshot()
	require.NotNil(t, snap)
	assert.False(t, snap.Loaded())
	assert.Empty(t, snap.Students)
	assert.Empty(t, m.Errors().Message())
}

func TestRefreshReplacesAllCollections(t *testing.T) {
	gw := seededGateway()
	rec := &fakeRefreshRecorder{}
	m := newTestModel(gw, WithRefreshRecorder(rec))

	require.NoError(t, m.Refresh(context.Background()))

	snap := m.Snapshot()
	assert.True(t, snap.Loaded())
	assert.Equal(t, uint64(1), snap.Version)
	assert.Equal(t, []journal.Student{{ID: 1, Name: "Ali"}}, snap.Students)
	assert.Equal(t, []journal.Subject{{ID: 1, Name: "Math"}}, snap.Subjects)
	assert.Len(t, snap.Grades, 1)
	assert.Equal(t, 1, gw.count("list_students"))
	assert.Equal(t, 1, gw.count("list_subjects"))
	assert.Equal(t, 1, gw.count("list_grades"))
	assert.Equal(t, []refreshObservation{{failed: false}}, rec.obs)

	g, ok := snap.Grade(journal.CellRef{StudentID: 1, SubjectID: 1})
	assert.True(t, ok)
	assert.Equal(t, 80, g.Score)
}

func TestFailedRefreshKeepsPreviousSnapshot(t *testing.T) {
	gw := seededGateway()
	m := newTestModel(gw, WithMessages(MessagesFor("en")))
	require.NoError(t, m.Refresh(context.Background()))
	before := m.Snapshot()

	gw.seed([]journal.Student{{ID: 2, Name: "Vali"}}, nil, nil)
	gw.failOn("list_grades", &stubFetchError{msg: "status 500"})

	err := m.Refresh(context.Background())
	require.Error(t, err)

	assert.Same(t, before, m.Snapshot())
	assert.Equal(t, "Could not connect or load data", m.Errors().Message())
	assert.NotEmpty(t, m.Errors().Message())
}

func TestSuccessfulRefreshClearsError(t *testing.T) {
	gw := seededGateway()
	m := newTestModel(gw)
	gw.failOn("list_students", errors.New("offline"))
	require.Error(t, m.Refresh(context.Background()))
	assert.Equal(t, MessagesFor("uz").LoadFailed, m.Errors().Message())

	gw.failOn("list_students", nil)
	require.NoError(t, m.Refresh(context.Background()))
	assert.Empty(t, m.Errors().Message())
}

func TestRefreshNormalizesNilCollections(t *testing.T) {
	m := newTestModel(newFakeGateway())
	require.NoError(t, m.Refresh(context.Background()))

	snap := m.Snapshot()
	assert.NotNil(t, snap.Students)
	assert.NotNil(t, snap.Subjects)
	assert.NotNil(t, snap.Grades)
}

func TestConcurrentRefreshesNeverTear(t *testing.T) {
	gw := seededGateway()
	m := newTestModel(gw)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Refresh(context.Background())
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.Len(t, snap.Students, 1)
	assert.Len(t, snap.Subjects, 1)
	assert.Len(t, snap.Grades, 1)
	assert.Equal(t, uint64(8), snap.Version)
}

// gatedReader holds the first ListStudents call until release is closed.
type gatedReader struct {
	Reader
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func newGatedReader(r Reader) *gatedReader {
	return &gatedReader{Reader: r, entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedReader) ListStudents(ctx context.Context) ([]journal.Student, error) {
	if g.calls.Add(1) == 1 {
		close(g.entered)
		<-g.release
	}
	return g.Reader.ListStudents(ctx)
}

func TestOverlappingRefreshVersionsFollowStoreOrder(t *testing.T) {
	gw := seededGateway()
	gated := newGatedReader(gw)
	m := newTestModel(gated)

	slow := make(chan error, 1)
	go func() { slow <- m.Refresh(context.Background()) }()
	<-gated.entered

	require.NoError(t, m.Refresh(context.Background()))
	first := m.Snapshot()
	assert.Equal(t, uint64(1), first.Version)

	gw.seed([]journal.Student{{ID: 1, Name: "Ali"}, {ID: 2, Name: "Vali"}}, nil, nil)
	close(gated.release)
	require.NoError(t, <-slow)

	last := m.Snapshot()
	assert.Equal(t, uint64(2), last.Version)
	assert.Len(t, last.Students, 2)
}

func TestRefreshKeepsErrorReportedWhileRunning(t *testing.T) {
	gated := newGatedReader(seededGateway())
	m := newTestModel(gated)

	done := make(chan error, 1)
	go func() { done <- m.Refresh(context.Background()) }()
	<-gated.entered

	m.Errors().Report("grade update failed")
	close(gated.release)
	require.NoError(t, <-done)

	assert.Equal(t, "grade update failed", m.Errors().Message())

	require.NoError(t, m.Refresh(context.Background()))
	assert.Empty(t, m.Errors().Message())
}
