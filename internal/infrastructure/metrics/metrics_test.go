package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCounters(t *testing.T) {
	m := New("journal")

	m.ObserveCall("list_students", 10*time.Millisecond, nil)
	m.ObserveCall("list_students", 10*time.Millisecond, errors.New("down"))
	m.ObserveRefresh(20*time.Millisecond, nil)
	m.ObserveHTTP("GET", "/", 200, time.Millisecond)
	m.SetBreakerState("journal-api", 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.gatewayCalls.WithLabelValues("list_students", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.gatewayCalls.WithLabelValues("list_students", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshes.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.breakerState.WithLabelValues("journal-api")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New("journal")
	m.ObserveRefresh(time.Millisecond, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "journal_refreshes_total")
}
