package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/grade-journal/internal/infrastructure/metrics"
	"github.com/alem-hub/grade-journal/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/grade-journal/pkg/logger"
)

func newTestAPI(t *testing.T) http.Handler {
	t.Helper()
	srv := NewServer(DefaultConfig(), Dependencies{
		Repository: memory.NewJournalRepository(),
		Logger:     logger.Nop(),
		Metrics:    metrics.New("api_test"),
	})
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestStudentsLifecycle(t *testing.T) {
	h := newTestAPI(t)

	rec := do(t, h, http.MethodGet, "/students/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/students/", `{"name":"Ali"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	created := decodeBody[studentResponse](t, rec)
	assert.Equal(t, "Ali", created.Name)
	assert.NotZero(t, created.ID)

	rec = do(t, h, http.MethodPost, "/students", `{"name":"Ali"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_exists", decodeBody[errorResponse](t, rec).Error.Code)

	rec = do(t, h, http.MethodGet, "/students", "")
	list := decodeBody[[]studentResponse](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, created, list[0])

	rec = do(t, h, http.MethodDelete, "/students/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"deleted"}`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/students/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateRejectsBadBodies(t *testing.T) {
	h := newTestAPI(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"malformed", `{"name":`},
		{"missing name", `{}`},
		{"blank name", `{"name":"   "}`},
		{"unknown field", `{"name":"Ali","age":3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/subjects/", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
}

func TestGradesUpsertAndFilter(t *testing.T) {
	h := newTestAPI(t)
	do(t, h, http.MethodPost, "/students/", `{"name":"Ali"}`)
	do(t, h, http.MethodPost, "/students/", `{"name":"Vali"}`)
	do(t, h, http.MethodPost, "/subjects/", `{"name":"Math"}`)

	rec := do(t, h, http.MethodPost, "/grades/", `{"student_id":1,"subject_id":1,"score":80}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/grades/", `{"student_id":1,"subject_id":1,"score":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	do(t, h, http.MethodPost, "/grades/", `{"student_id":2,"subject_id":1,"score":55}`)

	grades := decodeBody[[]gradeResponse](t, do(t, h, http.MethodGet, "/grades/", ""))
	require.Len(t, grades, 2)
	assert.Equal(t, 0, grades[0].Score)

	grades = decodeBody[[]gradeResponse](t, do(t, h, http.MethodGet, "/grades?student_id=2", ""))
	require.Len(t, grades, 1)
	assert.Equal(t, 55, grades[0].Score)

	rec = do(t, h, http.MethodGet, "/grades?student_id=x", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGradesRejectsInvalidInput(t *testing.T) {
	h := newTestAPI(t)
	do(t, h, http.MethodPost, "/students/", `{"name":"Ali"}`)
	do(t, h, http.MethodPost, "/subjects/", `{"name":"Math"}`)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"score above range", `{"student_id":1,"subject_id":1,"score":101}`, http.StatusUnprocessableEntity},
		{"negative score", `{"student_id":1,"subject_id":1,"score":-5}`, http.StatusUnprocessableEntity},
		{"missing score", `{"student_id":1,"subject_id":1}`, http.StatusUnprocessableEntity},
		{"fractional score", `{"student_id":1,"subject_id":1,"score":50.5}`, http.StatusUnprocessableEntity},
		{"unknown student", `{"student_id":9,"subject_id":1,"score":10}`, http.StatusNotFound},
		{"unknown subject", `{"student_id":1,"subject_id":9,"score":10}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/grades/", tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestDeleteSubjectCascades(t *testing.T) {
	h := newTestAPI(t)
	do(t, h, http.MethodPost, "/students/", `{"name":"Ali"}`)
	do(t, h, http.MethodPost, "/subjects/", `{"name":"Math"}`)
	do(t, h, http.MethodPost, "/grades/", `{"student_id":1,"subject_id":1,"score":70}`)

	rec := do(t, h, http.MethodDelete, "/subjects/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.JSONEq(t, `[]`, do(t, h, http.MethodGet, "/grades/", "").Body.String())

	rec = do(t, h, http.MethodDelete, "/subjects/abc", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestOperationalRoutes(t *testing.T) {
	h := newTestAPI(t)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/live", "").Code)

	do(t, h, http.MethodGet, "/students", "")
	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "api_test_")

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/nope", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPut, "/students", "").Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestAPI(t)
	req := httptest.NewRequest(http.MethodOptions, "/grades", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
