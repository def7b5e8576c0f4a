package web

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/alem-hub/grade-journal/internal/application/gradebook"
	"github.com/alem-hub/grade-journal/internal/domain/journal"
	"github.com/alem-hub/grade-journal/internal/interface/web/presenter"
	"github.com/alem-hub/grade-journal/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// PAGE
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	model := s.deps.Model

	// first visit, or every refresh so far failed
	if !model.Snapshot().Loaded() {
		_ = model.Refresh(ctx)
	}

	filter := presenter.FilterFromQuery(r.URL.Query())
	snap := model.Snapshot()
	table := presenter.Render(snap.Students, snap.Subjects, snap.Grades, filter)

	data := pageData{
		Labels:   s.deps.Labels,
		Table:    table,
		Subjects: snap.Subjects,
		Filter:   filter,
		Tiers:    tierOptions(s.deps.Labels, filter.Tier),
		Error:    model.Errors().Message(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTemplate.Execute(w, data); err != nil {
		logger.FromContext(ctx).Error("render page", logger.Err(err))
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	_ = s.deps.Model.Refresh(r.Context())
	redirectBack(w, r)
}

func (s *Server) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	err := s.deps.Editor.AddStudent(r.Context(), r.PostFormValue("name"))
	s.logActionError(r, "add_student", err)
	redirectBack(w, r)
}

func (s *Server) handleAddSubject(w http.ResponseWriter, r *http.Request) {
	err := s.deps.Editor.AddSubject(r.Context(), r.PostFormValue("name"))
	s.logActionError(r, "add_subject", err)
	redirectBack(w, r)
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, err := journal.ParseID(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}
	s.logActionError(r, "delete_student", s.deps.Editor.DeleteStudent(r.Context(), id))
	redirectBack(w, r)
}

func (s *Server) handleDeleteSubject(w http.ResponseWriter, r *http.Request) {
	id, err := journal.ParseID(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}
	s.logActionError(r, "delete_subject", s.deps.Editor.DeleteSubject(r.Context(), id))
	redirectBack(w, r)
}

// handleEditCell routes one cell edit through the dispatch table. A rejected
// score changes nothing and the page is shown again as it was.
func (s *Server) handleEditCell(w http.ResponseWriter, r *http.Request) {
	studentID, err := journal.ParseID(r.PathValue("student"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}
	subjectID, err := journal.ParseID(r.PathValue("subject"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}

	ref := journal.CellRef{StudentID: studentID, SubjectID: subjectID}
	err = s.deps.Dispatcher.Dispatch(r.Context(), ref, r.PostFormValue("score"))
	if errors.Is(err, gradebook.ErrUnknownCell) {
		writeJSONError(w, http.StatusNotFound, "unknown_cell", "no such cell: "+ref.String())
		return
	}
	if err != nil && !errors.Is(err, journal.ErrInvalidScore) {
		s.logActionError(r, "edit_cell", err)
	}
	redirectBack(w, r)
}

// ══════════════════════════════════════════════════════════════════════════════
// JSON TABLE
// ══════════════════════════════════════════════════════════════════════════════

type tableResponse struct {
	presenter.Table
	Error   string `json:"error,omitempty"`
	Version uint64 `json:"version"`
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	model := s.deps.Model
	if !model.Snapshot().Loaded() {
		_ = model.Refresh(r.Context())
	}

	snap := model.Snapshot()
	table := presenter.Render(snap.Students, snap.Subjects, snap.Grades, presenter.FilterFromQuery(r.URL.Query()))
	writeJSON(w, r, http.StatusOK, tableResponse{
		Table:   table,
		Error:   model.Errors().Message(),
		Version: snap.Version,
	}, table.TotalRows)
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.deps.Health.Check(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, r, code, status, 0)
}

// handleReady reports ready once the model holds data from the backend.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	snap := s.deps.Model.Snapshot()
	if !snap.Loaded() {
		writeJSONError(w, http.StatusServiceUnavailable, "not_ready", "journal data not loaded yet")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"ready":      true,
		"version":    snap.Version,
		"fetched_at": snap.FetchedAt,
	}, 0)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "alive"}, 0)
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) logActionError(r *http.Request, op string, err error) {
	if err == nil || errors.Is(err, gradebook.ErrIgnored) {
		return
	}
	logger.FromContext(r.Context()).Warn("action failed", logger.Operation(op), logger.Err(err))
}

// redirectBack sends the browser to the page, keeping the filter the form
// carried in its hidden fields.
func redirectBack(w http.ResponseWriter, r *http.Request) {
	target := "/"
	f := presenter.FilterFromQuery(url.Values{
		presenter.ParamSubject: {r.PostFormValue(presenter.ParamSubject)},
		presenter.ParamTier:    {r.PostFormValue(presenter.ParamTier)},
	})
	if q := f.Query().Encode(); q != "" {
		target += "?" + q
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
