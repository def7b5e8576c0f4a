package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/alem-hub/grade-journal/internal/application/command"
	"github.com/alem-hub/grade-journal/internal/application/query"
	"github.com/alem-hub/grade-journal/internal/domain/journal"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) listStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.lists.Students(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]studentResponse, 0, len(students))
	for _, st := range students {
		out = append(out, studentResponse{ID: st.ID, Name: st.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createStudentHandler(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !s.decode(w, r, &req) {
		return
	}
	st, err := s.createStudent.Handle(r.Context(), command.CreateStudentCommand{Name: req.Name})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, studentResponse{ID: st.ID, Name: st.Name})
}

func (s *Server) deleteStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.deleter.HandleStudent(r.Context(), command.DeleteStudentCommand{StudentID: id}); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "deleted"})
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBJECTS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) listSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := s.lists.Subjects(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]subjectResponse, 0, len(subjects))
	for _, sub := range subjects {
		out = append(out, subjectResponse{ID: sub.ID, Name: sub.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createSubjectHandler(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !s.decode(w, r, &req) {
		return
	}
	sub, err := s.createSubject.Handle(r.Context(), command.CreateSubjectCommand{Name: req.Name})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subjectResponse{ID: sub.ID, Name: sub.Name})
}

func (s *Server) deleteSubject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.deleter.HandleSubject(r.Context(), command.DeleteSubjectCommand{SubjectID: id}); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "deleted"})
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADES
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) listGrades(w http.ResponseWriter, r *http.Request) {
	q, ok := gradesQuery(w, r)
	if !ok {
		return
	}
	grades, err := s.lists.Grades(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]gradeResponse, 0, len(grades))
	for _, g := range grades {
		out = append(out, toGradeResponse(g))
	}
	writeJSON(w, http.StatusOK, out)
}

// upsertGrade creates the grade of a pair or replaces its score.
func (s *Server) upsertGrade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if !s.decode(w, r, &req) {
		return
	}
	_, err := s.recordGrade.Handle(r.Context(), command.RecordGradeCommand{
		StudentID: req.StudentID,
		SubjectID: req.SubjectID,
		Score:     *req.Score,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	st := s.deps.Health.Check(r.Context())
	code := http.StatusOK
	if !st.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, st)
}

func (s *Server) live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "alive"})
}

// ─────────────────────────────────────────────────────────────────────────────
// Parameters
// ─────────────────────────────────────────────────────────────────────────────

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := journal.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_id", err.Error())
		return 0, false
	}
	return id, true
}

func gradesQuery(w http.ResponseWriter, r *http.Request) (query.ListGradesQuery, bool) {
	var q query.ListGradesQuery
	for key, dst := range map[string]*int64{"student_id": &q.StudentID, "subject_id": &q.SubjectID} {
		raw := r.URL.Query().Get(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v <= 0 {
			writeError(w, http.StatusUnprocessableEntity, "invalid_query", key+" must be a positive integer")
			return q, false
		}
		*dst = v
	}
	return q, true
}
