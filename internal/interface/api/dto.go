package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
	"github.com/alem-hub/grade-journal/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUESTS
// ══════════════════════════════════════════════════════════════════════════════

type nameRequest struct {
	Name string `json:"name" validate:"required"`
}

type gradeRequest struct {
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
	SubjectID int64 `json:"subject_id" validate:"required,gt=0"`
	Score     *int  `json:"score" validate:"required,min=0,max=100"`
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSES
// ══════════════════════════════════════════════════════════════════════════════

type studentResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type subjectResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type gradeResponse struct {
	ID        int64 `json:"id"`
	StudentID int64 `json:"student_id"`
	SubjectID int64 `json:"subject_id"`
	Score     int   `json:"score"`
}

func toGradeResponse(g journal.Grade) gradeResponse {
	return gradeResponse{ID: g.ID, StudentID: g.StudentID, SubjectID: g.SubjectID, Score: g.Score}
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Success bool     `json:"success"`
	Error   apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ══════════════════════════════════════════════════════════════════════════════
// ENCODING
// ══════════════════════════════════════════════════════════════════════════════

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: apiError{Code: code, Message: message}})
}

// decode reads and validates a JSON body. It answers the request itself
// when the body is unusable.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, 64<<10)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		msg := "malformed JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body is empty"
		}
		writeError(w, http.StatusUnprocessableEntity, "invalid_body", msg)
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", describeValidation(err))
		return false
	}
	return true
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "min", "max", "gt":
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param()))
		default:
			parts = append(parts, field+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}

// fail maps domain errors onto status codes. Anything unrecognized is a 500
// whose details stay in the log.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case journal.IsValidation(err):
		writeError(w, http.StatusUnprocessableEntity, "validation_failed", domainMessage(err))
	case journal.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", domainMessage(err))
	case journal.IsAlreadyExists(err):
		writeError(w, http.StatusConflict, "already_exists", domainMessage(err))
	default:
		logger.FromContext(r.Context()).Error("request failed", logger.Err(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// domainMessage extracts the human-readable part of a domain error.
func domainMessage(err error) string {
	var de *journal.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
