package web

import (
	"encoding/json"
	"net/http"
	"time"
)

// envelope wraps every JSON answer of the page server.
type envelope struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *errorBody `json:"error,omitempty"`
	Meta      *meta      `json:"meta,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type meta struct {
	Timestamp  time.Time `json:"timestamp"`
	TotalCount int       `json:"total_count,omitempty"`
}

func encode(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeJSON answers with data; total is reported when positive.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any, total int) {
	encode(w, status, envelope{
		Success:   status < 300,
		Data:      data,
		Meta:      &meta{Timestamp: time.Now().UTC(), TotalCount: total},
		RequestID: requestID(r.Context()),
	})
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	encode(w, status, envelope{
		Error: &errorBody{Code: code, Message: message},
		Meta:  &meta{Timestamp: time.Now().UTC()},
	})
}
