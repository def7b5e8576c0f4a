package journalapi

import (
	"encoding/json"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
)

// ══════════════════════════════════════════════════════════════════════════════
// WIRE TYPES
// ══════════════════════════════════════════════════════════════════════════════

// StudentDTO is a student as the backend serializes it.
type StudentDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SubjectDTO is a subject as the backend serializes it.
type SubjectDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GradeDTO is a grade as the backend serializes it. Some backends omit id.
type GradeDTO struct {
	ID        *int64 `json:"id,omitempty"`
	StudentID int64  `json:"student_id"`
	SubjectID int64  `json:"subject_id"`
	Score     int    `json:"score"`
}

// NameRequest is the body of POST /students/ and POST /subjects/.
type NameRequest struct {
	Name string `json:"name"`
}

// GradeRequest is the body of POST /grades/.
type GradeRequest struct {
	StudentID int64 `json:"student_id"`
	SubjectID int64 `json:"subject_id"`
	Score     int   `json:"score"`
}

// errorBody understands both the FastAPI {"detail": ...} shape and the
// {"success": false, "error": {...}} envelope.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (b errorBody) codeAndMessage() (string, string) {
	if b.Error != nil && b.Error.Message != "" {
		return b.Error.Code, b.Error.Message
	}
	var detail string
	if len(b.Detail) > 0 && json.Unmarshal(b.Detail, &detail) == nil {
		return "", detail
	}
	return "", ""
}

// ══════════════════════════════════════════════════════════════════════════════
// MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// ToDomain converts the DTO.
func (d StudentDTO) ToDomain() journal.Student {
	return journal.Student{ID: d.ID, Name: d.Name}
}

// ToDomain converts the DTO.
func (d SubjectDTO) ToDomain() journal.Subject {
	return journal.Subject{ID: d.ID, Name: d.Name}
}

// ToDomain converts the DTO.
func (d GradeDTO) ToDomain() journal.Grade {
	g := journal.Grade{StudentID: d.StudentID, SubjectID: d.SubjectID, Score: d.Score}
	if d.ID != nil {
		g.ID = *d.ID
	}
	return g
}

func studentsToDomain(dtos []StudentDTO) []journal.Student {
	out := make([]journal.Student, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.ToDomain())
	}
	return out
}

func subjectsToDomain(dtos []SubjectDTO) []journal.Subject {
	out := make([]journal.Subject, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.ToDomain())
	}
	return out
}

// gradesToDomain drops grades whose score is outside [0,100] and reports how many.
func gradesToDomain(dtos []GradeDTO) ([]journal.Grade, int) {
	out := make([]journal.Grade, 0, len(dtos))
	dropped := 0
	for _, d := range dtos {
		if !journal.ValidScore(d.Score) {
			dropped++
			continue
		}
		out = append(out, d.ToDomain())
	}
	return out, dropped
}
