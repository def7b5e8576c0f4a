// Package gradebook is the client-side core of the journal: the in-memory
// model with its all-or-nothing refresh cycle, the error surface, and the
// edit controller that writes through the gateway and refreshes.
package gradebook

import (
	"context"
	"errors"
	"time"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
)

// Reader is the read half of the remote data gateway.
type Reader interface {
	ListStudents(ctx context.Context) ([]journal.Student, error)
	ListSubjects(ctx context.Context) ([]journal.Subject, error)
	ListGrades(ctx context.Context) ([]journal.Grade, error)
}

// Writer is the write half of the remote data gateway.
type Writer interface {
	CreateStudent(ctx context.Context, name string) (journal.Student, error)
	CreateSubject(ctx context.Context, name string) (journal.Subject, error)
	UpsertGrade(ctx context.Context, studentID, subjectID int64, score int) error
	DeleteStudent(ctx context.Context, id int64) error
	DeleteSubject(ctx context.Context, id int64) error
}

// Gateway is the full remote data gateway.
type Gateway interface {
	Reader
	Writer
}

// RefreshRecorder receives one observation per refresh cycle.
type RefreshRecorder interface {
	ObserveRefresh(d time.Duration, err error)
}

// userMessager is implemented by gateway errors that carry a short,
// human-readable reason.
type userMessager interface {
	UserMessage() string
}

// reason picks the text appended to a localized error prefix.
func reason(err error) string {
	var um userMessager
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return err.Error()
}
