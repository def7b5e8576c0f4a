package journal

import (
	"errors"
	"fmt"
)

// Base errors used with errors.Is() across the journal.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrValidation    = errors.New("validation error")
)

// DomainError ties a journal failure to the entity and operation it came from.
type DomainError struct {
	Domain  string // e.g. "student", "subject", "grade"
	Op      string // Operation that failed, e.g. "Create", "Validate"
	Kind    error  // Base error for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error renders "domain.op: message[: cause]".
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error, falling back to the kind.
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is matches both the kind and the wrapped error.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// NewDomainError builds a sentinel-style error of the given kind.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message}
}

// WrapError attaches a cause, typically a storage or transport error.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message, Err: err}
}

var (
	ErrStudentNotFound      = NewDomainError("student", "Find", ErrNotFound, "student not found")
	ErrStudentAlreadyExists = NewDomainError("student", "Create", ErrAlreadyExists, "student already exists")
	ErrSubjectNotFound      = NewDomainError("subject", "Find", ErrNotFound, "subject not found")
	ErrSubjectAlreadyExists = NewDomainError("subject", "Create", ErrAlreadyExists, "subject already exists")

	ErrEmptyName    = NewDomainError("journal", "Validate", ErrValidation, "name cannot be empty")
	ErrNameTooLong  = NewDomainError("journal", "Validate", ErrValidation, "name is too long")
	ErrInvalidID    = NewDomainError("journal", "Validate", ErrValidation, "id must be positive")
	ErrInvalidScore = NewDomainError("grade", "Validate", ErrValidation, "score must be an integer between 0 and 100")
)

// IsNotFound reports whether err is any kind of not-found error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsAlreadyExists reports whether err is a uniqueness conflict.
func IsAlreadyExists(err error) bool { return errors.Is(err, ErrAlreadyExists) }

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
