// Package journal contains the grade journal domain: students, subjects,
// grades and the score rules shared by the client and the backend.
package journal

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// MaxNameLength is the longest student or subject name accepted.
const MaxNameLength = 100

// Student is a row of the journal. Identity is the ID.
type Student struct {
	ID   int64
	Name string
}

// Subject is a column of the journal.
type Subject struct {
	ID   int64
	Name string
}

// Grade is the score a student holds in a subject. ID is zero when the
// backend does not report one.
type Grade struct {
	ID        int64
	StudentID int64
	SubjectID int64
	Score     int
}

// Ref returns the cell the grade belongs to.
func (g Grade) Ref() CellRef {
	return CellRef{StudentID: g.StudentID, SubjectID: g.SubjectID}
}

// CellRef addresses one (student, subject) cell of the journal.
type CellRef struct {
	StudentID int64
	SubjectID int64
}

// String renders the ref as "student:subject".
func (r CellRef) String() string {
	return fmt.Sprintf("%d:%d", r.StudentID, r.SubjectID)
}

// Valid reports whether both ids are positive.
func (r CellRef) Valid() bool {
	return r.StudentID > 0 && r.SubjectID > 0
}

// ParseCellRef is the inverse of CellRef.String.
func ParseCellRef(s string) (CellRef, error) {
	studentPart, subjectPart, ok := strings.Cut(s, ":")
	if !ok {
		return CellRef{}, WrapError("journal", "ParseCellRef", ErrValidation, fmt.Sprintf("malformed cell %q", s), nil)
	}
	studentID, err := ParseID(studentPart)
	if err != nil {
		return CellRef{}, err
	}
	subjectID, err := ParseID(subjectPart)
	if err != nil {
		return CellRef{}, err
	}
	return CellRef{StudentID: studentID, SubjectID: subjectID}, nil
}

// ParseID parses a positive integer identifier.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, WrapError("journal", "ParseID", ErrValidation, fmt.Sprintf("invalid id %q", s), err)
	}
	if id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// NormalizeName trims surrounding whitespace from a student or subject name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// ValidateName checks an already normalized name.
func ValidateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SCORE
// ══════════════════════════════════════════════════════════════════════════════

const (
	MinScore = 0
	MaxScore = 100
)

// ValidScore reports whether s lies in [MinScore, MaxScore].
func ValidScore(s int) bool {
	return s >= MinScore && s <= MaxScore
}

// ParseScore parses a score typed into a journal cell.
// Anything that is not a base-10 integer in range is rejected with ErrInvalidScore.
func ParseScore(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidScore, raw)
	}
	if !ValidScore(n) {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidScore, n)
	}
	return n, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TIER
// ══════════════════════════════════════════════════════════════════════════════

// Tier is a coarse score bucket used for filtering.
type Tier string

const (
	TierNone   Tier = ""
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Tier thresholds.
const (
	HighTierMin   = 75
	MediumTierMin = 50
)

// Tiers lists the selectable tiers in display order.
var Tiers = []Tier{TierHigh, TierMedium, TierLow}

// ParseTier maps a radio value to a Tier. Unknown values mean no tier.
func ParseTier(s string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierHigh:
		return TierHigh
	case TierMedium:
		return TierMedium
	case TierLow:
		return TierLow
	default:
		return TierNone
	}
}

// Matches reports whether score falls into the tier. TierNone matches everything.
func (t Tier) Matches(score int) bool {
	switch t {
	case TierHigh:
		return score >= HighTierMin
	case TierMedium:
		return score >= MediumTierMin && score < HighTierMin
	case TierLow:
		return score < MediumTierMin
	default:
		return true
	}
}

// TierOf returns the tier a score belongs to.
func TierOf(score int) Tier {
	switch {
	case score >= HighTierMin:
		return TierHigh
	case score >= MediumTierMin:
		return TierMedium
	default:
		return TierLow
	}
}
