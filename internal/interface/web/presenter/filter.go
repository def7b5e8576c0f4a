package presenter

import (
	"net/url"
	"strconv"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
)

// Query parameter names, matching the ids of the filter controls.
const (
	ParamSubject = "filter-subject"
	ParamTier    = "grade-filter"
)

// Filter narrows the rendered rows to students with a grade in one subject,
// optionally within a tier. The zero value shows everything.
type Filter struct {
	SubjectID int64
	Tier      journal.Tier
}

// Active reports whether the filter hides anything. A tier without a
// subject has no effect.
func (f Filter) Active() bool {
	return f.SubjectID > 0
}

// Keep reports whether a row passes the filter.
func (f Filter) Keep(row Row) bool {
	if !f.Active() {
		return true
	}
	for _, c := range row.Cells {
		if c.Ref.SubjectID != f.SubjectID {
			continue
		}
		return c.Filled && f.Tier.Matches(c.Score)
	}
	// subject not in the table
	return false
}

// Apply returns the rows that pass the filter, in order. Applying the same
// filter twice gives the same rows.
func (f Filter) Apply(rows []Row) []Row {
	if !f.Active() {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if f.Keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Clear resets both the subject and the tier.
func (f *Filter) Clear() {
	*f = Filter{}
}

// Query encodes the filter as query parameters. An inactive filter encodes
// to nothing.
func (f Filter) Query() url.Values {
	v := url.Values{}
	if !f.Active() {
		return v
	}
	v.Set(ParamSubject, strconv.FormatInt(f.SubjectID, 10))
	if f.Tier != journal.TierNone {
		v.Set(ParamTier, string(f.Tier))
	}
	return v
}

// FilterFromQuery reads a filter from query parameters. Malformed values
// are treated as absent.
func FilterFromQuery(q url.Values) Filter {
	var f Filter
	if id, err := journal.ParseID(q.Get(ParamSubject)); err == nil {
		f.SubjectID = id
	}
	f.Tier = journal.ParseTier(q.Get(ParamTier))
	return f
}
