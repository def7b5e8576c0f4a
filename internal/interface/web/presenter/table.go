package presenter

import (
	"strconv"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
)

// ══════════════════════════════════════════════════════════════════════════════
// TABLE
// ══════════════════════════════════════════════════════════════════════════════

// Table is one rendering of the journal.
type Table struct {
	Columns []Column     `json:"columns"`
	Rows    []Row        `json:"rows"`
	Footer  []SummaryRow `json:"footer"`

	// TotalRows counts rows before filtering.
	TotalRows int    `json:"total_rows"`
	Filter    Filter `json:"-"`
}

// Column is one subject header.
type Column struct {
	SubjectID int64  `json:"subject_id"`
	Name      string `json:"name"`
}

// Row is one student with a cell per column.
type Row struct {
	StudentID   int64  `json:"student_id"`
	StudentName string `json:"student_name"`
	Cells       []Cell `json:"cells"`
}

// Cell is one editable score.
type Cell struct {
	Ref        journal.CellRef `json:"-"`
	Score      int             `json:"score"`
	Filled     bool            `json:"filled"`
	Color      RGB             `json:"-"`
	Background string          `json:"background"`
}

// Value is the input value of the cell, empty when there is no grade.
func (c Cell) Value() string {
	if !c.Filled {
		return ""
	}
	return strconv.Itoa(c.Score)
}

// SummaryKind names a footer row.
type SummaryKind string

const (
	SummaryMax  SummaryKind = "max"
	SummaryMean SummaryKind = "mean"
	SummaryMin  SummaryKind = "min"
)

// SummaryRow is one footer row with a value per column.
type SummaryRow struct {
	Kind  SummaryKind   `json:"kind"`
	Cells []SummaryCell `json:"cells"`
}

// SummaryCell is a footer value. It is blank when the subject has no grades.
type SummaryCell struct {
	Value      int    `json:"value"`
	Filled     bool   `json:"filled"`
	Background string `json:"background"`
}

// Text is the cell text, empty when blank.
func (c SummaryCell) Text() string {
	if !c.Filled {
		return ""
	}
	return strconv.Itoa(c.Value)
}

// Refs lists the cell refs of the visible rows in row-major order.
func (t Table) Refs() []journal.CellRef {
	refs := make([]journal.CellRef, 0, len(t.Rows)*len(t.Columns))
	for _, r := range t.Rows {
		for _, c := range r.Cells {
			refs = append(refs, c.Ref)
		}
	}
	return refs
}

// ══════════════════════════════════════════════════════════════════════════════
// RENDER
// ══════════════════════════════════════════════════════════════════════════════

// Render builds the table for the given records: columns in subject order,
// rows in student order, each cell holding the first grade recorded for its
// (student, subject) pair. The footer covers every grade of a subject,
// filtered rows included. The filter only hides rows.
func Render(students []journal.Student, subjects []journal.Subject, grades []journal.Grade, filter Filter) Table {
	index := make(map[journal.CellRef]int, len(grades))
	for _, g := range grades {
		ref := g.Ref()
		if _, seen := index[ref]; !seen {
			index[ref] = g.Score
		}
	}

	t := Table{
		Columns:   make([]Column, 0, len(subjects)),
		Rows:      make([]Row, 0, len(students)),
		TotalRows: len(students),
		Filter:    filter,
	}
	for _, sub := range subjects {
		t.Columns = append(t.Columns, Column{SubjectID: sub.ID, Name: sub.Name})
	}

	for _, st := range students {
		row := Row{
			StudentID:   st.ID,
			StudentName: st.Name,
			Cells:       make([]Cell, 0, len(subjects)),
		}
		for _, sub := range subjects {
			ref := journal.CellRef{StudentID: st.ID, SubjectID: sub.ID}
			cell := Cell{Ref: ref, Background: EmptyBackground}
			if score, ok := index[ref]; ok {
				cell.Score = score
				cell.Filled = true
				cell.Color = ScoreColor(score)
				cell.Background = cell.Color.CSS()
			}
			row.Cells = append(row.Cells, cell)
		}
		t.Rows = append(t.Rows, row)
	}
	t.Rows = filter.Apply(t.Rows)

	t.Footer = summarize(subjects, grades)
	return t
}

func summarize(subjects []journal.Subject, grades []journal.Grade) []SummaryRow {
	maxRow := SummaryRow{Kind: SummaryMax, Cells: make([]SummaryCell, 0, len(subjects))}
	meanRow := SummaryRow{Kind: SummaryMean, Cells: make([]SummaryCell, 0, len(subjects))}
	minRow := SummaryRow{Kind: SummaryMin, Cells: make([]SummaryCell, 0, len(subjects))}

	for _, sub := range subjects {
		s := Summarize(sub.ID, grades)
		maxRow.Cells = append(maxRow.Cells, s.cell(s.Max))
		meanRow.Cells = append(meanRow.Cells, s.cell(s.Mean))
		minRow.Cells = append(minRow.Cells, s.cell(s.Min))
	}
	return []SummaryRow{maxRow, meanRow, minRow}
}

// ─────────────────────────────────────────────────────────────────────────────
// Per-subject statistics
// ─────────────────────────────────────────────────────────────────────────────

// Stats are the footer values of one subject.
type Stats struct {
	Count int
	Max   int
	Mean  int
	Min   int
}

// Summarize computes the statistics of one subject over all its grades.
// Mean is rounded half up.
func Summarize(subjectID int64, grades []journal.Grade) Stats {
	var s Stats
	sum := 0
	for _, g := range grades {
		if g.SubjectID != subjectID {
			continue
		}
		if s.Count == 0 || g.Score > s.Max {
			s.Max = g.Score
		}
		if s.Count == 0 || g.Score < s.Min {
			s.Min = g.Score
		}
		sum += g.Score
		s.Count++
	}
	if s.Count > 0 {
		s.Mean = roundHalfUp(sum, s.Count)
	}
	return s
}

func (s Stats) cell(v int) SummaryCell {
	if s.Count == 0 {
		return SummaryCell{Background: EmptyBackground}
	}
	return SummaryCell{Value: v, Filled: true, Background: ScoreColor(v).CSS()}
}

// roundHalfUp returns sum/n rounded to the nearest integer, halves up.
// Scores are never negative, so integer division floors.
func roundHalfUp(sum, n int) int {
	return (2*sum + n) / (2 * n)
}
