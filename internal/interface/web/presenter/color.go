// Package presenter turns journal records into the table the page shows:
// header, rows of editable cells, the max/mean/min footer and the colors
// that go with every score.
package presenter

import (
	"fmt"

	"github.com/alem-hub/grade-journal/internal/domain/journal"
)

// EmptyBackground is the background of a cell without a score.
const EmptyBackground = "#fff"

// RGB is a background color.
type RGB struct {
	R, G, B uint8
}

// CSS formats the color the way inline styles expect it.
func (c RGB) CSS() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// ScoreColor maps a score in [0,100] onto a red→yellow→green gradient.
// Below 50 green rises from 0 to 255 with red fixed at 255; from 50 red
// falls from 255 to 0 with green fixed at 255. Channels are floored.
// Out-of-range scores are clamped.
func ScoreColor(score int) RGB {
	switch {
	case score < journal.MinScore:
		score = journal.MinScore
	case score > journal.MaxScore:
		score = journal.MaxScore
	}

	if score < 50 {
		return RGB{R: 255, G: uint8(score * 255 / 50)}
	}
	// floor(255 - x) == 255 - ceil(x)
	return RGB{R: uint8(255 - ((score-50)*255+49)/50), G: 255}
}

// Background returns the CSS background of a cell.
func Background(score int, filled bool) string {
	if !filled {
		return EmptyBackground
	}
	return ScoreColor(score).CSS()
}
