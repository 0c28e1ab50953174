package tracks

import "time"

// cellHeight is the rendered height of one cell, borders included.
const cellHeight = 5

// cellWidths are the zoom steps, widest first.
var cellWidths = []int{34, 30, 26, 22, 18, 14}

const (
	fitFast = 10 * time.Millisecond
	fitIdle = 250 * time.Millisecond
	// fitSettle is how long the layout must stay unchanged before the loop
	// drops to the idle cadence.
	fitSettle = 500 * time.Millisecond
)

type Layout struct {
	Columns   int
	CellWidth int
}

func layoutFor(width, cellWidth int) Layout {
	return Layout{Columns: max(1, width/cellWidth), CellWidth: cellWidth}
}

func (l Layout) rows(count int) int {
	if count == 0 {
		return 0
	}
	return (count + l.Columns - 1) / l.Columns
}

// Fit picks the widest cell whose grid of count tracks fits in width×height
// without scrolling. When nothing fits, the narrowest cell is used.
func Fit(width, height, count int) Layout {
	for _, w := range cellWidths {
		l := layoutFor(width, w)
		if width >= w && l.rows(count)*cellHeight <= height {
			return l
		}
	}
	return layoutFor(width, cellWidths[len(cellWidths)-1])
}

// nextInterval keeps the loop fast while the layout is still moving.
func nextInterval(sinceChange time.Duration) time.Duration {
	if sinceChange > fitSettle {
		return fitIdle
	}
	return fitFast
}
