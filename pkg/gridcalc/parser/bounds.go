package parser

import (
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
)

// UsedRange returns the bounding box of non-empty cells, e.g. "A1:D10".
// It returns "" for an empty grid.
func UsedRange(g *models.Grid) string {
	r, ok := DataBounds(g)
	if !ok {
		return ""
	}
	return r.String()
}

// DataBounds finds the bounding box of non-empty cells.
func DataBounds(g *models.Grid) (models.Rect, bool) {
	minRow, maxRow := -1, -1
	minCol, maxCol := -1, -1

	for addr, cell := range g.Cells {
		if cell.IsEmpty() {
			continue
		}
		if minRow < 0 || addr.Row < minRow {
			minRow = addr.Row
		}
		if maxRow < 0 || addr.Row > maxRow {
			maxRow = addr.Row
		}
		if minCol < 0 || addr.Col < minCol {
			minCol = addr.Col
		}
		if maxCol < 0 || addr.Col > maxCol {
			maxCol = addr.Col
		}
	}

	if minRow < 0 {
		return models.Rect{}, false
	}
	return models.Rect{C1: minCol, R1: minRow, C2: maxCol, R2: maxRow}, true
}
