// Package clipboard captures cells and re-anchors them on paste.
package clipboard

import (
	"sort"

	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
)

// Clipboard holds a deep copy of the most recently copied cells keyed by
// their original address.
type Clipboard struct {
	cells map[models.Address]models.Cell
}

// New returns an empty clipboard.
func New() *Clipboard {
	return &Clipboard{cells: map[models.Address]models.Cell{}}
}

// Copy replaces the clipboard with deep copies of the present cells at addrs.
func (c *Clipboard) Copy(addrs []models.Address, g *models.Grid) error {
	selected := make(map[models.Address]models.Cell, len(addrs))
	for _, a := range addrs {
		if cell, ok := g.Cells[a]; ok {
			selected[a] = cell
		}
	}
	cells, err := models.CloneCells(selected)
	if err != nil {
		return err
	}
	c.cells = cells
	return nil
}

// Len returns the number of copied cells.
func (c *Clipboard) Len() int {
	return len(c.cells)
}

// Clear empties the clipboard.
func (c *Clipboard) Clear() {
	c.cells = map[models.Address]models.Cell{}
}

// Anchor returns the copied address whose A1 text sorts first as a plain
// string, so "A10" anchors before "A2".
func (c *Clipboard) Anchor() (models.Address, bool) {
	if len(c.cells) == 0 {
		return models.Address{}, false
	}
	keys := make([]models.Address, 0, len(c.cells))
	for a := range c.cells {
		keys = append(keys, a)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys[0], true
}

// Paste returns copies of the clipboard cells shifted so the anchor lands on
// active. Formula text is copied verbatim. Destinations left of column A or
// above row 1 are dropped.
func (c *Clipboard) Paste(active models.Address) (map[models.Address]models.Cell, error) {
	anchor, ok := c.Anchor()
	if !ok {
		return map[models.Address]models.Cell{}, nil
	}
	colOffset := active.Col - anchor.Col
	rowOffset := active.Row - anchor.Row

	cells, err := models.CloneCells(c.cells)
	if err != nil {
		return nil, err
	}
	out := make(map[models.Address]models.Cell, len(cells))
	for a, cell := range cells {
		dst := a.Offset(colOffset, rowOffset)
		if dst.Col < 0 || dst.Row < 1 {
			continue
		}
		out[dst] = cell
	}
	return out, nil
}
