package models

import (
	"fmt"

	"github.com/tiendc/go-deepcopy"
)

// Condition is the test a conditional format applies to each cell value.
type Condition string

const (
	CondEquals    Condition = "equals"
	CondGreater   Condition = "greater"
	CondLess      Condition = "less"
	CondBetween   Condition = "between"
	CondContains  Condition = "contains"
	CondDuplicate Condition = "duplicate"
	CondUnique    Condition = "unique"
)

// Valid reports whether c is a known condition.
func (c Condition) Valid() bool {
	switch c {
	case CondEquals, CondGreater, CondLess, CondBetween, CondContains, CondDuplicate, CondUnique:
		return true
	}
	return false
}

// ConditionalFormat applies Style to every cell of Range whose value satisfies Condition.
type ConditionalFormat struct {
	Range     string    `json:"range"`
	Condition Condition `json:"condition"`
	Value     any       `json:"value,omitempty"`
	Value2    any       `json:"value2,omitempty"`
	Style     CellStyle `json:"style"`
}

// Grid is the full addressable cell matrix plus formatting and chart metadata.
type Grid struct {
	// Cells maps address to cell; absent addresses are empty.
	Cells map[Address]Cell `json:"cells"`
	// Columns is the number of addressable columns.
	Columns int `json:"columns"`
	// Rows is the number of addressable rows.
	Rows int `json:"rows"`
	// ConditionalFormats is applied in order, later rules winning.
	ConditionalFormats []ConditionalFormat `json:"conditionalFormats,omitempty"`
	// Charts lists the charts created on the grid.
	Charts []ChartSpec `json:"charts,omitempty"`
}

// NewGrid returns an empty grid of the given size.
func NewGrid(columns, rows int) *Grid {
	return &Grid{
		Cells:   make(map[Address]Cell),
		Columns: columns,
		Rows:    rows,
	}
}

// InBounds reports whether a lies inside the grid.
func (g *Grid) InBounds(a Address) bool {
	return a.Col >= 0 && a.Col < g.Columns && a.Row >= 1 && a.Row <= g.Rows
}

// Cell returns the cell at a and whether it is present.
func (g *Grid) Cell(a Address) (Cell, bool) {
	c, ok := g.Cells[a]
	return c, ok
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() (*Grid, error) {
	out := &Grid{}
	if err := deepcopy.Copy(out, g); err != nil {
		return nil, fmt.Errorf("clone grid: %w", err)
	}
	if out.Cells == nil {
		out.Cells = make(map[Address]Cell)
	}
	return out, nil
}

// CloneCells deep-copies a cell map.
func CloneCells(cells map[Address]Cell) (map[Address]Cell, error) {
	out := make(map[Address]Cell, len(cells))
	if err := deepcopy.Copy(&out, &cells); err != nil {
		return nil, fmt.Errorf("clone cells: %w", err)
	}
	return out, nil
}
