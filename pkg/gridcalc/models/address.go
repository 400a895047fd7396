// Package models defines the data structures of the grid engine.
package models

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
)

// Address identifies a single cell.
type Address struct {
	// Col is the column index (0-based, A=0).
	Col int `json:"col"`
	// Row is the row number (1-based).
	Row int `json:"row"`
}

// String returns the A1 form of the address, e.g. "AB12".
// Addresses with a negative column or a row below 1 render as "?".
func (a Address) String() string {
	name, err := excelize.CoordinatesToCellName(a.Col+1, a.Row)
	if err != nil {
		return "?"
	}
	return name
}

// Offset returns the address shifted by the given column and row deltas.
func (a Address) Offset(cols, rows int) Address {
	return Address{Col: a.Col + cols, Row: a.Row + rows}
}

// MarshalText implements encoding.TextMarshaler so addresses can key JSON objects.
func (a Address) MarshalText() ([]byte, error) {
	if a.Col < 0 || a.Row < 1 {
		return nil, fmt.Errorf("address out of range: col=%d row=%d", a.Col, a.Row)
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	col, row, err := excelize.CellNameToCoordinates(string(text))
	if err != nil {
		return err
	}
	a.Col = col - 1
	a.Row = row
	return nil
}

// Rect represents inclusive cell coordinate bounds with normalized corners.
type Rect struct {
	// C1 is the start column (0-based).
	C1 int `json:"c1"`
	// R1 is the start row (1-based).
	R1 int `json:"r1"`
	// C2 is the end column (0-based, inclusive).
	C2 int `json:"c2"`
	// R2 is the end row (1-based, inclusive).
	R2 int `json:"r2"`
}

// NewRect builds a rectangle from two corners in any order.
func NewRect(a, b Address) Rect {
	r := Rect{C1: a.Col, R1: a.Row, C2: b.Col, R2: b.Row}
	if r.C1 > r.C2 {
		r.C1, r.C2 = r.C2, r.C1
	}
	if r.R1 > r.R2 {
		r.R1, r.R2 = r.R2, r.R1
	}
	return r
}

// Start returns the top-left corner.
func (r Rect) Start() Address { return Address{Col: r.C1, Row: r.R1} }

// End returns the bottom-right corner.
func (r Rect) End() Address { return Address{Col: r.C2, Row: r.R2} }

// Contains reports whether the address lies inside the rectangle.
func (r Rect) Contains(a Address) bool {
	return a.Col >= r.C1 && a.Col <= r.C2 && a.Row >= r.R1 && a.Row <= r.R2
}

// Addresses enumerates the rectangle row by row.
func (r Rect) Addresses() []Address {
	out := make([]Address, 0, (r.C2-r.C1+1)*(r.R2-r.R1+1))
	for row := r.R1; row <= r.R2; row++ {
		for col := r.C1; col <= r.C2; col++ {
			out = append(out, Address{Col: col, Row: row})
		}
	}
	return out
}

// SortAddresses orders addrs row by row, left to right.
func SortAddresses(addrs []Address) {
	sort.Slice(addrs, func(i, j int) bool {
		if addrs[i].Row != addrs[j].Row {
			return addrs[i].Row < addrs[j].Row
		}
		return addrs[i].Col < addrs[j].Col
	})
}

// String returns the range in "A1:B2" form. Single-cell ranges render as one address.
func (r Rect) String() string {
	if r.C1 == r.C2 && r.R1 == r.R2 {
		return r.Start().String()
	}
	return r.Start().String() + ":" + r.End().String()
}
