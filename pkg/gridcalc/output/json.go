// Package output renders grid state as JSON and exports it as an xlsx workbook.
package output

import (
	"encoding/json"

	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/parser"
)

// CellView is a cell together with its address.
type CellView struct {
	Ref string `json:"ref"`
	models.Cell
}

// StateView is the serialized form of a grid: cells ordered row by row and
// conditional format results keyed by address text.
type StateView struct {
	Columns            int                         `json:"columns"`
	Rows               int                         `json:"rows"`
	UsedRange          string                      `json:"usedRange,omitempty"`
	ActiveCell         string                      `json:"activeCell,omitempty"`
	Cells              []CellView                  `json:"cells"`
	ConditionalFormats []models.ConditionalFormat  `json:"conditionalFormats,omitempty"`
	Charts             []models.ChartSpec          `json:"charts,omitempty"`
	ComputedStyles     map[string]models.CellStyle `json:"computedStyles,omitempty"`
}

// NewStateView builds the view of g. styles may be nil.
func NewStateView(g *models.Grid, styles map[models.Address]models.CellStyle) StateView {
	view := StateView{
		Columns:            g.Columns,
		Rows:               g.Rows,
		UsedRange:          parser.UsedRange(g),
		Cells:              make([]CellView, 0, len(g.Cells)),
		ConditionalFormats: g.ConditionalFormats,
		Charts:             g.Charts,
	}

	for _, a := range SortedAddresses(g.Cells) {
		view.Cells = append(view.Cells, CellView{Ref: a.String(), Cell: g.Cells[a]})
	}

	if len(styles) > 0 {
		view.ComputedStyles = make(map[string]models.CellStyle, len(styles))
		for a, s := range styles {
			view.ComputedStyles[a.String()] = s
		}
	}
	return view
}

// SortedAddresses returns the keys of cells in row-major order.
func SortedAddresses(cells map[models.Address]models.Cell) []models.Address {
	addrs := make([]models.Address, 0, len(cells))
	for a := range cells {
		addrs = append(addrs, a)
	}
	models.SortAddresses(addrs)
	return addrs
}

// ToJSON serializes v to JSON.
func ToJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// StateToJSON serializes the view of g.
func StateToJSON(g *models.Grid, styles map[models.Address]models.CellStyle, pretty bool) ([]byte, error) {
	view := NewStateView(g, styles)
	return ToJSON(&view, pretty)
}
