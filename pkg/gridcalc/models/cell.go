package models

import "time"

// CellType classifies the value held by a cell.
type CellType string

const (
	CellText       CellType = "text"
	CellNumber     CellType = "number"
	CellCurrency   CellType = "currency"
	CellPercentage CellType = "percentage"
	CellDate       CellType = "date"
	CellBoolean    CellType = "boolean"
	CellFormula    CellType = "formula"
	CellLink       CellType = "link"
)

// Valid reports whether t is one of the known cell types.
func (t CellType) Valid() bool {
	switch t {
	case CellText, CellNumber, CellCurrency, CellPercentage, CellDate, CellBoolean, CellFormula, CellLink:
		return true
	}
	return false
}

// Hyperlink is the tagged value produced by HYPERLINK and link cells.
type Hyperlink struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// HistoryEntry records a value a cell held before it was overwritten.
type HistoryEntry struct {
	// Value is the previous value.
	Value any `json:"value"`
	// Timestamp is when the value was replaced.
	Timestamp time.Time `json:"timestamp"`
}

// Cell is a single non-empty entry of the grid.
//
// Value is nil (empty), float64, string, bool or Hyperlink. When Formula is set,
// Value holds the result of its last evaluation.
type Cell struct {
	Value   any            `json:"value"`
	Formula string         `json:"formula,omitempty"`
	Type    CellType       `json:"type"`
	Style   *CellStyle     `json:"style,omitempty"`
	Locked  bool           `json:"locked,omitempty"`
	Comment string         `json:"comment,omitempty"`
	History []HistoryEntry `json:"history,omitempty"`
}

// IsEmpty reports whether the cell carries neither a value nor a formula.
func (c Cell) IsEmpty() bool {
	if c.Formula != "" {
		return false
	}
	switch v := c.Value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	}
	return false
}

// PushHistory appends an entry and evicts the oldest entries beyond limit.
func (c *Cell) PushHistory(entry HistoryEntry, limit int) {
	c.History = append(c.History, entry)
	if limit > 0 && len(c.History) > limit {
		c.History = append([]HistoryEntry(nil), c.History[len(c.History)-limit:]...)
	}
}
