package gridcalc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/parser"
)

// WriteOptions overrides what Write infers or carries over.
type WriteOptions struct {
	// Type forces the cell type instead of inferring it from the value.
	Type models.CellType `json:"type,omitempty"`
	// Style is merged into the existing style.
	Style *models.CellStyle `json:"style,omitempty"`
	// Locked marks the cell read-only for editors. The engine does not enforce it.
	Locked *bool `json:"locked,omitempty"`
	// Comment replaces the cell comment.
	Comment *string `json:"comment,omitempty"`
}

// Write stores a value at ref, inferring its type. Strings starting with "="
// are stored as formulas. Writing an empty value removes the cell.
func (e *Engine) Write(ref string, value any, opts ...WriteOptions) error {
	addr, err := e.resolve(ref)
	if err != nil {
		return err
	}
	var o WriteOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Type != "" && !o.Type.Valid() {
		return fmt.Errorf("%w: unknown cell type %q", ErrInvalidArgument, o.Type)
	}

	if s, ok := value.(string); ok && strings.HasPrefix(s, "=") {
		return e.mutate("write", func(g *models.Grid) error {
			e.setFormula(g, addr, s)
			e.applyOptions(g, addr, o)
			return nil
		})
	}

	v, typ := inferValue(value)
	if o.Type != "" {
		typ = o.Type
	}
	if _, ok := e.grid.Cells[addr]; !ok && (models.Cell{Value: v}).IsEmpty() {
		return nil
	}
	return e.mutate("write", func(g *models.Grid) error {
		cell, existed := g.Cells[addr]
		if existed {
			e.pushHistory(&cell)
		}
		cell.Value = v
		cell.Formula = ""
		cell.Type = typ
		g.Cells[addr] = cell
		e.applyOptions(g, addr, o)
		return nil
	})
}

// Formula stores text as the formula of ref and evaluates it immediately.
// Text without a leading "=" behaves like Write.
func (e *Engine) Formula(ref, text string) error {
	if !strings.HasPrefix(text, "=") {
		return e.Write(ref, text)
	}
	addr, err := e.resolve(ref)
	if err != nil {
		return err
	}
	return e.mutate("formula", func(g *models.Grid) error {
		e.setFormula(g, addr, text)
		return nil
	})
}

func (e *Engine) setFormula(g *models.Grid, addr models.Address, text string) {
	cell, existed := g.Cells[addr]
	if existed {
		e.pushHistory(&cell)
	}
	cell.Formula = text
	cell.Type = models.CellFormula
	g.Cells[addr] = cell

	cell.Value = e.evaluate(text, addr, g)
	g.Cells[addr] = cell
}

// applyOptions applies overrides and removes the cell if it ended up empty.
func (e *Engine) applyOptions(g *models.Grid, addr models.Address, o WriteOptions) {
	cell := g.Cells[addr]
	if o.Style != nil {
		var base models.CellStyle
		if cell.Style != nil {
			base = *cell.Style
		}
		merged := base.Merge(*o.Style)
		cell.Style = &merged
	}
	if o.Locked != nil {
		cell.Locked = *o.Locked
	}
	if o.Comment != nil {
		cell.Comment = *o.Comment
	}
	if cell.IsEmpty() {
		delete(g.Cells, addr)
		return
	}
	g.Cells[addr] = cell
}

func (e *Engine) pushHistory(cell *models.Cell) {
	cell.PushHistory(models.HistoryEntry{
		Value:     cell.Value,
		Timestamp: e.opts.clock().Now(),
	}, e.opts.CellHistoryLimit())
}

// Clear removes every cell in the rectangle from start to end. An empty end
// clears the single start cell.
func (e *Engine) Clear(start string, end ...string) error {
	var endRef string
	if len(end) > 0 {
		endRef = end[0]
	}
	rect, err := parser.RangeBetween(start, endRef)
	if err != nil {
		return err
	}
	if err := e.resolveRect(rect); err != nil {
		return err
	}
	return e.mutate("clear", func(g *models.Grid) error {
		for a := range g.Cells {
			if rect.Contains(a) {
				delete(g.Cells, a)
			}
		}
		return nil
	})
}

// Style merges fragment into the style of ref. Styling an absent address
// creates a style-only cell.
func (e *Engine) Style(ref string, fragment models.CellStyle) error {
	addr, err := e.resolve(ref)
	if err != nil {
		return err
	}
	return e.mutate("style", func(g *models.Grid) error {
		cell, ok := g.Cells[addr]
		if !ok {
			cell.Type = models.CellText
		}
		var base models.CellStyle
		if cell.Style != nil {
			base = *cell.Style
		}
		merged := base.Merge(fragment)
		cell.Style = &merged
		g.Cells[addr] = cell
		return nil
	})
}

// Recalculate re-evaluates every formula cell in row-major order.
func (e *Engine) Recalculate() error {
	return e.mutate("recalculate", func(g *models.Grid) error {
		var addrs []models.Address
		for a, c := range g.Cells {
			if c.Formula != "" {
				addrs = append(addrs, a)
			}
		}
		models.SortAddresses(addrs)
		for _, a := range addrs {
			cell := g.Cells[a]
			cell.Value = e.evaluate(cell.Formula, a, g)
			g.Cells[a] = cell
		}
		return nil
	})
}

// Copy places deep copies of the present cells of rangeText on the clipboard.
func (e *Engine) Copy(rangeText string) error {
	rect, err := parser.ParseRange(rangeText)
	if err != nil {
		return err
	}
	if err := e.resolveRect(rect); err != nil {
		return err
	}
	return e.clipboard.Copy(rect.Addresses(), e.grid)
}

// Paste writes the clipboard so that its anchor lands on ref. Formulas are
// pasted verbatim. If any destination falls outside the grid nothing is pasted.
func (e *Engine) Paste(ref string) error {
	addr, err := e.resolve(ref)
	if err != nil {
		return err
	}
	if e.clipboard.Len() == 0 {
		return nil
	}
	cells, err := e.clipboard.Paste(addr)
	if err != nil {
		return err
	}
	if len(cells) < e.clipboard.Len() {
		return fmt.Errorf("%w: paste at %s", ErrOutOfBounds, ref)
	}
	for a := range cells {
		if !e.grid.InBounds(a) {
			return fmt.Errorf("%w: paste at %s reaches %s", ErrOutOfBounds, ref, a)
		}
	}
	return e.mutate("paste", func(g *models.Grid) error {
		for a, c := range cells {
			g.Cells[a] = c
		}
		return nil
	})
}

// AddConditionalFormat appends a rule.
func (e *Engine) AddConditionalFormat(rule models.ConditionalFormat) error {
	if !rule.Condition.Valid() {
		return fmt.Errorf("%w: unknown condition %q", ErrInvalidArgument, rule.Condition)
	}
	rect, err := parser.ParseRange(rule.Range)
	if err != nil {
		return err
	}
	if err := e.resolveRect(rect); err != nil {
		return err
	}
	return e.mutate("addConditionalFormat", func(g *models.Grid) error {
		g.ConditionalFormats = append(g.ConditionalFormats, rule)
		return nil
	})
}

// RemoveConditionalFormat deletes the rule at index i.
func (e *Engine) RemoveConditionalFormat(i int) error {
	if i < 0 || i >= len(e.grid.ConditionalFormats) {
		return fmt.Errorf("%w: no conditional format at index %d", ErrInvalidArgument, i)
	}
	return e.mutate("removeConditionalFormat", func(g *models.Grid) error {
		g.ConditionalFormats = append(g.ConditionalFormats[:i], g.ConditionalFormats[i+1:]...)
		return nil
	})
}

// inferValue derives the stored value and type from a written value.
func inferValue(value any) (any, models.CellType) {
	switch v := value.(type) {
	case nil:
		return nil, models.CellText
	case bool:
		return v, models.CellBoolean
	case float64:
		return v, models.CellNumber
	case float32:
		return float64(v), models.CellNumber
	case int:
		return float64(v), models.CellNumber
	case int64:
		return float64(v), models.CellNumber
	case models.Hyperlink:
		return v, models.CellLink
	case string:
		return inferString(v)
	}
	return fmt.Sprint(value), models.CellText
}

func inferString(s string) (any, models.CellType) {
	trimmed := strings.TrimSpace(s)
	switch {
	case trimmed == "":
		return s, models.CellText
	case strings.HasPrefix(trimmed, "http"):
		return s, models.CellLink
	case isISODate(trimmed):
		return s, models.CellDate
	case strings.HasPrefix(trimmed, "$"):
		if f, ok := parseNumber(strings.ReplaceAll(trimmed[1:], ",", "")); ok {
			return f, models.CellCurrency
		}
	case strings.HasSuffix(trimmed, "%"):
		if f, ok := parseNumber(strings.TrimSpace(trimmed[:len(trimmed)-1])); ok {
			return f / 100, models.CellPercentage
		}
	}
	if f, ok := parseNumber(trimmed); ok {
		return f, models.CellNumber
	}
	return s, models.CellText
}

// parseNumber accepts finite decimal numbers only, so "NaN" and "Inf" stay text.
func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// isISODate reports whether s starts with a YYYY-MM-DD date.
func isISODate(s string) bool {
	if len(s) < 10 {
		return false
	}
	_, err := time.Parse("2006-01-02", s[:10])
	return err == nil
}
