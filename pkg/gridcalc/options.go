// Package gridcalc provides an in-memory spreadsheet grid engine.
package gridcalc

import (
	"log/slog"

	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/formula"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/history"
)

// Default grid dimensions and history bounds.
const (
	DefaultColumns      = 26
	DefaultRows         = 100
	DefaultHistoryLimit = 5
	DefaultUndoLimit    = history.DefaultLimit
)

// Options configures an Engine.
type Options struct {
	// Columns is the number of addressable columns.
	Columns int
	// Rows is the number of addressable rows.
	Rows int
	// HistoryLimit is the number of previous values kept per cell.
	HistoryLimit int
	// UndoLimit is the number of undo snapshots kept.
	UndoLimit int
	// Logger receives circular reference warnings and command traces.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
	// Clock drives TODAY, NOW and cell history timestamps.
	// If nil, the wall clock is used.
	Clock formula.Clock
	// Functions adds formula functions by name, replacing built-ins of the same name.
	Functions map[string]formula.Func
}

// DefaultOptions returns default engine options.
func DefaultOptions() Options {
	return Options{
		Columns:      DefaultColumns,
		Rows:         DefaultRows,
		HistoryLimit: DefaultHistoryLimit,
		UndoLimit:    DefaultUndoLimit,
	}
}

// GridSize returns the grid dimensions, falling back to defaults for unset values.
func (o Options) GridSize() (columns, rows int) {
	columns, rows = o.Columns, o.Rows
	if columns <= 0 {
		columns = DefaultColumns
	}
	if rows <= 0 {
		rows = DefaultRows
	}
	return columns, rows
}

// CellHistoryLimit returns the per-cell history bound.
func (o Options) CellHistoryLimit() int {
	if o.HistoryLimit <= 0 {
		return DefaultHistoryLimit
	}
	return o.HistoryLimit
}

// UndoDepth returns the undo stack bound.
func (o Options) UndoDepth() int {
	if o.UndoLimit <= 0 {
		return DefaultUndoLimit
	}
	return o.UndoLimit
}

func (o Options) clock() formula.Clock {
	if o.Clock == nil {
		return formula.WallClock{}
	}
	return o.Clock
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}
