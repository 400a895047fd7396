package gridcalc

import (
	"fmt"
	"log/slog"

	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/clipboard"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/condfmt"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/formula"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/history"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/parser"
)

// Engine owns one grid and the undo, clipboard and cursor state around it.
//
// Published grids are never modified: every mutation works on a clone and
// swaps it in, so a *models.Grid returned by State stays valid as a snapshot.
// An Engine is not safe for concurrent use.
type Engine struct {
	opts      Options
	logger    *slog.Logger
	eval      *formula.Evaluator
	grid      *models.Grid
	history   *history.History
	clipboard *clipboard.Clipboard

	active    models.Address
	hasActive bool
}

// New creates an Engine with an empty grid.
func New(opts Options) *Engine {
	cols, rows := opts.GridSize()
	logger := opts.logger().With(slog.String("component", "gridcalc"))

	evalOpts := []formula.Option{formula.WithClock(opts.clock())}
	if len(opts.Functions) > 0 {
		builtin := formula.NewEvaluator()
		for name, fn := range opts.Functions {
			if builtin.HasFunction(name) {
				logger.Warn("custom function replaces built-in", slog.String("function", name))
			}
			evalOpts = append(evalOpts, formula.WithFunction(name, fn))
		}
	}

	return &Engine{
		opts:      opts,
		logger:    logger,
		eval:      formula.NewEvaluator(evalOpts...),
		grid:      models.NewGrid(cols, rows),
		history:   history.New(opts.UndoDepth()),
		clipboard: clipboard.New(),
	}
}

// State returns the current grid snapshot. Callers must not modify it.
func (e *Engine) State() *models.Grid {
	return e.grid
}

// Get returns the cell at ref and whether it is present.
func (e *Engine) Get(ref string) (models.Cell, bool, error) {
	addr, err := e.resolve(ref)
	if err != nil {
		return models.Cell{}, false, err
	}
	c, ok := e.grid.Cells[addr]
	return c, ok, nil
}

// Reset replaces the grid with an empty one and drops undo, redo, clipboard
// and cursor state.
func (e *Engine) Reset() {
	cols, rows := e.opts.GridSize()
	e.grid = models.NewGrid(cols, rows)
	e.history.Clear()
	e.clipboard.Clear()
	e.active, e.hasActive = models.Address{}, false
	e.logger.Debug("grid reset")
}

// Undo restores the snapshot taken before the last mutation. It returns false
// when there is nothing to undo.
func (e *Engine) Undo() bool {
	label := e.history.UndoLabel()
	g, err := e.history.Undo(e.grid)
	if err != nil {
		return false
	}
	e.grid = g
	e.logger.Debug("undo", slog.String("mutation", label), slog.Int("remaining", e.history.UndoCount()))
	return true
}

// Redo re-applies the last undone mutation. It returns false when there is
// nothing to redo.
func (e *Engine) Redo() bool {
	g, err := e.history.Redo(e.grid)
	if err != nil {
		return false
	}
	e.grid = g
	e.logger.Debug("redo", slog.String("mutation", e.history.UndoLabel()), slog.Int("remaining", e.history.RedoCount()))
	return true
}

// CanUndo reports whether Undo would change the grid.
func (e *Engine) CanUndo() bool { return e.history.CanUndo() }

// CanRedo reports whether Redo would change the grid.
func (e *Engine) CanRedo() bool { return e.history.CanRedo() }

// HistoryState describes the undo and redo stacks.
type HistoryState struct {
	// Undo is the number of mutations that can be undone.
	Undo int `json:"undo"`
	// Redo is the number of undone mutations that can be redone.
	Redo int `json:"redo"`
	// Next names the mutation Undo would revert, e.g. "write". Empty when Undo is 0.
	Next string `json:"next,omitempty"`
}

// History reports the depth of the undo and redo stacks.
func (e *Engine) History() HistoryState {
	return HistoryState{
		Undo: e.history.UndoCount(),
		Redo: e.history.RedoCount(),
		Next: e.history.UndoLabel(),
	}
}

// SelectCell moves the cursor. The cursor is not part of the grid and is not undoable.
func (e *Engine) SelectCell(ref string) error {
	addr, err := e.resolve(ref)
	if err != nil {
		return err
	}
	e.active, e.hasActive = addr, true
	return nil
}

// ActiveCell returns the cursor position, if one was selected.
func (e *Engine) ActiveCell() (models.Address, bool) {
	return e.active, e.hasActive
}

// ComputeStyles evaluates the conditional formats of the current grid.
func (e *Engine) ComputeStyles() map[models.Address]models.CellStyle {
	return condfmt.ComputeStyles(e.grid, e.eval, e.logger)
}

// resolve parses ref and checks it against the grid bounds.
func (e *Engine) resolve(ref string) (models.Address, error) {
	addr, err := parser.ParseAddress(ref)
	if err != nil {
		return models.Address{}, err
	}
	if !e.grid.InBounds(addr) {
		return models.Address{}, fmt.Errorf("%w: %s (grid is %dx%d)", ErrOutOfBounds, ref, e.grid.Columns, e.grid.Rows)
	}
	return addr, nil
}

// resolveRect checks both corners of a rectangle against the grid bounds.
func (e *Engine) resolveRect(r models.Rect) error {
	if !e.grid.InBounds(r.Start()) || !e.grid.InBounds(r.End()) {
		return fmt.Errorf("%w: %s (grid is %dx%d)", ErrOutOfBounds, r, e.grid.Columns, e.grid.Rows)
	}
	return nil
}

// mutate applies fn to a clone of the grid. On success the previous grid is
// recorded for undo and the clone becomes current; on failure nothing changes.
func (e *Engine) mutate(label string, fn func(g *models.Grid) error) error {
	next, err := e.grid.Clone()
	if err != nil {
		return err
	}
	if err := fn(next); err != nil {
		return err
	}
	e.history.Record(e.grid, label)
	e.grid = next
	return nil
}

// evaluate computes a formula for addr on g and logs circular references.
func (e *Engine) evaluate(text string, addr models.Address, g *models.Grid) any {
	res := e.eval.Evaluate(text, addr, g)
	if res.Circular {
		cycle := make([]string, len(res.Cycle))
		for i, a := range res.Cycle {
			cycle[i] = a.String()
		}
		e.logger.Warn("circular reference replaced with 0",
			slog.String("cell", addr.String()),
			slog.String("formula", text),
			slog.Any("references", cycle))
	}
	return res.Value
}
