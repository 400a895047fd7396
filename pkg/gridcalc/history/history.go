// Package history keeps bounded undo/redo stacks of grid snapshots.
package history

import (
	"errors"
	"time"

	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
)

// DefaultLimit is the number of undo snapshots kept when no limit is given.
const DefaultLimit = 20

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// entry wraps a snapshot with metadata.
type entry struct {
	grid      *models.Grid
	label     string
	timestamp time.Time
}

// History manages undo/redo snapshots for a grid. Snapshots are shared, never
// mutated: callers must treat recorded grids as immutable.
type History struct {
	past   []entry
	future []entry

	limit int
}

// New creates a history keeping at most limit undo snapshots.
func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit}
}

// Record pushes the pre-mutation grid onto the undo stack.
// Clears the redo stack.
func (h *History) Record(g *models.Grid, label string) {
	h.past = append(h.past, entry{grid: g, label: label, timestamp: time.Now()})
	h.future = nil

	// Enforce max entries
	if len(h.past) > h.limit {
		excess := len(h.past) - h.limit
		h.past = append([]entry(nil), h.past[excess:]...)
	}
}

// Undo pops the most recent snapshot and pushes current onto the redo stack.
func (h *History) Undo(current *models.Grid) (*models.Grid, error) {
	if len(h.past) == 0 {
		return nil, ErrNothingToUndo
	}
	e := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, entry{grid: current, label: e.label, timestamp: time.Now()})
	return e.grid, nil
}

// Redo is the inverse of Undo.
func (h *History) Redo(current *models.Grid) (*models.Grid, error) {
	if len(h.future) == 0 {
		return nil, ErrNothingToRedo
	}
	e := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, entry{grid: current, label: e.label, timestamp: time.Now()})
	return e.grid, nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	return len(h.past) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	return len(h.future) > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	return len(h.past)
}

// RedoCount returns the number of redo operations available.
func (h *History) RedoCount() int {
	return len(h.future)
}

// UndoLabel returns the label of the mutation Undo would revert, or "".
func (h *History) UndoLabel() string {
	if len(h.past) == 0 {
		return ""
	}
	return h.past[len(h.past)-1].label
}

// Clear drops both stacks.
func (h *History) Clear() {
	h.past = nil
	h.future = nil
}
