// Package formula parses and evaluates cell formulas against a grid.
package formula

import (
	"fmt"
	"math"
	"strings"

	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/parser"
)

// Result is the outcome of evaluating a formula.
type Result struct {
	// Value is nil, float64, string, bool, models.Hyperlink or an error sentinel.
	Value any
	// Circular is set when a reference back to an in-progress cell was replaced by 0.
	Circular bool
	// Cycle lists the addresses whose references were replaced, in the order found.
	Cycle []models.Address
}

// Evaluator evaluates formulas. It holds no per-grid state and may be reused.
type Evaluator struct {
	clock Clock
	funcs map[string]Func
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithClock sets the clock used by TODAY and NOW.
func WithClock(c Clock) Option {
	return func(e *Evaluator) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithFunction registers or replaces a function under an upper-cased name.
func WithFunction(name string, fn Func) Option {
	return func(e *Evaluator) {
		e.funcs[strings.ToUpper(name)] = fn
	}
}

// NewEvaluator creates an Evaluator with the built-in function library.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		clock: WallClock{},
		funcs: builtins(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HasFunction reports whether name is a known function.
func (e *Evaluator) HasFunction(name string) bool {
	_, ok := e.funcs[strings.ToUpper(name)]
	return ok
}

// Evaluate evaluates text in the context of the cell self.
//
// Text without a leading "=" is returned as-is. Faults never surface as Go
// errors: they are reported as #ERROR!, #DIV/0! or #NUM! values.
func (e *Evaluator) Evaluate(text string, self models.Address, g *models.Grid) Result {
	c := e.newContext(g)
	c.inProgress[self] = true
	v := c.evalText(text)
	return Result{Value: v, Circular: len(c.cycle) > 0, Cycle: c.cycle}
}

// CellValue returns the evaluated value of the cell at addr and whether it holds
// a value or formula.
// Formula cells are evaluated afresh rather than read from their cached value.
func (e *Evaluator) CellValue(addr models.Address, g *models.Grid) (any, bool) {
	cell, ok := g.Cells[addr]
	if !ok || cell.IsEmpty() {
		return nil, false
	}
	if cell.Formula == "" {
		return cell.Value, true
	}
	return e.Evaluate(cell.Formula, addr, g).Value, true
}

// RangeValues resolves rangeText and returns the evaluated value of every
// present cell in row-major order. Absent addresses are skipped.
func (e *Evaluator) RangeValues(rangeText string, g *models.Grid) ([]any, error) {
	rect, err := parser.ParseRange(rangeText)
	if err != nil {
		return nil, err
	}
	c := e.newContext(g)
	return c.rangeValues(rect), nil
}

// evalContext is the state of one top-level evaluation.
type evalContext struct {
	ev         *Evaluator
	grid       *models.Grid
	inProgress map[models.Address]bool
	cycle      []models.Address
}

func (e *Evaluator) newContext(g *models.Grid) *evalContext {
	return &evalContext{
		ev:         e,
		grid:       g,
		inProgress: make(map[models.Address]bool),
	}
}

// evalText evaluates a raw cell text and converts faults to sentinels.
func (c *evalContext) evalText(text string) any {
	if !strings.HasPrefix(text, "=") {
		return text
	}
	body := strings.TrimSpace(text[1:])
	if body == "" {
		return ""
	}

	n, err := parse(body)
	if err != nil {
		return ErrorValue
	}
	v, err := n.eval(c)
	if err != nil {
		return ErrorValue
	}
	return finalize(v)
}

// finalize maps non-finite numbers to sentinels and rejects bare ranges.
func finalize(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsInf(x, 0) {
			return DivZero
		}
		if math.IsNaN(x) {
			return NumError
		}
	case rangeValue:
		return ErrorValue
	}
	return v
}

// cellValue resolves a single reference. In-progress addresses yield 0.
func (c *evalContext) cellValue(addr models.Address) (any, bool) {
	if c.inProgress[addr] {
		c.cycle = append(c.cycle, addr)
		return 0.0, true
	}
	// Style-only cells hold no value and read as absent.
	cell, ok := c.grid.Cells[addr]
	if !ok || cell.IsEmpty() {
		return nil, false
	}
	if cell.Formula == "" {
		return cell.Value, true
	}

	c.inProgress[addr] = true
	v := c.evalText(cell.Formula)
	delete(c.inProgress, addr)
	return v, true
}

func (c *evalContext) rangeValues(rect models.Rect) rangeValue {
	out := rangeValue{}
	for _, addr := range rect.Addresses() {
		if v, ok := c.cellValue(addr); ok {
			out = append(out, v)
		}
	}
	return out
}

func (n *numberNode) eval(*evalContext) (any, error) { return n.value, nil }

func (n *stringNode) eval(*evalContext) (any, error) { return n.value, nil }

func (n *boolNode) eval(*evalContext) (any, error) { return n.value, nil }

func (emptyNode) eval(*evalContext) (any, error) { return nil, nil }

// Missing references read as 0.
func (n *refNode) eval(c *evalContext) (any, error) {
	v, ok := c.cellValue(n.addr)
	if !ok {
		return 0.0, nil
	}
	return v, nil
}

func (n *rangeNode) eval(c *evalContext) (any, error) {
	return c.rangeValues(n.rect), nil
}

func (n *arrayNode) eval(c *evalContext) (any, error) {
	out := rangeValue{}
	for _, item := range n.items {
		v, err := item.eval(c)
		if err != nil {
			return nil, err
		}
		if r, ok := v.(rangeValue); ok {
			out = append(out, r...)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (n *unaryNode) eval(c *evalContext) (any, error) {
	v, err := scalar(n.operand, c)
	if err != nil {
		return nil, err
	}
	switch n.op {
	case "-":
		return -toNumber(v), nil
	case "+":
		return toNumber(v), nil
	case "%":
		return toNumber(v) / 100, nil
	}
	return nil, fmt.Errorf("unknown unary operator %q", n.op)
}

func (n *binaryNode) eval(c *evalContext) (any, error) {
	left, err := scalar(n.left, c)
	if err != nil {
		return nil, err
	}
	right, err := scalar(n.right, c)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case "+":
		return toNumber(left) + toNumber(right), nil
	case "-":
		return toNumber(left) - toNumber(right), nil
	case "*":
		return toNumber(left) * toNumber(right), nil
	case "/":
		return toNumber(left) / toNumber(right), nil
	case "^":
		return math.Pow(toNumber(left), toNumber(right)), nil
	case "&":
		return toString(left) + toString(right), nil
	case "=":
		return compareValues(left, right) == 0, nil
	case "<>":
		return compareValues(left, right) != 0, nil
	case "<":
		return compareValues(left, right) < 0, nil
	case "<=":
		return compareValues(left, right) <= 0, nil
	case ">":
		return compareValues(left, right) > 0, nil
	case ">=":
		return compareValues(left, right) >= 0, nil
	}
	return nil, fmt.Errorf("unknown operator %q", n.op)
}

func (n *callNode) eval(c *evalContext) (any, error) {
	fn, ok := c.ev.funcs[n.name]
	if !ok {
		return nil, fmt.Errorf("unknown function %s", n.name)
	}
	return fn(&Call{ctx: c, args: n.args})
}

// scalar evaluates n and rejects range values in a scalar position.
func scalar(n node, c *evalContext) (any, error) {
	v, err := n.eval(c)
	if err != nil {
		return nil, err
	}
	if _, ok := v.(rangeValue); ok {
		return nil, fmt.Errorf("range used as a single value")
	}
	return v, nil
}
