package formula

import (
	"fmt"
	"time"
)

// Func implements a spreadsheet function.
type Func func(call *Call) (any, error)

// Call gives a function lazy access to its arguments.
type Call struct {
	ctx  *evalContext
	args []node
}

// Len returns the number of arguments, including omitted ones.
func (c *Call) Len() int {
	return len(c.args)
}

// Arg evaluates argument i. Missing arguments evaluate to nil.
// Ranges and array literals are returned as a list value.
func (c *Call) Arg(i int) (any, error) {
	if i < 0 || i >= len(c.args) {
		return nil, nil
	}
	return c.args[i].eval(c.ctx)
}

// Scalar evaluates argument i and rejects ranges.
func (c *Call) Scalar(i int) (any, error) {
	if i < 0 || i >= len(c.args) {
		return nil, nil
	}
	return scalar(c.args[i], c.ctx)
}

// Number evaluates argument i as a number.
func (c *Call) Number(i int) (float64, error) {
	v, err := c.Scalar(i)
	if err != nil {
		return 0, err
	}
	return toNumber(v), nil
}

// Text evaluates argument i as text.
func (c *Call) Text(i int) (string, error) {
	v, err := c.Scalar(i)
	if err != nil {
		return "", err
	}
	return toString(v), nil
}

// Values evaluates arguments from index start on and flattens ranges.
func (c *Call) Values(start int) ([]any, error) {
	var out []any
	for i := start; i < len(c.args); i++ {
		v, err := c.Arg(i)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return flatten(out), nil
}

// Now returns the evaluator's clock reading.
func (c *Call) Now() time.Time {
	return c.ctx.ev.clock.Now()
}

// requireArgs fails when the call has fewer than min or more than max arguments.
// A negative max means unbounded.
func (c *Call) requireArgs(name string, min, max int) error {
	if len(c.args) < min || (max >= 0 && len(c.args) > max) {
		return fmt.Errorf("%s: wrong number of arguments (%d)", name, len(c.args))
	}
	return nil
}
