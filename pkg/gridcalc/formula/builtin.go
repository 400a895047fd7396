package formula

import (
	"math"
	"strings"
	"time"

	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
)

// builtins returns the default function table keyed by upper-case name.
func builtins() map[string]Func {
	return map[string]Func{
		"SUM":         fnSum,
		"AVERAGE":     fnAverage,
		"COUNT":       fnCount,
		"MAX":         fnMax,
		"MIN":         fnMin,
		"IF":          fnIf,
		"AND":         fnAnd,
		"OR":          fnOr,
		"NOT":         fnNot,
		"CONCATENATE": fnConcatenate,
		"TODAY":       fnToday,
		"NOW":         fnNow,
		"LEN":         textFunc("LEN", func(s string) any { return float64(len([]rune(s))) }),
		"UPPER":       textFunc("UPPER", func(s string) any { return strings.ToUpper(s) }),
		"LOWER":       textFunc("LOWER", func(s string) any { return strings.ToLower(s) }),
		"TRIM":        textFunc("TRIM", func(s string) any { return strings.Join(strings.Fields(s), " ") }),
		"ROUND":       fnRound,
		"ABS":         mathFunc("ABS", math.Abs),
		"SQRT":        mathFunc("SQRT", math.Sqrt),
		"POWER":       fnPower,
		"MOD":         fnMod,
		"NPV":         fnNPV,
		"IRR":         fnIRR,
		"PMT":         fnPMT,
		"PV":          fnPV,
		"FV":          fnFV,
		"CAGR":        fnCAGR,
		"MOIC":        fnMOIC,
		"HYPERLINK":   fnHyperlink,
	}
}

func fnSum(call *Call) (any, error) {
	values, err := call.Values(0)
	if err != nil {
		return nil, err
	}
	sum := 0.0
	for _, v := range values {
		sum += toNumber(v)
	}
	return sum, nil
}

// fnAverage divides by the number of present values, numeric or not.
func fnAverage(call *Call) (any, error) {
	values, err := call.Values(0)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return DivZero, nil
	}
	sum := 0.0
	for _, v := range values {
		sum += toNumber(v)
	}
	return sum / float64(len(values)), nil
}

func fnCount(call *Call) (any, error) {
	values, err := call.Values(0)
	if err != nil {
		return nil, err
	}
	count := 0
	for _, v := range values {
		if v == nil || v == "" {
			continue
		}
		count++
	}
	return float64(count), nil
}

func fnMax(call *Call) (any, error) {
	return extreme(call, func(a, b float64) bool { return a > b })
}

func fnMin(call *Call) (any, error) {
	return extreme(call, func(a, b float64) bool { return a < b })
}

// extreme returns 0 when no numeric value is present.
func extreme(call *Call, better func(a, b float64) bool) (any, error) {
	values, err := call.Values(0)
	if err != nil {
		return nil, err
	}
	found := false
	best := 0.0
	for _, v := range values {
		if !isNumeric(v) {
			continue
		}
		n := toNumber(v)
		if !found || better(n, best) {
			best = n
			found = true
		}
	}
	return best, nil
}

// fnIf evaluates only the selected branch.
func fnIf(call *Call) (any, error) {
	if err := call.requireArgs("IF", 1, 3); err != nil {
		return nil, err
	}
	cond, err := call.Scalar(0)
	if err != nil {
		return nil, err
	}
	if isTruthy(cond) {
		if call.Len() < 2 {
			return true, nil
		}
		return call.Arg(1)
	}
	if call.Len() < 3 {
		return false, nil
	}
	return call.Arg(2)
}

func fnAnd(call *Call) (any, error) {
	values, err := call.Values(0)
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		if !isTruthy(v) {
			return false, nil
		}
	}
	return len(values) > 0, nil
}

func fnOr(call *Call) (any, error) {
	values, err := call.Values(0)
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		if isTruthy(v) {
			return true, nil
		}
	}
	return false, nil
}

func fnNot(call *Call) (any, error) {
	if err := call.requireArgs("NOT", 1, 1); err != nil {
		return nil, err
	}
	v, err := call.Scalar(0)
	if err != nil {
		return nil, err
	}
	return !isTruthy(v), nil
}

func fnConcatenate(call *Call) (any, error) {
	values, err := call.Values(0)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	for _, v := range values {
		b.WriteString(toString(v))
	}
	return b.String(), nil
}

func fnToday(call *Call) (any, error) {
	return call.Now().Format("2006-01-02"), nil
}

func fnNow(call *Call) (any, error) {
	return call.Now().Format(time.RFC3339), nil
}

func textFunc(name string, fn func(string) any) Func {
	return func(call *Call) (any, error) {
		if err := call.requireArgs(name, 1, 1); err != nil {
			return nil, err
		}
		s, err := call.Text(0)
		if err != nil {
			return nil, err
		}
		return fn(s), nil
	}
}

func mathFunc(name string, fn func(float64) float64) Func {
	return func(call *Call) (any, error) {
		if err := call.requireArgs(name, 1, 1); err != nil {
			return nil, err
		}
		x, err := call.Number(0)
		if err != nil {
			return nil, err
		}
		return fn(x), nil
	}
}

// fnRound rounds half up: ROUND(2.5,0) = 3, ROUND(-2.5,0) = -2.
func fnRound(call *Call) (any, error) {
	if err := call.requireArgs("ROUND", 1, 2); err != nil {
		return nil, err
	}
	x, err := call.Number(0)
	if err != nil {
		return nil, err
	}
	digits, err := call.Number(1)
	if err != nil {
		return nil, err
	}
	m := math.Pow(10, math.Trunc(digits))
	return math.Floor(x*m+0.5) / m, nil
}

func fnPower(call *Call) (any, error) {
	if err := call.requireArgs("POWER", 2, 2); err != nil {
		return nil, err
	}
	x, err := call.Number(0)
	if err != nil {
		return nil, err
	}
	y, err := call.Number(1)
	if err != nil {
		return nil, err
	}
	return math.Pow(x, y), nil
}

// fnMod takes the sign of the divisor; a zero divisor yields #DIV/0!.
func fnMod(call *Call) (any, error) {
	if err := call.requireArgs("MOD", 2, 2); err != nil {
		return nil, err
	}
	x, err := call.Number(0)
	if err != nil {
		return nil, err
	}
	y, err := call.Number(1)
	if err != nil {
		return nil, err
	}
	if y == 0 {
		return math.Inf(1), nil
	}
	return x - y*math.Floor(x/y), nil
}

func fnHyperlink(call *Call) (any, error) {
	if err := call.requireArgs("HYPERLINK", 1, 2); err != nil {
		return nil, err
	}
	url, err := call.Text(0)
	if err != nil {
		return nil, err
	}
	text := url
	if call.Len() > 1 {
		if text, err = call.Text(1); err != nil {
			return nil, err
		}
	}
	return models.Hyperlink{URL: url, Text: text}, nil
}
