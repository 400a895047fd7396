package formula

import (
	"math"
	"strconv"
	"strings"

	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
)

// Error sentinels returned as cell values.
const (
	ErrorValue = "#ERROR!"
	DivZero    = "#DIV/0!"
	NumError   = "#NUM!"
)

// IsSentinel reports whether v is one of the formula error sentinels.
func IsSentinel(v any) bool {
	s, ok := v.(string)
	return ok && (s == ErrorValue || s == DivZero || s == NumError)
}

// rangeValue carries the values of a range or array literal into a function.
type rangeValue []any

// toNumber coerces a value for arithmetic. Text that is not numeric counts as 0.
func toNumber(v any) float64 {
	n, _ := asNumber(v)
	return n
}

// asNumber converts v to a number and reports whether it was numeric.
func asNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case nil:
		return 0, true
	}
	return 0, false
}

// isNumeric reports whether v is a number or numeric text.
func isNumeric(v any) bool {
	switch v.(type) {
	case float64, int, int64:
		return true
	case string:
		_, ok := asNumber(v)
		return ok
	}
	return false
}

// toString renders a value for string contexts.
func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return FormatNumber(x)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case models.Hyperlink:
		if x.Text != "" {
			return x.Text
		}
		return x.URL
	case rangeValue:
		if len(x) == 0 {
			return ""
		}
		return toString(x[0])
	}
	return ""
}

// FormatNumber renders a float without trailing zeros.
func FormatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// isTruthy evaluates a value as a condition.
func isTruthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		if n, ok := asNumber(x); ok {
			return n != 0
		}
		return x != "" && !strings.EqualFold(x, "FALSE")
	case models.Hyperlink:
		return true
	}
	return false
}

// compareValues compares numerically when both sides are numeric, otherwise
// by case-insensitive text. It returns -1, 0 or 1.
func compareValues(a, b any) int {
	if isNumeric(a) || isNumber(a) {
		if isNumeric(b) || isNumber(b) {
			x, y := toNumber(a), toNumber(b)
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(strings.ToLower(toString(a)), strings.ToLower(toString(b)))
}

// isNumber covers values that coerce to numbers in comparisons but are not numeric text.
func isNumber(v any) bool {
	switch v.(type) {
	case bool, nil:
		return true
	}
	return false
}

// flatten expands range and array values into a single list.
func flatten(values []any) []any {
	var out []any
	for _, v := range values {
		if r, ok := v.(rangeValue); ok {
			out = append(out, flatten(r)...)
			continue
		}
		out = append(out, v)
	}
	return out
}
