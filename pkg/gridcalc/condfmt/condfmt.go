// Package condfmt evaluates conditional formatting rules against a grid.
package condfmt

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/parser"
)

// ValueSource yields the evaluated value of a cell.
type ValueSource interface {
	CellValue(addr models.Address, g *models.Grid) (any, bool)
}

// ComputeStyles returns the style override for every cell matched by a rule.
// Rules apply in order and later rules win on conflicting attributes. Rules
// with an unparsable range or unknown condition are skipped and logged.
func ComputeStyles(g *models.Grid, src ValueSource, logger *slog.Logger) map[models.Address]models.CellStyle {
	if logger == nil {
		logger = slog.Default()
	}
	out := make(map[models.Address]models.CellStyle)

	for i, rule := range g.ConditionalFormats {
		addrs, err := parser.ResolveRange(rule.Range)
		if err != nil {
			logger.Warn("skipping conditional format", slog.Int("rule", i), slog.String("range", rule.Range), slog.Any("error", err))
			continue
		}
		if !rule.Condition.Valid() {
			logger.Warn("skipping conditional format", slog.Int("rule", i), slog.String("condition", string(rule.Condition)))
			continue
		}

		values := make(map[models.Address]any, len(addrs))
		for _, a := range addrs {
			if v, ok := src.CellValue(a, g); ok {
				values[a] = v
			}
		}

		var counts map[string]int
		if rule.Condition == models.CondDuplicate || rule.Condition == models.CondUnique {
			counts = make(map[string]int, len(values))
			for _, v := range values {
				counts[key(v)]++
			}
		}

		for _, a := range addrs {
			v, ok := values[a]
			if !ok {
				continue
			}
			if matches(rule, v, counts) {
				out[a] = out[a].Merge(rule.Style)
			}
		}
	}
	return out
}

func matches(rule models.ConditionalFormat, v any, counts map[string]int) bool {
	if v == nil || v == "" {
		return false
	}
	switch rule.Condition {
	case models.CondEquals:
		return compare(v, rule.Value) == 0
	case models.CondGreater:
		return compare(v, rule.Value) > 0
	case models.CondLess:
		return compare(v, rule.Value) < 0
	case models.CondBetween:
		return compare(v, rule.Value) >= 0 && compare(v, rule.Value2) <= 0
	case models.CondContains:
		return strings.Contains(strings.ToLower(text(v)), strings.ToLower(text(rule.Value)))
	case models.CondDuplicate:
		return counts != nil && counts[key(v)] > 1
	case models.CondUnique:
		return counts != nil && counts[key(v)] == 1
	}
	return false
}

// compare orders numerically when both sides are numeric, else by text.
func compare(a, b any) int {
	x, okA := number(a)
	y, okB := number(b)
	if okA && okB {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	return strings.Compare(text(a), text(b))
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case models.Hyperlink:
		return x.Text
	}
	return ""
}

// key normalizes values so 1 and "1" count as the same entry.
func key(v any) string {
	if n, ok := number(v); ok {
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	return text(v)
}
