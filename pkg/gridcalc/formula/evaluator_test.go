package formula

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/parser"
)

func addr(t *testing.T, s string) models.Address {
	t.Helper()
	a, err := parser.ParseAddress(s)
	require.NoError(t, err)
	return a
}

func gridWith(t *testing.T, cells map[string]models.Cell) *models.Grid {
	t.Helper()
	g := models.NewGrid(26, 100)
	for ref, c := range cells {
		g.Cells[addr(t, ref)] = c
	}
	return g
}

func num(v float64) models.Cell { return models.Cell{Value: v, Type: models.CellNumber} }

func text(s string) models.Cell { return models.Cell{Value: s, Type: models.CellText} }

func formulaCell(f string) models.Cell { return models.Cell{Formula: f, Type: models.CellFormula} }

func TestEvaluateExpressions(t *testing.T) {
	ev := NewEvaluator()
	g := models.NewGrid(26, 100)
	self := models.Address{Col: 0, Row: 1}

	tests := []struct {
		formula  string
		expected any
	}{
		{"hello", "hello"},
		{"=", ""},
		{"=1+2*3", 7.0},
		{"=(1+2)*3", 9.0},
		{"=2^3^2", 512.0},
		{"=-2^2", 4.0},
		{"=10-4-3", 3.0},
		{"=10%", 0.1},
		{"=7/2", 3.5},
		{`="a"&"b"&1`, "ab1"},
		{"=1<2", true},
		{"=2<=1", false},
		{"=1<>1", false},
		{`="abc"="ABC"`, true},
		{"=TRUE", true},
		{"=1/0", DivZero},
		{"=0/0", NumError},
		{"=SQRT(-1)", NumError},
		{"=1+", ErrorValue},
		{"=(1+2", ErrorValue},
		{"=1+2)", ErrorValue},
		{"=FOO(1)", ErrorValue},
		{"=foo", ErrorValue},
		{"=sum(1,2)", 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			res := ev.Evaluate(tt.formula, self, g)
			assert.Equal(t, tt.expected, res.Value)
			assert.False(t, res.Circular)
		})
	}
}

func TestEvaluateReferences(t *testing.T) {
	ev := NewEvaluator()
	g := gridWith(t, map[string]models.Cell{
		"A1": num(10),
		"B1": num(20),
		"A2": text("abc"),
		"B2": formulaCell("=A1*2"),
	})
	self := addr(t, "D1")

	tests := []struct {
		formula  string
		expected any
	}{
		{"=A1+B1", 30.0},
		{"=a1+b1", 30.0},
		{"=$A$1+B$1", 30.0},
		{"=Z99+1", 1.0},
		{"=A2*2", 0.0},
		{`=A2&"!"`, "abc!"},
		{"=B2+1", 21.0},
		{"=A1:B1+1", ErrorValue},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			assert.Equal(t, tt.expected, ev.Evaluate(tt.formula, self, g).Value)
		})
	}
}

func TestEvaluateSelfReference(t *testing.T) {
	ev := NewEvaluator()
	g := gridWith(t, map[string]models.Cell{"A1": num(5)})

	res := ev.Evaluate("=C1+A1+1", addr(t, "C1"), g)
	assert.Equal(t, 6.0, res.Value)
	assert.True(t, res.Circular)
	assert.Equal(t, []models.Address{addr(t, "C1")}, res.Cycle)
}

func TestEvaluateMutualRecursion(t *testing.T) {
	ev := NewEvaluator()
	g := gridWith(t, map[string]models.Cell{
		"A1": formulaCell("=B1+1"),
		"B1": formulaCell("=A1+1"),
	})

	res := ev.Evaluate("=B1+1", addr(t, "A1"), g)
	assert.Equal(t, 2.0, res.Value)
	assert.True(t, res.Circular)
}

func TestEvaluateSharedDependencyIsNotCircular(t *testing.T) {
	ev := NewEvaluator()
	g := gridWith(t, map[string]models.Cell{
		"A1": num(1),
		"B1": formulaCell("=A1+1"),
		"C1": formulaCell("=A1+B1"),
	})

	res := ev.Evaluate("=B1+C1", addr(t, "D1"), g)
	assert.Equal(t, 5.0, res.Value)
	assert.False(t, res.Circular)
}

func TestRangeValuesSkipsAbsentCells(t *testing.T) {
	ev := NewEvaluator()
	g := gridWith(t, map[string]models.Cell{
		"A1": num(1),
		"A3": formulaCell("=A1*3"),
		"B2": text("x"),
		"B3": {Style: &models.CellStyle{Color: "#FF0000"}},
	})

	values, err := ev.RangeValues("B3:A1", g)
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, "x", 3.0}, values)

	_, err = ev.RangeValues("A1:", g)
	assert.ErrorIs(t, err, parser.ErrInvalidRange)
}

func TestNonFiniteTextIsNotNumeric(t *testing.T) {
	ev := NewEvaluator()
	g := gridWith(t, map[string]models.Cell{
		"C2": text("nan"),
		"C3": text("Infinity"),
		"C4": text("-Inf"),
	})
	self := models.Address{Col: 1, Row: 2}

	tests := []struct {
		formula  string
		expected any
	}{
		{"=SUM(C2)+1", 1.0},
		{"=C3+1", 1.0},
		{"=SUM(C2:C4)", 0.0},
		{"=MAX(C2:C4)", 0.0},
		{"=C2=0", false},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			assert.Equal(t, tt.expected, ev.Evaluate(tt.formula, self, g).Value)
		})
	}
}

func TestCellValue(t *testing.T) {
	ev := NewEvaluator()
	g := gridWith(t, map[string]models.Cell{
		"A1": num(4),
		"A2": {Value: 0.0, Formula: "=A1*2", Type: models.CellFormula},
	})

	v, ok := ev.CellValue(addr(t, "A2"), g)
	assert.True(t, ok)
	assert.Equal(t, 8.0, v)

	_, ok = ev.CellValue(addr(t, "Z1"), g)
	assert.False(t, ok)
}

func TestClockFunctions(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)
	ev := NewEvaluator(WithClock(FixedClock(now)))
	g := models.NewGrid(26, 100)

	assert.Equal(t, "2024-03-09", ev.Evaluate("=TODAY()", models.Address{Row: 1}, g).Value)
	assert.Equal(t, "2024-03-09T14:30:00Z", ev.Evaluate("=NOW()", models.Address{Row: 1}, g).Value)
}

func TestWithFunction(t *testing.T) {
	ev := NewEvaluator(WithFunction("double", func(call *Call) (any, error) {
		n, err := call.Number(0)
		return n * 2, err
	}))

	assert.True(t, ev.HasFunction("DOUBLE"))
	assert.Equal(t, 14.0, ev.Evaluate("=DOUBLE(7)", models.Address{Row: 1}, models.NewGrid(1, 1)).Value)
}
