package formula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
)

func TestBuiltinFunctions(t *testing.T) {
	ev := NewEvaluator()
	g := gridWith(t, map[string]models.Cell{
		"A1": num(10),
		"A2": text("x"),
		"A3": num(-4),
		"B1": text("  Hello   World "),
		"C1": {Value: true, Type: models.CellBoolean},
	})
	self := addr(t, "H1")

	tests := []struct {
		formula  string
		expected any
	}{
		{"=SUM(D1:D10)", 0.0},
		{"=SUM(A1:A3)", 6.0},
		{"=SUM(A1,5,{1,2})", 18.0},
		{"=AVERAGE(D1:D10)", DivZero},
		{"=AVERAGE(A1:A2)", 5.0},
		{"=COUNT(A1:A10)", 3.0},
		{"=MAX(A1:A3)", 10.0},
		{"=MIN(A1:A3)", -4.0},
		{"=MAX(D1:D5)", 0.0},
		{"=MIN(A2)", 0.0},
		{"=IF(A1>5,\"big\",\"small\")", "big"},
		{"=IF(A1>50,\"big\",\"small\")", "small"},
		{"=IF(FALSE,1)", false},
		{"=IF(TRUE,1,1/0)", 1.0},
		{"=IF(C1,A1*2,0)", 20.0},
		{"=AND(TRUE,A1>1)", true},
		{"=OR(FALSE,A3>0)", false},
		{"=NOT(C1)", false},
		{"=CONCATENATE(\"a\",A1,\"-\",A2)", "a10-x"},
		{"=LEN(\"héllo\")", 5.0},
		{"=UPPER(A2)", "X"},
		{"=LOWER(\"ABC\")", "abc"},
		{"=TRIM(B1)", "Hello World"},
		{"=ROUND(2.5,0)", 3.0},
		{"=ROUND(-2.5,0)", -2.0},
		{"=ROUND(1.25,1)", 1.3},
		{"=ROUND(1234.5678,2)", 1234.57},
		{"=ROUND(7.6)", 8.0},
		{"=ABS(A3)", 4.0},
		{"=SQRT(16)", 4.0},
		{"=POWER(2,10)", 1024.0},
		{"=MOD(7,3)", 1.0},
		{"=MOD(-7,3)", 2.0},
		{"=MOD(1,0)", DivZero},
		{"=MOIC(300,100)", 3.0},
		{"=PMT(0,10,1000)", -100.0},
		{"=PV(0,10,100)", -1000.0},
		{"=FV(0,10,100,0)", -1000.0},
		{"=FV(0,10,100)", -1000.0},
		{"=UNKNOWN(1)", ErrorValue},
		{"=NOT(1,2)", ErrorValue},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			assert.Equal(t, tt.expected, ev.Evaluate(tt.formula, self, g).Value)
		})
	}
}

func TestHyperlink(t *testing.T) {
	ev := NewEvaluator()
	g := models.NewGrid(26, 100)

	res := ev.Evaluate(`=HYPERLINK("https://example.com","Example")`, models.Address{Row: 1}, g)
	assert.Equal(t, models.Hyperlink{URL: "https://example.com", Text: "Example"}, res.Value)

	res = ev.Evaluate(`=HYPERLINK("https://example.com")`, models.Address{Row: 1}, g)
	assert.Equal(t, models.Hyperlink{URL: "https://example.com", Text: "https://example.com"}, res.Value)
}

func TestFinancialFunctions(t *testing.T) {
	ev := NewEvaluator()
	g := gridWith(t, map[string]models.Cell{
		"A1": num(100),
		"A2": num(100),
	})
	self := addr(t, "H1")

	tests := []struct {
		formula  string
		expected float64
	}{
		{"=NPV(0.1,A1:A2)", 173.55371900826447},
		{"=NPV(0.1,{100,100})", 173.55371900826447},
		{"=NPV(0.1,100,100)", 173.55371900826447},
		{"=PMT(0.05,10,1000)", -129.5045749654566},
		{"=PV(0.05,10,-100)", 772.1734929184818},
		{"=FV(0.05,10,-100,0)", 1257.789253554884},
		{"=CAGR(100,200,2)", 0.41421356237309515},
		{"=IRR({-1000000, 0, 0, 0, 5000000})", 0.49534878122122056},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			v, ok := ev.Evaluate(tt.formula, self, g).Value.(float64)
			if assert.True(t, ok) {
				assert.InDelta(t, tt.expected, v, 1e-9)
			}
		})
	}
}

func TestIRRConverges(t *testing.T) {
	flows := []float64{-1000000, 0, 0, 0, 5000000}
	rate := IRR(flows)
	assert.InDelta(t, 0.0, npvFromZero(rate, flows), 1e-3)
}

// npvFromZero is the net present value IRR solves for, the first flow at period 0.
func npvFromZero(rate float64, flows []float64) float64 {
	total := 0.0
	for t, v := range flows {
		total += v / math.Pow(1+rate, float64(t))
	}
	return total
}

func TestIRRSinglePeriod(t *testing.T) {
	assert.InDelta(t, 0.1, IRR([]float64{-100, 110}), 1e-9)
	assert.InDelta(t, 0.25, IRR([]float64{-100, 125}), 1e-6)
}
