package formula

import "math"

const (
	irrGuess         = 0.1
	irrMaxIterations = 100
	irrTolerance     = 1e-5
)

// fnNPV discounts the first cash flow by one full period:
// NPV = sum(v_i / (1+rate)^(i+1)).
func fnNPV(call *Call) (any, error) {
	if err := call.requireArgs("NPV", 2, -1); err != nil {
		return nil, err
	}
	rate, err := call.Number(0)
	if err != nil {
		return nil, err
	}
	values, err := call.Values(1)
	if err != nil {
		return nil, err
	}
	return NPV(rate, numbers(values)), nil
}

func fnIRR(call *Call) (any, error) {
	if err := call.requireArgs("IRR", 1, -1); err != nil {
		return nil, err
	}
	values, err := call.Values(0)
	if err != nil {
		return nil, err
	}
	return IRR(numbers(values)), nil
}

func fnPMT(call *Call) (any, error) {
	args, err := numberArgs(call, "PMT", 3, 3)
	if err != nil {
		return nil, err
	}
	return PMT(args[0], args[1], args[2]), nil
}

func fnPV(call *Call) (any, error) {
	args, err := numberArgs(call, "PV", 3, 3)
	if err != nil {
		return nil, err
	}
	return PV(args[0], args[1], args[2]), nil
}

func fnFV(call *Call) (any, error) {
	args, err := numberArgs(call, "FV", 3, 4)
	if err != nil {
		return nil, err
	}
	return FV(args[0], args[1], args[2], args[3]), nil
}

// fnCAGR is (end/begin)^(1/years) - 1.
func fnCAGR(call *Call) (any, error) {
	args, err := numberArgs(call, "CAGR", 3, 3)
	if err != nil {
		return nil, err
	}
	return math.Pow(args[1]/args[0], 1/args[2]) - 1, nil
}

// fnMOIC is the multiple on invested capital: exit value / invested.
func fnMOIC(call *Call) (any, error) {
	args, err := numberArgs(call, "MOIC", 2, 2)
	if err != nil {
		return nil, err
	}
	return args[0] / args[1], nil
}

// numberArgs evaluates every argument as a number. The result always has max
// entries; omitted arguments are 0.
func numberArgs(call *Call, name string, min, max int) ([]float64, error) {
	if err := call.requireArgs(name, min, max); err != nil {
		return nil, err
	}
	out := make([]float64, max)
	for i := 0; i < call.Len(); i++ {
		n, err := call.Number(i)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func numbers(values []any) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = toNumber(v)
	}
	return out
}

// NPV returns the net present value of cash flows at the given rate, the first
// flow arriving one period from now.
func NPV(rate float64, flows []float64) float64 {
	total := 0.0
	for i, v := range flows {
		total += v / math.Pow(1+rate, float64(i+1))
	}
	return total
}

// IRR finds the rate at which the net present value of flows (the first flow
// at period 0) is zero, using Newton-Raphson from 10%. It stops when two
// successive rates differ by less than 1e-5 and otherwise returns the rate
// reached after 100 iterations.
func IRR(flows []float64) float64 {
	rate := irrGuess
	for i := 0; i < irrMaxIterations; i++ {
		npv, deriv := 0.0, 0.0
		for t, v := range flows {
			d := math.Pow(1+rate, float64(t))
			npv += v / d
			deriv -= float64(t) * v / (d * (1 + rate))
		}
		next := rate - npv/deriv
		if math.Abs(next-rate) < irrTolerance {
			return next
		}
		rate = next
	}
	return rate
}

// PMT is the payment per period of a loan of pv over nper periods.
func PMT(rate, nper, pv float64) float64 {
	if rate == 0 {
		return -pv / nper
	}
	f := math.Pow(1+rate, nper)
	return -pv * rate * f / (f - 1)
}

// PV is the present value of nper payments of pmt.
func PV(rate, nper, pmt float64) float64 {
	if rate == 0 {
		return -pmt * nper
	}
	return -pmt * (1 - math.Pow(1+rate, -nper)) / rate
}

// FV is the future value of pv plus nper payments of pmt.
func FV(rate, nper, pmt, pv float64) float64 {
	if rate == 0 {
		return -(pv + pmt*nper)
	}
	f := math.Pow(1+rate, nper)
	return -(pv*f + pmt*(f-1)/rate)
}
