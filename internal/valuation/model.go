// Log-linear market valuation.
//
//	rawCA = α·ln(value) + β·age + bias[pos] + intercept
//
// EstimateFromValue runs it forward; EstimateValue solves it for value.
package valuation

import "math"

const (
	alpha     = 8.6
	beta      = 0.7
	intercept = -22.0

	// ValueFloor is the smallest value fed into the forward transform.
	ValueFloor = 100_000
	// PriceFloor is the practical lower bound used when pricing low-CA members.
	PriceFloor = 10_000
	// MaxValue caps every estimated market value.
	MaxValue = 200_000_000

	minCA = 1.0
	maxCA = 195.0
	maxPA = 200.0
)

var posBias = map[PosType]float64{
	GK:  5.0,
	DEF: 3.0,
	MID: 0.0,
	FW:  -3.0,
}

// EstimateFromValue converts a market value into a CA estimate and a PA
// ceiling. PA is never below CA.
func EstimateFromValue(marketValue int64, age int, pos PosType) (ca, pa float64) {
	v := float64(marketValue)
	if v < ValueFloor {
		v = ValueFloor
	}
	logV := math.Log(v)

	raw := alpha*logV + beta*float64(age) + posBias[pos] + intercept
	ca = clamp(raw, minCA, maxCA)

	premium := logV * 10 / ca
	rate := growthRate(premium)

	remaining := math.Max(0, float64(29-age))
	var rawPA float64
	if remaining > 0 {
		rawPA = ca + rate*remaining
	} else {
		rawPA = ca + 4
	}
	pa = clamp(rawPA, ca, maxPA)
	return ca, pa
}

// growthRate tiers the yearly PA headroom by how far the value outruns CA.
func growthRate(premium float64) float64 {
	switch {
	case premium > 1.25:
		return 3.5
	case premium > 1.15:
		return 2.5
	case premium > 1.05:
		return 1.5
	default:
		return 0.5
	}
}

// EstimateValue solves the forward equation for the market value of a
// person with the given CA, clamped to [1, MaxValue].
func EstimateValue(ca float64, age int, pos PosType) int64 {
	logV := (ca - beta*float64(age) - posBias[pos] - intercept) / alpha
	v := math.Exp(logV)
	if math.IsInf(v, 1) || v > MaxValue {
		return MaxValue
	}
	if v < 1 || math.IsNaN(v) {
		return 1
	}
	return int64(v)
}

// MarketValue is EstimateValue with the practical PriceFloor applied.
func MarketValue(ca float64, age int, pos PosType) int64 {
	v := EstimateValue(ca, age, pos)
	if v < PriceFloor {
		return PriceFloor
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
