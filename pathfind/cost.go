package pathfind

import (
	"math"
	"math/bits"

	"github.com/lightningnetwork/lnd/lnwire"

	"github.com/katalvlaran/lnroute/routing"
)

const (
	// BlocksPerYear is the expected number of blocks mined in a year.
	BlocksPerYear = 52596

	// feeRateScale is the denominator of a parts-per-million fee rate.
	feeRateScale = 1_000_000

	// riskScale converts an annual rate into the per-block, per-millisatoshi
	// factor used by the cost function.
	riskScale = 10000
)

// AnnualRiskFactor converts an annual opportunity-cost rate into the risk
// factor FindRoute expects: rate / BlocksPerYear / 10000.
// AnnualRiskFactor(0.01) is the value used by the routebench harness.
func AnnualRiskFactor(rate float64) float64 {
	return rate / BlocksPerYear / riskScale
}

// EdgeCost returns what it costs to push amount across e:
//
//	fee  = BaseFee + floor(FeeRate * amount / 1e6)
//	risk = floor(riskFactor * amount * TimeLockDelta)
//
// ok is false when either term overflows 64 bits; such an edge is unusable
// for this amount.
func EdgeCost(e routing.ChannelEdge, amount lnwire.MilliSatoshi, riskFactor float64) (fee lnwire.MilliSatoshi, risk uint64, ok bool) {
	// Proportional part with a 128-bit intermediate product.
	hi, lo := bits.Mul64(uint64(e.FeeRate), uint64(amount))
	if hi >= feeRateScale {
		return 0, 0, false
	}
	prop, _ := bits.Div64(hi, lo, feeRateScale)

	total, carry := bits.Add64(uint64(e.BaseFee), prop, 0)
	if carry != 0 {
		return 0, 0, false
	}

	r := math.Floor(riskFactor * float64(amount) * float64(e.TimeLockDelta))
	if r >= math.MaxUint64 {
		return 0, 0, false
	}

	return lnwire.MilliSatoshi(total), uint64(r), true
}

// addCost returns a+b+c, ok=false on overflow.
func addCost(a, b, c uint64) (uint64, bool) {
	s, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, false
	}
	s, carry = bits.Add64(s, c, 0)

	return s, carry == 0
}
