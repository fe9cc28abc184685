// Package interest implements the kink interest rate model: a two slope
// curve over pool utilization with a breakpoint beyond which the borrow
// rate climbs steeply to defend the last liquidity in the pool.
//
// Rates are annual and converted to per second factors against a fixed
// year length, so accrual depends only on elapsed wall clock time.
package interest

import (
	"math"

	"lagoon/pkg/number"

	"github.com/shopspring/decimal"
)

var (
	// SecondsPerYear fixed year length for rate conversion
	SecondsPerYear = decimal.NewFromInt(31536000)
	// ReserveFactorMax reserve factor must stay below this value
	ReserveFactorMax = decimal.NewFromFloat(0.9)
	// LiquidationBonusMin bonus must be no less than this value
	LiquidationBonusMin = decimal.NewFromFloat(0.01)
	// LiquidationBonusMax bonus must be no greater than this value
	LiquidationBonusMax = decimal.NewFromFloat(0.5)

	one = decimal.New(1, 0)
)

// Utilization utilization rate
// utilization = borrows / (cash + borrows), 0 when the pool is empty
func Utilization(cash, borrows decimal.Decimal) decimal.Decimal {
	total := cash.Add(borrows)
	if total.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	return number.Div(borrows, total)
}

// BorrowRate annual borrow rate
// below the kink: base + slope1 * u
// above the kink: base + slope1 * kink + slope2 * (u - kink)
func BorrowRate(utilization, baseRate, slope1, slope2, kink decimal.Decimal) decimal.Decimal {
	if kink.Equal(decimal.Zero) || utilization.LessThanOrEqual(kink) {
		return number.Truncate(utilization.Mul(slope1).Add(baseRate))
	}

	normalRate := kink.Mul(slope1).Add(baseRate)
	excessUtil := utilization.Sub(kink)
	return number.Truncate(excessUtil.Mul(slope2).Add(normalRate))
}

// SupplyRate annual supply rate
// supplyRate = borrowRate * utilization * (1 - reserveFactor)
func SupplyRate(utilization, baseRate, slope1, slope2, kink, reserveFactor decimal.Decimal) decimal.Decimal {
	borrowRate := BorrowRate(utilization, baseRate, slope1, slope2, kink)
	rateToPool := borrowRate.Mul(one.Sub(reserveFactor))
	return number.Truncate(utilization.Mul(rateToPool))
}

// PerSecond convert an annual rate to a per second rate
func PerSecond(annualRate decimal.Decimal) decimal.Decimal {
	return number.Div(annualRate, SecondsPerYear)
}

// Factor growth factor over elapsed seconds at an annual rate
// factor = 1 + rate * elapsed / secondsPerYear
func Factor(annualRate decimal.Decimal, elapsed int64) decimal.Decimal {
	return number.Truncate(one.Add(PerSecond(annualRate).Mul(decimal.NewFromInt(elapsed))))
}

// Apy annualized yield of a per second rate, for display only. Ledger state
// never depends on this value.
// apy = (1 + rate)^secondsPerYear - 1
func Apy(perSecondRate decimal.Decimal) decimal.Decimal {
	r, _ := perSecondRate.Float64()
	apy := math.Pow(1+r, float64(31536000)) - 1
	if math.IsInf(apy, 0) || math.IsNaN(apy) {
		return decimal.Zero
	}

	return decimal.NewFromFloat(apy).Truncate(8)
}
