package number

import (
	"github.com/shopspring/decimal"
)

// Precision is the fixed-point scale used by every ledger amount, ratio
// and index in the engine. Values are truncated, never rounded, so results
// stay reproducible across runs.
const Precision = 18

// One 1 as decimal
var One = decimal.New(1, 0)

// Decimal parse string to decimal
func Decimal(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

// Truncate truncate decimal to ledger precision
func Truncate(d decimal.Decimal) decimal.Decimal {
	return d.Truncate(Precision)
}

// Div divide with truncation to ledger precision
func Div(x, y decimal.Decimal) decimal.Decimal {
	return x.DivRound(y, Precision+1).Truncate(Precision)
}

// Ceil ceil decimal with precision
func Ceil(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Ceil().Shift(-precision)
}

// NonNegative floor decimal at zero
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}

	return d
}
