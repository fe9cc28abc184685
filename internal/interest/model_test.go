package interest

import (
	"testing"

	"lagoon/pkg/number"

	"github.com/bmizerany/assert"
	"github.com/shopspring/decimal"
)

func TestUtilization(t *testing.T) {
	data := map[string]struct {
		cash, borrows, want string
	}{
		"empty pool":    {"0", "0", "0"},
		"no borrows":    {"1000", "0", "0"},
		"half used":     {"500", "500", "0.5"},
		"fully used":    {"0", "300", "1"},
		"typical":       {"200", "800", "0.8"},
		"tiny borrows":  {"1000000", "1", "0.000000999999000001"},
		"negative-free": {"1", "0", "0"},
	}

	for k, v := range data {
		t.Run(k, func(t *testing.T) {
			u := Utilization(number.Decimal(v.cash), number.Decimal(v.borrows))
			assert.Equal(t, v.want, u.String())

			if u.IsNegative() || u.GreaterThan(decimal.New(1, 0)) {
				t.Fatal("utilization out of [0,1]:", u)
			}
		})
	}
}

func TestBorrowRateCurve(t *testing.T) {
	var (
		kink   = number.Decimal("0.8")
		base   = number.Decimal("0.02")
		slope1 = number.Decimal("0.05")
		slope2 = number.Decimal("0.25")
	)

	data := map[string]string{
		"0":    "0.02",
		"0.4":  "0.04",
		"0.8":  "0.06",
		"0.9":  "0.085",
		"0.95": "0.0975",
		"1":    "0.11",
	}

	for u, want := range data {
		t.Run(u, func(t *testing.T) {
			got := BorrowRate(number.Decimal(u), base, slope1, slope2, kink)
			assert.Equal(t, want, got.String())
		})
	}
}

func TestBorrowRateContinuousAtKink(t *testing.T) {
	var (
		kink   = number.Decimal("0.8")
		base   = number.Decimal("0.02")
		slope1 = number.Decimal("0.05")
		slope2 = number.Decimal("0.25")
	)

	below := BorrowRate(kink, base, slope1, slope2, kink)
	above := BorrowRate(kink.Add(number.Decimal("0.000000000000000001")), base, slope1, slope2, kink)

	diff := above.Sub(below).Abs()
	if diff.GreaterThan(number.Decimal("0.000000000000000001")) {
		t.Fatal("curve discontinuous at kink:", below, above)
	}
}

func TestBorrowRateMonotonic(t *testing.T) {
	var (
		kink   = number.Decimal("0.8")
		base   = number.Decimal("0.02")
		slope1 = number.Decimal("0.05")
		slope2 = number.Decimal("0.25")
	)

	prev := decimal.Zero
	for u := decimal.Zero; u.LessThanOrEqual(decimal.New(1, 0)); u = u.Add(number.Decimal("0.01")) {
		r := BorrowRate(u, base, slope1, slope2, kink)
		if r.LessThan(prev) {
			t.Fatal("borrow rate decreased at utilization", u)
		}
		prev = r
	}
}

func TestSupplyRateBelowBorrowRate(t *testing.T) {
	var (
		kink          = number.Decimal("0.8")
		base          = number.Decimal("0.02")
		slope1        = number.Decimal("0.05")
		slope2        = number.Decimal("0.25")
		reserveFactor = number.Decimal("0.1")
	)

	for _, u := range []string{"0", "0.2", "0.5", "0.8", "0.9", "1"} {
		util := number.Decimal(u)
		borrowRate := BorrowRate(util, base, slope1, slope2, kink)
		supplyRate := SupplyRate(util, base, slope1, slope2, kink, reserveFactor)

		if supplyRate.GreaterThan(borrowRate) {
			t.Fatal("supply rate above borrow rate at utilization", u)
		}
	}
}

func TestFactor(t *testing.T) {
	// zero elapsed keeps the factor at one
	assert.Equal(t, "1", Factor(number.Decimal("0.1"), 0).String())

	// 10% annual over a full year grows the index by the annual rate, up to
	// the truncation of the per second rate
	f := Factor(number.Decimal("0.1"), 31536000)
	diff := f.Sub(number.Decimal("1.1")).Abs()
	if diff.GreaterThan(number.Decimal("0.000000001")) {
		t.Fatal("unexpected year factor:", f)
	}

	// longer elapsed never shrinks the factor
	if Factor(number.Decimal("0.1"), 200).LessThan(Factor(number.Decimal("0.1"), 100)) {
		t.Fatal("factor not monotonic in elapsed time")
	}
}

func TestApyDisplayOnly(t *testing.T) {
	low := Apy(PerSecond(number.Decimal("0.02")))
	high := Apy(PerSecond(number.Decimal("0.11")))

	if !high.GreaterThan(low) {
		t.Fatal("apy not monotonic:", low, high)
	}

	// continuous compounding of 2% lands slightly above 2%
	if low.LessThan(number.Decimal("0.02")) || low.GreaterThan(number.Decimal("0.021")) {
		t.Fatal("unexpected apy for 2%:", low)
	}
}
