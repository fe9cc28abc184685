package ledger

import (
	"testing"
	"time"

	"lagoon/core"
	"lagoon/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestToken(cash, borrows string, at time.Time) *core.Token {
	return &core.Token{
		PoolID:               1,
		AssetID:              "asset",
		Cash:                 number.Decimal(cash),
		Borrows:              number.Decimal(borrows),
		IndexSupply:          decimal.New(1, 0),
		IndexBorrow:          decimal.New(1, 0),
		LastAccrueTime:       at,
		LTV:                  number.Decimal("0.8"),
		LiquidationThreshold: number.Decimal("0.85"),
		Kink:                 number.Decimal("0.8"),
		BaseRate:             number.Decimal("0.02"),
		Slope1:               number.Decimal("0.05"),
		Slope2:               number.Decimal("0.25"),
	}
}

func TestAccrueSameSecondIdempotent(t *testing.T) {
	at := time.Unix(1600000000, 0)
	token := newTestToken("200", "800", at)

	interest := Accrue(token, number.Decimal("0.1"), at)
	assert.True(t, interest.IsZero())
	assert.Equal(t, "1", token.IndexBorrow.String())
	assert.Equal(t, "1", token.IndexSupply.String())
	assert.Equal(t, at.UTC(), token.LastAccrueTime)
}

func TestAccrueZeroBorrows(t *testing.T) {
	at := time.Unix(1600000000, 0)
	token := newTestToken("1000", "0", at)

	later := at.Add(24 * time.Hour)
	interest := Accrue(token, number.Decimal("0.1"), later)

	assert.True(t, interest.IsZero())
	assert.Equal(t, "1", token.IndexBorrow.String())
	assert.Equal(t, later.UTC(), token.LastAccrueTime)
}

func TestAccrueOneYear(t *testing.T) {
	at := time.Unix(1600000000, 0)
	token := newTestToken("200", "800", at)
	reserveFactor := number.Decimal("0.1")

	// utilization 0.8 sits exactly on the kink: borrow rate 6% annual
	interest := Accrue(token, reserveFactor, at.Add(365*24*time.Hour))

	require.True(t, interest.GreaterThan(number.Decimal("47.999")))
	require.True(t, interest.LessThanOrEqual(number.Decimal("48")))

	assert.Equal(t, number.Decimal("800").Add(interest).String(), token.Borrows.String())
	assert.Equal(t, number.Truncate(interest.Mul(reserveFactor)).String(), token.Reserves.String())

	borrowGrowth := token.IndexBorrow.Sub(decimal.New(1, 0))
	if borrowGrowth.Sub(number.Decimal("0.06")).Abs().GreaterThan(number.Decimal("0.000000001")) {
		t.Fatal("borrow index did not grow by the borrow rate:", token.IndexBorrow)
	}

	// suppliers receive the accrued interest minus the reserve cut
	supplierGain := token.IndexSupply.Sub(decimal.New(1, 0)).Mul(number.Decimal("1000"))
	want := interest.Mul(number.Decimal("0.9"))
	if supplierGain.Sub(want).Abs().GreaterThan(number.Decimal("0.000001")) {
		t.Fatal("supplier share inconsistent with reserve cut:", supplierGain, want)
	}
}

func TestIndicesMonotonic(t *testing.T) {
	at := time.Unix(1600000000, 0)
	token := newTestToken("200", "800", at)

	prevBorrow := token.IndexBorrow
	prevSupply := token.IndexSupply

	for i := 1; i <= 50; i++ {
		at = at.Add(time.Duration(i) * time.Hour)
		Accrue(token, number.Decimal("0.1"), at)

		if token.IndexBorrow.LessThan(prevBorrow) || token.IndexSupply.LessThan(prevSupply) {
			t.Fatal("index decreased after accrual", i)
		}

		prevBorrow = token.IndexBorrow
		prevSupply = token.IndexSupply
	}
}

func TestAccrueClockSkew(t *testing.T) {
	at := time.Unix(1600000000, 0)
	token := newTestToken("200", "800", at)

	interest := Accrue(token, number.Decimal("0.1"), at.Add(-time.Hour))
	assert.True(t, interest.IsZero())
	assert.True(t, token.LastAccrueTime.Equal(at))
}

func TestPreviewDoesNotMutate(t *testing.T) {
	at := time.Unix(1600000000, 0)
	token := newTestToken("200", "800", at)

	preview := Preview(token, number.Decimal("0.1"), at.Add(time.Hour))

	assert.Equal(t, "1", token.IndexBorrow.String())
	assert.Equal(t, at, token.LastAccrueTime)
	assert.True(t, preview.IndexBorrow.GreaterThan(token.IndexBorrow))
}

func TestBalances(t *testing.T) {
	at := time.Unix(1600000000, 0)
	token := newTestToken("200", "800", at)
	Accrue(token, decimal.Zero, at.Add(365*24*time.Hour))

	supply := &core.Position{
		SuppliedPrincipal: number.Decimal("100"),
		SuppliedIndex:     decimal.New(1, 0),
	}
	borrow := &core.Position{
		BorrowedPrincipal: number.Decimal("100"),
		BorrowedIndex:     decimal.New(1, 0),
	}

	supplied := SuppliedBalance(supply, token)
	borrowed := BorrowedBalance(borrow, token)

	// with a zero reserve factor both sides compound at their own rates
	if supplied.LessThanOrEqual(number.Decimal("100")) {
		t.Fatal("supplied balance did not grow:", supplied)
	}
	if borrowed.LessThanOrEqual(number.Decimal("100")) {
		t.Fatal("borrowed balance did not grow:", borrowed)
	}

	// debt rounds up, never down
	if borrowed.LessThan(borrow.BorrowedPrincipal.Mul(token.IndexBorrow).Div(borrow.BorrowedIndex)) {
		t.Fatal("debt rounded down")
	}

	// zero principals read as zero balances regardless of indices
	assert.True(t, SuppliedBalance(&core.Position{}, token).IsZero())
	assert.True(t, BorrowedBalance(&core.Position{}, token).IsZero())
}
