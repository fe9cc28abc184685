// Package ledger holds the pure accrual and balance arithmetic shared by
// the accounting and risk services. Nothing here touches a store; callers
// pass the rows they already hold.
package ledger

import (
	"time"

	"lagoon/core"
	"lagoon/internal/interest"
	"lagoon/pkg/number"

	"github.com/shopspring/decimal"
)

var one = decimal.New(1, 0)

// Normalize backfills the indices of a freshly created token row so that
// every index starts at 1.
func Normalize(token *core.Token) {
	if !token.IndexBorrow.IsPositive() {
		token.IndexBorrow = one
	}

	if !token.IndexSupply.IsPositive() {
		token.IndexSupply = one
	}
}

// Accrue advances the token ledger to now and returns the interest added to
// total borrows. Both index updates derive from the same utilization and
// elapsed snapshot, so the supplier share always equals the accrued interest
// minus the reserve cut.
//
// Accrue must run before any balance of the token is read or written.
func Accrue(token *core.Token, reserveFactor decimal.Decimal, now time.Time) decimal.Decimal {
	Normalize(token)

	now = now.UTC()
	if now.Before(token.LastAccrueTime) {
		return decimal.Zero
	}

	elapsed := now.Unix() - token.LastAccrueTime.UTC().Unix()
	interestAccumulated := decimal.Zero

	if elapsed > 0 && token.Borrows.IsPositive() {
		u := interest.Utilization(token.Cash, token.Borrows)
		borrowRate := interest.BorrowRate(u, token.BaseRate, token.Slope1, token.Slope2, token.Kink)
		supplyRate := interest.SupplyRate(u, token.BaseRate, token.Slope1, token.Slope2, token.Kink, reserveFactor)

		borrowFactor := interest.Factor(borrowRate, elapsed)
		supplyFactor := interest.Factor(supplyRate, elapsed)

		interestAccumulated = number.Truncate(token.Borrows.Mul(borrowFactor.Sub(one)))

		token.Borrows = token.Borrows.Add(interestAccumulated)
		token.Reserves = token.Reserves.Add(number.Truncate(interestAccumulated.Mul(reserveFactor)))
		token.IndexBorrow = token.IndexBorrow.Add(number.Ceil(token.IndexBorrow.Mul(borrowFactor.Sub(one)), number.Precision))
		token.IndexSupply = token.IndexSupply.Add(number.Truncate(token.IndexSupply.Mul(supplyFactor.Sub(one))))
	}

	token.LastAccrueTime = now
	return interestAccumulated
}

// Preview returns a copy of the token accrued to now without mutating the
// stored row. Read paths use it to price one consistent snapshot.
func Preview(token *core.Token, reserveFactor decimal.Decimal, now time.Time) *core.Token {
	copied := *token
	Accrue(&copied, reserveFactor, now)
	return &copied
}

// SuppliedBalance current supplied balance of a position
// balance = principal * token.index_supply / position.supplied_index
func SuppliedBalance(p *core.Position, token *core.Token) decimal.Decimal {
	if !p.SuppliedPrincipal.IsPositive() {
		return decimal.Zero
	}

	index := p.SuppliedIndex
	if !index.IsPositive() {
		index = token.IndexSupply
	}

	return number.Div(p.SuppliedPrincipal.Mul(token.IndexSupply), index)
}

// BorrowedBalance current debt of a position, rounded up so a full repay
// never leaves dust owed to the pool
// balance = principal * token.index_borrow / position.borrowed_index
func BorrowedBalance(p *core.Position, token *core.Token) decimal.Decimal {
	if !p.BorrowedPrincipal.IsPositive() {
		return decimal.Zero
	}

	index := p.BorrowedIndex
	if !index.IsPositive() {
		index = token.IndexBorrow
	}

	return number.Ceil(p.BorrowedPrincipal.Mul(token.IndexBorrow).DivRound(index, number.Precision+2), number.Precision)
}

// CurUtilization current utilization of the token ledger
func CurUtilization(token *core.Token) decimal.Decimal {
	return interest.Utilization(token.Cash, token.Borrows)
}

// CurBorrowRate current annual borrow rate
func CurBorrowRate(token *core.Token) decimal.Decimal {
	return interest.BorrowRate(CurUtilization(token), token.BaseRate, token.Slope1, token.Slope2, token.Kink)
}

// CurSupplyRate current annual supply rate
func CurSupplyRate(token *core.Token, reserveFactor decimal.Decimal) decimal.Decimal {
	return interest.SupplyRate(CurUtilization(token), token.BaseRate, token.Slope1, token.Slope2, token.Kink, reserveFactor)
}
