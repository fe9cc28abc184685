package pool

import (
	"context"
	"time"

	"lagoon/core"
	"lagoon/pkg/id"
	"lagoon/pkg/ledger"
	"lagoon/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

func (s *lendingService) Borrow(ctx context.Context, userID string, poolID uint64, assetID string, amount decimal.Decimal) (*core.LedgerEvent, error) {
	if !amount.IsPositive() {
		return nil, core.ErrZeroAmount
	}

	ctx, release, err := s.locker.acquire(ctx, poolID)
	if err != nil {
		return nil, err
	}
	defer release()

	pool, err := s.loadPool(ctx, poolID)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Find(ctx, poolID, assetID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ledger.Accrue(token, pool.ReserveFactor, now)

	if token.Cash.LessThan(amount) {
		return nil, core.ErrInsufficientLiquidity
	}

	// zero collateral prices to health factor zero here, so borrowing with
	// nothing supplied fails the same gate
	snapshot, err := s.risk.GetHypotheticalHealth(ctx, poolID, userID, core.HypotheticalChange{
		BorrowAssetID: assetID,
		BorrowAmount:  amount,
	})
	if err != nil {
		return nil, err
	}

	if snapshot.HealthFactor.LessThan(one) {
		return nil, core.ErrHealthFactorTooLow
	}

	position, err := s.positions.Find(ctx, poolID, userID, assetID)
	if err != nil {
		return nil, err
	}

	newDebt := ledger.BorrowedBalance(position, token).Add(amount)
	position.BorrowedPrincipal = newDebt
	position.BorrowedIndex = token.IndexBorrow
	token.Cash = token.Cash.Sub(amount)
	token.Borrows = token.Borrows.Add(amount)

	event := &core.LedgerEvent{
		TraceID: id.GenTraceID(),
		PoolID:  poolID,
		UserID:  userID,
		Action:  core.ActionBorrow,
		AssetID: assetID,
		Amount:  amount,
		Extra: core.NewEventExtra().
			Put(core.EventKeyNewBalance, newDebt).
			Format(),
		CreatedAt: now,
	}

	action := core.TransferAction{
		Source:   core.ActionBorrow,
		PoolID:   poolID,
		FollowID: event.TraceID,
	}

	if err := s.tx.Tx(func(tx *db.DB) error {
		if err := s.tokens.Update(ctx, tx, token); err != nil {
			return err
		}

		if err := s.positions.Save(ctx, tx, position); err != nil {
			return err
		}

		if err := s.custody.Credit(ctx, tx, userID, assetID, amount, action); err != nil {
			return err
		}

		return s.events.Create(ctx, tx, event)
	}); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithField("event", event.Action).
		Infof("pool %d: %s borrowed %s %s", poolID, userID, amount, token.Symbol)

	return event, nil
}

// Repay applies at most the outstanding debt. The overshoot is never taken
// from the payer, so an overpay leaves the debt at exactly zero with no
// refund transfer needed.
func (s *lendingService) Repay(ctx context.Context, userID string, poolID uint64, assetID string, amount decimal.Decimal) (*core.LedgerEvent, error) {
	if !amount.IsPositive() {
		return nil, core.ErrZeroAmount
	}

	ctx, release, err := s.locker.acquire(ctx, poolID)
	if err != nil {
		return nil, err
	}
	defer release()

	pool, err := s.loadPool(ctx, poolID)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Find(ctx, poolID, assetID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ledger.Accrue(token, pool.ReserveFactor, now)

	position, err := s.positions.Find(ctx, poolID, userID, assetID)
	if err != nil {
		return nil, err
	}

	debt := ledger.BorrowedBalance(position, token)
	if !debt.IsPositive() {
		return nil, core.ErrZeroAmount
	}

	applied := amount
	if applied.GreaterThan(debt) {
		applied = debt
	}
	refund := amount.Sub(applied)

	newDebt := debt.Sub(applied)
	position.BorrowedPrincipal = newDebt
	position.BorrowedIndex = token.IndexBorrow
	token.Cash = token.Cash.Add(applied)
	// debt balances round up, so the pool aggregate may carry less than the
	// last position repaid
	token.Borrows = number.NonNegative(token.Borrows.Sub(applied))

	event := &core.LedgerEvent{
		TraceID: id.GenTraceID(),
		PoolID:  poolID,
		UserID:  userID,
		Action:  core.ActionRepay,
		AssetID: assetID,
		Amount:  applied,
		Extra: core.NewEventExtra().
			Put(core.EventKeyNewBalance, newDebt).
			Put(core.EventKeyRefund, refund).
			Format(),
		CreatedAt: now,
	}

	action := core.TransferAction{
		Source:   core.ActionRepay,
		PoolID:   poolID,
		FollowID: event.TraceID,
	}

	if err := s.tx.Tx(func(tx *db.DB) error {
		if err := s.custody.Debit(ctx, tx, userID, assetID, applied, action); err != nil {
			return err
		}

		if err := s.tokens.Update(ctx, tx, token); err != nil {
			return err
		}

		if err := s.positions.Save(ctx, tx, position); err != nil {
			return err
		}

		return s.events.Create(ctx, tx, event)
	}); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithField("event", event.Action).
		Infof("pool %d: %s repaid %s %s", poolID, userID, applied, token.Symbol)

	return event, nil
}
