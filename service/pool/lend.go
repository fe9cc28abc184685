package pool

import (
	"context"
	"time"

	"lagoon/core"
	"lagoon/pkg/id"
	"lagoon/pkg/ledger"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

func (s *lendingService) Lend(ctx context.Context, userID string, poolID uint64, assetID string, amount decimal.Decimal) (*core.LedgerEvent, error) {
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

	newBalance := ledger.SuppliedBalance(position, token).Add(amount)
	position.SuppliedPrincipal = newBalance
	position.SuppliedIndex = token.IndexSupply
	token.Cash = token.Cash.Add(amount)

	event := &core.LedgerEvent{
		TraceID: id.GenTraceID(),
		PoolID:  poolID,
		UserID:  userID,
		Action:  core.ActionLend,
		AssetID: assetID,
		Amount:  amount,
		Extra: core.NewEventExtra().
			Put(core.EventKeyNewBalance, newBalance).
			Format(),
		CreatedAt: now,
	}

	action := core.TransferAction{
		Source:   core.ActionLend,
		PoolID:   poolID,
		FollowID: event.TraceID,
	}

	if err := s.tx.Tx(func(tx *db.DB) error {
		if err := s.custody.Debit(ctx, tx, userID, assetID, amount, action); err != nil {
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
		Infof("pool %d: %s lent %s %s", poolID, userID, amount, token.Symbol)

	return event, nil
}

func (s *lendingService) Withdraw(ctx context.Context, userID string, poolID uint64, assetID string, amount decimal.Decimal) (*core.LedgerEvent, error) {
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

	supplied := ledger.SuppliedBalance(position, token)
	if supplied.LessThan(amount) {
		return nil, core.ErrInsufficientBalance
	}

	if token.Cash.LessThan(amount) {
		return nil, core.ErrInsufficientLiquidity
	}

	// the health gate only binds when the user carries debt; a debt free
	// withdraw must succeed even while the oracle is down
	hasDebt, err := s.userHasDebt(ctx, poolID, userID)
	if err != nil {
		return nil, err
	}

	if hasDebt {
		snapshot, err := s.risk.GetHypotheticalHealth(ctx, poolID, userID, core.HypotheticalChange{
			RedeemAssetID: assetID,
			RedeemAmount:  amount,
		})
		if err != nil {
			return nil, err
		}

		if snapshot.HealthFactor.LessThan(one) {
			return nil, core.ErrHealthFactorTooLow
		}
	}

	newBalance := supplied.Sub(amount)
	position.SuppliedPrincipal = newBalance
	position.SuppliedIndex = token.IndexSupply
	token.Cash = token.Cash.Sub(amount)

	event := &core.LedgerEvent{
		TraceID: id.GenTraceID(),
		PoolID:  poolID,
		UserID:  userID,
		Action:  core.ActionWithdraw,
		AssetID: assetID,
		Amount:  amount,
		Extra: core.NewEventExtra().
			Put(core.EventKeyNewBalance, newBalance).
			Format(),
		CreatedAt: now,
	}

	action := core.TransferAction{
		Source:   core.ActionWithdraw,
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
		Infof("pool %d: %s withdrew %s %s", poolID, userID, amount, token.Symbol)

	return event, nil
}
