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

func (s *lendingService) Liquidate(ctx context.Context, liquidatorID, userID string, poolID uint64, debtAssetID string, repayAmount decimal.Decimal, collateralAssetID string) (*core.LedgerEvent, error) {
	if !repayAmount.IsPositive() {
		return nil, core.ErrZeroAmount
	}

	if err := s.requireAnyRole(ctx, liquidatorID, core.RoleLiquidator, core.RoleKeeper); err != nil {
		return nil, err
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

	debtToken, err := s.tokens.Find(ctx, poolID, debtAssetID)
	if err != nil {
		return nil, err
	}

	// debt and collateral may be the same token; share the rows so the
	// writes below do not race themselves
	collateralToken := debtToken
	if collateralAssetID != debtAssetID {
		if collateralToken, err = s.tokens.Find(ctx, poolID, collateralAssetID); err != nil {
			return nil, err
		}
	}

	// scanned candidates are advisory only, the position must be unsafe now
	liquidatable, err := s.risk.IsLiquidatable(ctx, poolID, userID)
	if err != nil {
		return nil, err
	}

	if !liquidatable {
		return nil, core.ErrUserHealthy
	}

	now := time.Now()
	ledger.Accrue(debtToken, pool.ReserveFactor, now)
	if collateralToken != debtToken {
		ledger.Accrue(collateralToken, pool.ReserveFactor, now)
	}

	debtPosition, err := s.positions.Find(ctx, poolID, userID, debtAssetID)
	if err != nil {
		return nil, err
	}

	collateralPosition := debtPosition
	if collateralAssetID != debtAssetID {
		if collateralPosition, err = s.positions.Find(ctx, poolID, userID, collateralAssetID); err != nil {
			return nil, err
		}
	}

	currentDebt := ledger.BorrowedBalance(debtPosition, debtToken)
	collateralBalance := ledger.SuppliedBalance(collateralPosition, collateralToken)

	debtPrice, err := s.priceOf(ctx, debtAssetID)
	if err != nil {
		return nil, err
	}

	collateralPrice, err := s.priceOf(ctx, collateralAssetID)
	if err != nil {
		return nil, err
	}

	plan, err := s.liquidation.PlanSeize(pool, repayAmount, currentDebt, debtPrice, collateralPrice, collateralBalance)
	if err != nil {
		return nil, err
	}

	if !plan.SeizeAmount.IsPositive() {
		return nil, core.ErrInsufficientBalance
	}

	debtPosition.BorrowedPrincipal = currentDebt.Sub(plan.RepayAmount)
	debtPosition.BorrowedIndex = debtToken.IndexBorrow
	debtToken.Cash = debtToken.Cash.Add(plan.RepayAmount)
	debtToken.Borrows = number.NonNegative(debtToken.Borrows.Sub(plan.RepayAmount))

	// seized collateral leaves the pool, so the repay must already be in
	// the cash figure before this check on the shared-token path
	if collateralToken.Cash.LessThan(plan.SeizeAmount) {
		return nil, core.ErrInsufficientLiquidity
	}

	collateralPosition.SuppliedPrincipal = collateralBalance.Sub(plan.SeizeAmount)
	collateralPosition.SuppliedIndex = collateralToken.IndexSupply
	collateralToken.Cash = collateralToken.Cash.Sub(plan.SeizeAmount)

	event := &core.LedgerEvent{
		TraceID: id.GenTraceID(),
		PoolID:  poolID,
		UserID:  userID,
		Action:  core.ActionLiquidate,
		AssetID: debtAssetID,
		Amount:  plan.RepayAmount,
		Extra: core.NewEventExtra().
			Put(core.EventKeyLiquidator, liquidatorID).
			Put(core.EventKeyDebtAsset, debtAssetID).
			Put(core.EventKeyRepayAmount, plan.RepayAmount).
			Put(core.EventKeyCollateralAsset, collateralAssetID).
			Put(core.EventKeySeizedAmount, plan.SeizeAmount).
			Format(),
		CreatedAt: now,
	}

	action := core.TransferAction{
		Source:   core.ActionLiquidate,
		PoolID:   poolID,
		FollowID: event.TraceID,
	}

	if err := s.tx.Tx(func(tx *db.DB) error {
		if err := s.custody.Debit(ctx, tx, liquidatorID, debtAssetID, plan.RepayAmount, action); err != nil {
			return err
		}

		if err := s.tokens.Update(ctx, tx, debtToken); err != nil {
			return err
		}

		if collateralToken != debtToken {
			if err := s.tokens.Update(ctx, tx, collateralToken); err != nil {
				return err
			}
		}

		if err := s.positions.Save(ctx, tx, debtPosition); err != nil {
			return err
		}

		if collateralPosition != debtPosition {
			if err := s.positions.Save(ctx, tx, collateralPosition); err != nil {
				return err
			}
		}

		if err := s.custody.Credit(ctx, tx, liquidatorID, collateralAssetID, plan.SeizeAmount, action); err != nil {
			return err
		}

		return s.events.Create(ctx, tx, event)
	}); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithField("event", event.Action).
		Infof("pool %d: %s liquidated %s, repaid %s %s, seized %s %s",
			poolID, liquidatorID, userID, plan.RepayAmount, debtToken.Symbol, plan.SeizeAmount, collateralToken.Symbol)

	return event, nil
}
