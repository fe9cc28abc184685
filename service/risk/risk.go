package risk

import (
	"context"
	"time"

	"lagoon/core"
	"lagoon/pkg/ledger"
	"lagoon/pkg/number"

	"github.com/shopspring/decimal"
)

type riskService struct {
	pools     core.IPoolStore
	tokens    core.ITokenStore
	positions core.IPositionStore
	oracle    core.IPriceOracleService
}

// New new risk service
func New(
	pools core.IPoolStore,
	tokens core.ITokenStore,
	positions core.IPositionStore,
	oracle core.IPriceOracleService,
) core.IRiskService {
	return &riskService{
		pools:     pools,
		tokens:    tokens,
		positions: positions,
		oracle:    oracle,
	}
}

// totals accumulates one consistent pricing pass over a user's positions.
// Collateral is kept under both weightings: the liquidation threshold drives
// the health factor, the LTV drives borrow power.
type totals struct {
	collateralLT  decimal.Decimal
	collateralLTV decimal.Decimal
	borrowUSD     decimal.Decimal
}

func (s *riskService) GetHealthSnapshot(ctx context.Context, poolID uint64, userID string) (*core.HealthSnapshot, error) {
	return s.GetHypotheticalHealth(ctx, poolID, userID, core.HypotheticalChange{})
}

func (s *riskService) GetHypotheticalHealth(ctx context.Context, poolID uint64, userID string, change core.HypotheticalChange) (*core.HealthSnapshot, error) {
	t, err := s.accumulate(ctx, poolID, userID, change, time.Now())
	if err != nil {
		return nil, err
	}

	snapshot := &core.HealthSnapshot{
		CollateralUSD: number.Truncate(t.collateralLT),
		BorrowUSD:     number.Truncate(t.borrowUSD),
		HealthFactor:  core.HealthFactorMax,
	}

	if t.borrowUSD.IsPositive() {
		snapshot.HealthFactor = number.Div(t.collateralLT, t.borrowUSD)
	}

	return snapshot, nil
}

func (s *riskService) GetBorrowPowerUSD(ctx context.Context, poolID uint64, userID string) (decimal.Decimal, error) {
	t, err := s.accumulate(ctx, poolID, userID, core.HypotheticalChange{}, time.Now())
	if err != nil {
		return decimal.Zero, err
	}

	return number.NonNegative(number.Truncate(t.collateralLTV.Sub(t.borrowUSD))), nil
}

func (s *riskService) IsLiquidatable(ctx context.Context, poolID uint64, userID string) (bool, error) {
	snapshot, err := s.GetHealthSnapshot(ctx, poolID, userID)
	if err != nil {
		return false, err
	}

	return snapshot.Liquidatable(), nil
}

// accumulate prices every token the user holds a balance in, accrued to now.
// A stale or missing price aborts the whole computation; guessing a value
// here would corrupt liquidation decisions downstream.
func (s *riskService) accumulate(ctx context.Context, poolID uint64, userID string, change core.HypotheticalChange, now time.Time) (*totals, error) {
	pool, err := s.pools.Find(ctx, poolID)
	if err != nil {
		return nil, err
	}

	positions, err := s.positions.ListByUser(ctx, poolID, userID)
	if err != nil {
		return nil, err
	}

	t := &totals{
		collateralLT:  decimal.Zero,
		collateralLTV: decimal.Zero,
		borrowUSD:     decimal.Zero,
	}

	borrowAssetSeen := false
	for _, position := range positions {
		if position.Zero() && position.AssetID != change.BorrowAssetID {
			continue
		}

		token, err := s.tokens.Find(ctx, poolID, position.AssetID)
		if err != nil {
			return nil, err
		}

		accrued := ledger.Preview(token, pool.ReserveFactor, now)
		supplied := ledger.SuppliedBalance(position, accrued)
		borrowed := ledger.BorrowedBalance(position, accrued)

		if position.AssetID == change.RedeemAssetID {
			supplied = number.NonNegative(supplied.Sub(change.RedeemAmount))
		}

		if position.AssetID == change.BorrowAssetID {
			borrowed = borrowed.Add(change.BorrowAmount)
			borrowAssetSeen = true
		}

		if !supplied.IsPositive() && !borrowed.IsPositive() {
			continue
		}

		price, err := s.priceOf(ctx, position.AssetID)
		if err != nil {
			return nil, err
		}

		if supplied.IsPositive() {
			value := supplied.Mul(price)
			t.collateralLT = t.collateralLT.Add(value.Mul(accrued.LiquidationThreshold))
			t.collateralLTV = t.collateralLTV.Add(value.Mul(accrued.LTV))
		}

		if borrowed.IsPositive() {
			t.borrowUSD = t.borrowUSD.Add(borrowed.Mul(price))
		}
	}

	// first borrow of a token the user never touched
	if change.BorrowAssetID != "" && !borrowAssetSeen && change.BorrowAmount.IsPositive() {
		if _, err := s.tokens.Find(ctx, poolID, change.BorrowAssetID); err != nil {
			return nil, err
		}

		price, err := s.priceOf(ctx, change.BorrowAssetID)
		if err != nil {
			return nil, err
		}

		t.borrowUSD = t.borrowUSD.Add(change.BorrowAmount.Mul(price))
	}

	return t, nil
}

func (s *riskService) priceOf(ctx context.Context, assetID string) (decimal.Decimal, error) {
	price, stale, err := s.oracle.GetPriceUSD(ctx, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	if stale {
		return decimal.Zero, core.ErrStalePrice
	}

	return price, nil
}
