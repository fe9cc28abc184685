package liquidation

import (
	"lagoon/core"
	"lagoon/pkg/number"

	"github.com/shopspring/decimal"
)

var one = decimal.New(1, 0)

type liquidationService struct{}

// New new liquidation service
func New() core.ILiquidationService {
	return &liquidationService{}
}

// PlanSeize prices a liquidation without touching state.
//
// The repay is capped at the outstanding debt and the overshoot comes back
// as a refund. The seize value is the applied repay value grown by the pool
// bonus, converted to collateral units and capped at what the user actually
// holds. Seizing the cap means the liquidator eats the shortfall; that is
// the expected outcome on deeply underwater positions.
func (s *liquidationService) PlanSeize(pool *core.Pool, requestedRepay, currentDebt, debtPriceUSD, collateralPriceUSD, collateralBalance decimal.Decimal) (*core.SeizePlan, error) {
	if !requestedRepay.IsPositive() {
		return nil, core.ErrZeroAmount
	}

	if !debtPriceUSD.IsPositive() || !collateralPriceUSD.IsPositive() {
		return nil, core.ErrPriceNotFound
	}

	repay := requestedRepay
	if repay.GreaterThan(currentDebt) {
		repay = currentDebt
	}

	if !repay.IsPositive() {
		return nil, core.ErrZeroAmount
	}

	repayUSD := number.Truncate(repay.Mul(debtPriceUSD))
	seizeUSD := number.Truncate(repayUSD.Mul(one.Add(pool.LiquidationBonus)))
	seizeAmount := number.Div(seizeUSD, collateralPriceUSD)

	if seizeAmount.GreaterThan(collateralBalance) {
		seizeAmount = collateralBalance
		seizeUSD = number.Truncate(seizeAmount.Mul(collateralPriceUSD))
	}

	return &core.SeizePlan{
		RepayAmount: repay,
		RepayUSD:    repayUSD,
		Refund:      requestedRepay.Sub(repay),
		SeizeAmount: seizeAmount,
		SeizeUSD:    seizeUSD,
	}, nil
}
