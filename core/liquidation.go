package core

import (
	"github.com/shopspring/decimal"
)

// SeizePlan is the priced outcome of a liquidation before it is applied.
type SeizePlan struct {
	// RepayAmount actually applied to the debt, capped at the debt itself
	RepayAmount decimal.Decimal `json:"repay_amount"`
	RepayUSD    decimal.Decimal `json:"repay_usd"`
	// Refund returned to the liquidator when the requested repay exceeds the debt
	Refund decimal.Decimal `json:"refund"`
	// SeizeAmount of collateral granted, capped at the user's balance
	SeizeAmount decimal.Decimal `json:"seize_amount"`
	SeizeUSD    decimal.Decimal `json:"seize_usd"`
}

// ILiquidationService liquidation math interface
type ILiquidationService interface {
	// PlanSeize prices a liquidation: repay capped at current debt, seize
	// value = repay value grown by the pool bonus, seize amount capped at
	// the user's collateral balance.
	PlanSeize(pool *Pool, requestedRepay, currentDebt, debtPriceUSD, collateralPriceUSD, collateralBalance decimal.Decimal) (*SeizePlan, error)
}
