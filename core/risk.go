package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// HealthFactorMax is the sentinel health factor of a position with no debt.
var HealthFactorMax = decimal.New(1, 18)

// HealthSnapshot is a derived view of one user in one pool: liquidation
// threshold weighted collateral value against raw debt value.
type HealthSnapshot struct {
	CollateralUSD decimal.Decimal `json:"collateral_usd"`
	BorrowUSD     decimal.Decimal `json:"borrow_usd"`
	HealthFactor  decimal.Decimal `json:"health_factor"`
}

// Liquidatable reports whether the snapshot is below the liquidation line.
func (s *HealthSnapshot) Liquidatable() bool {
	return s.HealthFactor.LessThan(decimal.New(1, 0))
}

// HypotheticalChange shifts a health query by a planned redeem and a planned
// new borrow, so the gates in withdraw and borrow price the state the user
// is about to create rather than the one that exists.
type HypotheticalChange struct {
	RedeemAssetID string          `json:"redeem_asset_id,omitempty"`
	RedeemAmount  decimal.Decimal `json:"redeem_amount,omitempty"`
	BorrowAssetID string          `json:"borrow_asset_id,omitempty"`
	BorrowAmount  decimal.Decimal `json:"borrow_amount,omitempty"`
}

// IRiskService risk and health engine interface
type IRiskService interface {
	GetHealthSnapshot(ctx context.Context, poolID uint64, userID string) (*HealthSnapshot, error)
	GetHypotheticalHealth(ctx context.Context, poolID uint64, userID string, change HypotheticalChange) (*HealthSnapshot, error)
	GetBorrowPowerUSD(ctx context.Context, poolID uint64, userID string) (decimal.Decimal, error)
	IsLiquidatable(ctx context.Context, poolID uint64, userID string) (bool, error)
}
