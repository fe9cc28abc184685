package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Token holds the accrual ledger and the risk parameters of one asset
// inside one pool.
type Token struct {
	ID        uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	PoolID    uint64    `sql:"unique_index:pool_asset_idx" json:"pool_id"`
	AssetID   string    `sql:"size:36;unique_index:pool_asset_idx" json:"asset_id"`
	Symbol    string    `sql:"size:20" json:"symbol"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// ledger state
	Cash           decimal.Decimal `sql:"type:decimal(40,18)" json:"cash"`
	Borrows        decimal.Decimal `sql:"type:decimal(40,18)" json:"borrows"`
	Reserves       decimal.Decimal `sql:"type:decimal(40,18)" json:"reserves"`
	IndexSupply    decimal.Decimal `sql:"type:decimal(40,18)" json:"index_supply"`
	IndexBorrow    decimal.Decimal `sql:"type:decimal(40,18)" json:"index_borrow"`
	LastAccrueTime time.Time       `json:"last_accrue_time"`

	// risk parameters
	LTV                  decimal.Decimal `sql:"type:decimal(40,18)" json:"ltv"`
	LiquidationThreshold decimal.Decimal `sql:"type:decimal(40,18)" json:"liquidation_threshold"`
	Kink                 decimal.Decimal `sql:"type:decimal(40,18)" json:"kink"`
	BaseRate             decimal.Decimal `sql:"type:decimal(40,18)" json:"base_rate"`
	Slope1               decimal.Decimal `sql:"type:decimal(40,18)" json:"slope1"`
	Slope2               decimal.Decimal `sql:"type:decimal(40,18)" json:"slope2"`

	Version int64 `sql:"default:0" json:"version"`
}

// RiskParams is the per-token risk configuration applied by a risk admin.
type RiskParams struct {
	LTV                  decimal.Decimal `json:"ltv"`
	LiquidationThreshold decimal.Decimal `json:"liquidation_threshold"`
	Kink                 decimal.Decimal `json:"kink"`
	BaseRate             decimal.Decimal `json:"base_rate"`
	Slope1               decimal.Decimal `json:"slope1"`
	Slope2               decimal.Decimal `json:"slope2"`
}

// Validate rejects parameter sets that would break the risk engine.
// LT must not be below LTV, otherwise a position could be created that is
// liquidatable the moment it is opened.
func (p RiskParams) Validate() error {
	one := decimal.New(1, 0)

	switch {
	case p.LTV.IsNegative() || p.LTV.GreaterThan(one):
		return ErrInvalidRiskParams
	case p.LiquidationThreshold.LessThan(p.LTV) || p.LiquidationThreshold.GreaterThan(one):
		return ErrInvalidRiskParams
	case p.Kink.IsNegative() || p.Kink.GreaterThan(one):
		return ErrInvalidRiskParams
	case p.BaseRate.IsNegative() || p.Slope1.IsNegative() || p.Slope2.IsNegative():
		return ErrInvalidRiskParams
	}

	return nil
}

// Apply copies the parameter set onto the token.
func (t *Token) Apply(p RiskParams) {
	t.LTV = p.LTV
	t.LiquidationThreshold = p.LiquidationThreshold
	t.Kink = p.Kink
	t.BaseRate = p.BaseRate
	t.Slope1 = p.Slope1
	t.Slope2 = p.Slope2
}

// ITokenStore token store interface
type ITokenStore interface {
	Create(ctx context.Context, tx *db.DB, token *Token) error
	Find(ctx context.Context, poolID uint64, assetID string) (*Token, error)
	ListByPool(ctx context.Context, poolID uint64) ([]*Token, error)
	All(ctx context.Context) ([]*Token, error)
	Update(ctx context.Context, tx *db.DB, token *Token) error
}
