package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Position tracks what one user supplied and borrowed of one token.
// Principals are stored together with the index at which they were last
// re-based; live balances follow the index ratio.
type Position struct {
	ID        uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	PoolID    uint64    `sql:"unique_index:pool_user_asset_idx" json:"pool_id"`
	UserID    string    `sql:"size:36;unique_index:pool_user_asset_idx" json:"user_id"`
	AssetID   string    `sql:"size:36;unique_index:pool_user_asset_idx" json:"asset_id"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	SuppliedPrincipal decimal.Decimal `sql:"type:decimal(40,18)" json:"supplied_principal"`
	SuppliedIndex     decimal.Decimal `sql:"type:decimal(40,18)" json:"supplied_index"`
	BorrowedPrincipal decimal.Decimal `sql:"type:decimal(40,18)" json:"borrowed_principal"`
	BorrowedIndex     decimal.Decimal `sql:"type:decimal(40,18)" json:"borrowed_index"`

	Version int64 `sql:"default:0" json:"version"`
}

// Zero reports whether the position carries no balance on either side.
func (p *Position) Zero() bool {
	return p.SuppliedPrincipal.IsZero() && p.BorrowedPrincipal.IsZero()
}

// IPositionStore position store interface.
//
// Find returns an initialized zero position when the user has never touched
// the token, so callers never deal with record-not-found.
type IPositionStore interface {
	Find(ctx context.Context, poolID uint64, userID, assetID string) (*Position, error)
	ListByUser(ctx context.Context, poolID uint64, userID string) ([]*Position, error)
	ListByToken(ctx context.Context, poolID uint64, assetID string) ([]*Position, error)
	Save(ctx context.Context, tx *db.DB, position *Position) error
}
