package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Pool is an isolated risk domain. Tokens, positions and liquidations never
// cross pool boundaries.
type Pool struct {
	ID        uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Name      string    `sql:"size:64;unique_index:pool_name_idx" json:"name"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	// ReserveFactor (0, 1), share of accrued interest withheld from suppliers
	ReserveFactor decimal.Decimal `sql:"type:decimal(40,18)" json:"reserve_factor"`
	// LiquidationBonus (0, 1), extra collateral value granted to liquidators
	LiquidationBonus decimal.Decimal `sql:"type:decimal(40,18)" json:"liquidation_bonus"`
	Paused           bool            `sql:"default:false" json:"paused"`
	Version          int64           `sql:"default:0" json:"version"`
}

// IPoolStore pool store interface
type IPoolStore interface {
	Create(ctx context.Context, tx *db.DB, pool *Pool) error
	Find(ctx context.Context, id uint64) (*Pool, error)
	FindByName(ctx context.Context, name string) (*Pool, error)
	All(ctx context.Context) ([]*Pool, error)
	Update(ctx context.Context, tx *db.DB, pool *Pool) error
}
