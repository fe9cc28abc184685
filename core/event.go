package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// EventAction names a state transition in the ledger event log.
type EventAction string

const (
	// ActionLend user supplied collateral
	ActionLend EventAction = "lend"
	// ActionWithdraw user withdrew collateral
	ActionWithdraw EventAction = "withdraw"
	// ActionBorrow user took debt
	ActionBorrow EventAction = "borrow"
	// ActionRepay user repaid debt
	ActionRepay EventAction = "repay"
	// ActionLiquidate liquidator repaid debt and seized collateral
	ActionLiquidate EventAction = "liquidate"
	// ActionSetRiskParams risk admin changed token risk parameters
	ActionSetRiskParams EventAction = "set_risk_params"
	// ActionSetReserveFactor risk admin changed the pool reserve factor
	ActionSetReserveFactor EventAction = "set_reserve_factor"
	// ActionPause pool mutations suspended
	ActionPause EventAction = "pause"
	// ActionUnpause pool mutations resumed
	ActionUnpause EventAction = "unpause"
)

// Extra keys shared by event payloads.
const (
	EventKeyNewBalance      = "new_balance"
	EventKeyRefund          = "refund"
	EventKeyLiquidator      = "liquidator"
	EventKeyDebtAsset       = "debt_asset"
	EventKeyRepayAmount     = "repay_amount"
	EventKeyCollateralAsset = "collateral_asset"
	EventKeySeizedAmount    = "seized_amount"
	EventKeyParams          = "params"
	EventKeyReserveFactor   = "reserve_factor"
)

// EventExtraData event payload
type EventExtraData map[string]interface{}

// NewEventExtra new extra data
func NewEventExtra() EventExtraData {
	return make(EventExtraData)
}

// Put set value with key
func (e EventExtraData) Put(key string, value interface{}) EventExtraData {
	e[key] = value
	return e
}

// Decimal read value as decimal, zero when absent
func (e EventExtraData) Decimal(key string) decimal.Decimal {
	v, ok := e[key]
	if !ok {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(cast.ToString(v))
	if err != nil {
		return decimal.Zero
	}

	return d
}

// String read value as string
func (e EventExtraData) String(key string) string {
	return cast.ToString(e[key])
}

// Format marshal extra data as json bytes
func (e EventExtraData) Format() types.JSONText {
	bs, err := json.Marshal(e)
	if err != nil {
		return types.JSONText("{}")
	}

	return types.JSONText(bs)
}

// LedgerEvent is one append-only row of the engine event log. The log plus
// genesis state is sufficient to replay every balance.
type LedgerEvent struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID   string          `sql:"size:36;unique_index:event_trace_idx" json:"trace_id"`
	PoolID    uint64          `sql:"index:event_pool_idx" json:"pool_id"`
	UserID    string          `sql:"size:36;index:event_user_idx" json:"user_id"`
	Action    EventAction     `sql:"size:24" json:"action"`
	AssetID   string          `sql:"size:36" json:"asset_id"`
	Amount    decimal.Decimal `sql:"type:decimal(40,18)" json:"amount"`
	Extra     types.JSONText  `sql:"type:TEXT" json:"extra,omitempty"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// UnmarshalExtra decode the extra column
func (e *LedgerEvent) UnmarshalExtra() EventExtraData {
	extra := NewEventExtra()
	_ = json.Unmarshal(e.Extra, &extra)
	return extra
}

// IEventStore event store interface
type IEventStore interface {
	Create(ctx context.Context, tx *db.DB, event *LedgerEvent) error
	Find(ctx context.Context, traceID string) (*LedgerEvent, error)
	List(ctx context.Context, fromID uint64, limit int) ([]*LedgerEvent, error)
	ListByPool(ctx context.Context, poolID uint64, fromID uint64, limit int) ([]*LedgerEvent, error)
	ListByUser(ctx context.Context, poolID uint64, userID string, fromID uint64, limit int) ([]*LedgerEvent, error)
}
