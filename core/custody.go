package core

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/fox-one/msgpack"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// TransferStatus transfer status
type TransferStatus int

const (
	// TransferStatusPending waiting to be sent by the cashier
	TransferStatusPending TransferStatus = iota
	// TransferStatusHandled sent to the external ledger
	TransferStatusHandled
)

// CustodyAccount mirrors a user balance on the external custody ledger.
// The deposit syncer credits it; engine debits and credits run inside the
// same transaction as the state transition they belong to.
type CustodyAccount struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID    string          `sql:"size:36;unique_index:custody_user_asset_idx" json:"user_id"`
	AssetID   string          `sql:"size:36;unique_index:custody_user_asset_idx" json:"asset_id"`
	Balance   decimal.Decimal `sql:"type:decimal(40,18)" json:"balance"`
	Version   int64           `sql:"default:0" json:"version"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Transfer is one outbound payment instruction for the external ledger.
type Transfer struct {
	ID         uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID    string          `sql:"size:36;unique_index:transfer_trace_idx" json:"trace_id"`
	OpponentID string          `sql:"size:36" json:"opponent_id"`
	AssetID    string          `sql:"size:36" json:"asset_id"`
	Amount     decimal.Decimal `sql:"type:decimal(40,18)" json:"amount"`
	Memo       string          `sql:"size:200" json:"memo"`
	Status     TransferStatus  `sql:"default:0;index:transfer_status_idx" json:"status"`
	Version    int64           `sql:"default:0" json:"version"`
	CreatedAt  time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TransferAction is the structured transfer memo.
type TransferAction struct {
	Source   EventAction `msgpack:"s,omitempty"`
	PoolID   uint64      `msgpack:"p,omitempty"`
	FollowID string      `msgpack:"f,omitempty"`
}

// Encode pack the action into a memo string
func (a TransferAction) Encode() string {
	bts, err := msgpack.Marshal(a)
	if err != nil {
		return ""
	}

	return base64.StdEncoding.EncodeToString(bts)
}

// DecodeTransferAction unpack a memo string
func DecodeTransferAction(memo string) (*TransferAction, error) {
	bts, err := base64.StdEncoding.DecodeString(memo)
	if err != nil {
		return nil, err
	}

	var action TransferAction
	if err := msgpack.Unmarshal(bts, &action); err != nil {
		return nil, err
	}

	return &action, nil
}

// Snapshot is one inbound payment observed on the external ledger.
type Snapshot struct {
	SnapshotID string          `json:"snapshot_id"`
	OpponentID string          `json:"opponent_id"`
	AssetID    string          `json:"asset_id"`
	Amount     decimal.Decimal `json:"amount"`
	Memo       string          `json:"memo"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Deposit is a credited snapshot. The unique snapshot id is what makes
// replaying the deposit stream safe.
type Deposit struct {
	ID         uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	SnapshotID string          `sql:"size:36;unique_index:deposit_snapshot_idx" json:"snapshot_id"`
	UserID     string          `sql:"size:36;index:deposit_user_idx" json:"user_id"`
	AssetID    string          `sql:"size:36" json:"asset_id"`
	Amount     decimal.Decimal `sql:"type:decimal(40,18)" json:"amount"`
	Memo       string          `sql:"size:200" json:"memo"`
	CreatedAt  time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// ICustodyStore custody store interface
type ICustodyStore interface {
	FindAccount(ctx context.Context, userID, assetID string) (*CustodyAccount, error)
	SaveAccount(ctx context.Context, tx *db.DB, account *CustodyAccount) error
	CreateTransfer(ctx context.Context, tx *db.DB, transfer *Transfer) error
	ListPendingTransfers(ctx context.Context, limit int) ([]*Transfer, error)
	MarkTransferHandled(ctx context.Context, tx *db.DB, transfer *Transfer) error
	// CreateDeposit records the snapshot once, reporting false when it was
	// already credited
	CreateDeposit(ctx context.Context, tx *db.DB, deposit *Deposit) (bool, error)
}

// CustodyLedger is the capability the accounting core calls exactly once per
// completed state transition. A failed call aborts the whole operation, so
// both methods run against the caller's transaction handle.
type CustodyLedger interface {
	// Debit takes amount of asset from the user's external balance.
	Debit(ctx context.Context, tx *db.DB, userID, assetID string, amount decimal.Decimal, action TransferAction) error
	// Credit releases amount of asset to the user.
	Credit(ctx context.Context, tx *db.DB, userID, assetID string, amount decimal.Decimal, action TransferAction) error
}

// IWalletService pushes transfers to, and reads snapshots from, the external
// ledger network.
type IWalletService interface {
	HandleTransfer(ctx context.Context, transfer *Transfer) error
	PullSnapshots(ctx context.Context, offset time.Time, limit int) ([]*Snapshot, time.Time, error)
}
