package custody

import (
	"context"

	"lagoon/core"

	"github.com/fox-one/pkg/store/db"
	foxuuid "github.com/fox-one/pkg/uuid"
	"github.com/shopspring/decimal"
)

type custodyService struct {
	custody core.ICustodyStore
}

// New new custody ledger over the mirrored account store
func New(custody core.ICustodyStore) core.CustodyLedger {
	return &custodyService{custody: custody}
}

// Debit spends from the user's mirrored balance inside the caller's
// transaction. A concurrent debit of the same account loses on the version
// check and rolls the whole operation back.
func (s *custodyService) Debit(ctx context.Context, tx *db.DB, userID, assetID string, amount decimal.Decimal, action core.TransferAction) error {
	if !amount.IsPositive() {
		return core.ErrZeroAmount
	}

	account, err := s.custody.FindAccount(ctx, userID, assetID)
	if err != nil {
		return err
	}

	if account.Balance.LessThan(amount) {
		return core.ErrInsufficientBalance
	}

	account.Balance = account.Balance.Sub(amount)
	return s.custody.SaveAccount(ctx, tx, account)
}

// Credit enqueues an outbound transfer for the cashier. The trace id is
// derived from the action follow id, so replays collapse onto one transfer.
func (s *custodyService) Credit(ctx context.Context, tx *db.DB, userID, assetID string, amount decimal.Decimal, action core.TransferAction) error {
	if !amount.IsPositive() {
		return core.ErrZeroAmount
	}

	transfer := &core.Transfer{
		TraceID:    foxuuid.Modify(action.FollowID, "credit:"+assetID),
		OpponentID: userID,
		AssetID:    assetID,
		Amount:     amount,
		Memo:       action.Encode(),
		Status:     core.TransferStatusPending,
	}

	return s.custody.CreateTransfer(ctx, tx, transfer)
}
