package custody

import (
	"context"

	"lagoon/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type custodyStore struct {
	db *db.DB
}

// New new custody store
func New(db *db.DB) core.ICustodyStore {
	return &custodyStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.CustodyAccount{})
		if err := tx.AutoMigrate(core.CustodyAccount{}).Error; err != nil {
			return err
		}

		if err := tx.AutoMigrate(core.Transfer{}).Error; err != nil {
			return err
		}

		if err := tx.AutoMigrate(core.Deposit{}).Error; err != nil {
			return err
		}

		return nil
	})
}

// FindAccount returns a zero-balance row when the account does not exist yet.
// The row is persisted on the first SaveAccount.
func (s *custodyStore) FindAccount(ctx context.Context, userID, assetID string) (*core.CustodyAccount, error) {
	var account core.CustodyAccount
	if err := s.db.View().
		Where("user_id = ? AND asset_id = ?", userID, assetID).
		First(&account).Error; err != nil {
		if store.IsErrNotFound(err) {
			return &core.CustodyAccount{UserID: userID, AssetID: assetID}, nil
		}

		return nil, err
	}

	return &account, nil
}

func (s *custodyStore) SaveAccount(ctx context.Context, tx *db.DB, account *core.CustodyAccount) error {
	if account.ID == 0 {
		return tx.Update().Create(account).Error
	}

	version := account.Version
	account.Version++

	update := tx.Update().Model(core.CustodyAccount{}).
		Where("id = ? AND version = ?", account.ID, version).
		Update(map[string]interface{}{
			"balance": account.Balance,
			"version": account.Version,
		})
	if update.Error != nil {
		return update.Error
	}

	if update.RowsAffected == 0 {
		return core.ErrOptimisticLock
	}

	return nil
}

// CreateTransfer is idempotent on trace id. Replaying an event enqueues the
// same transfer at most once.
func (s *custodyStore) CreateTransfer(ctx context.Context, tx *db.DB, transfer *core.Transfer) error {
	return tx.Update().
		Where("trace_id = ?", transfer.TraceID).
		FirstOrCreate(transfer).Error
}

func (s *custodyStore) ListPendingTransfers(ctx context.Context, limit int) ([]*core.Transfer, error) {
	var transfers []*core.Transfer
	if err := s.db.View().
		Where("status = ?", core.TransferStatusPending).
		Order("id").
		Limit(limit).
		Find(&transfers).Error; err != nil {
		return nil, err
	}

	return transfers, nil
}

func (s *custodyStore) CreateDeposit(ctx context.Context, tx *db.DB, deposit *core.Deposit) (bool, error) {
	var existing core.Deposit
	err := tx.Update().Where("snapshot_id = ?", deposit.SnapshotID).First(&existing).Error
	if err == nil {
		return false, nil
	}

	if !store.IsErrNotFound(err) {
		return false, err
	}

	return true, tx.Update().Create(deposit).Error
}

func (s *custodyStore) MarkTransferHandled(ctx context.Context, tx *db.DB, transfer *core.Transfer) error {
	version := transfer.Version
	transfer.Status = core.TransferStatusHandled
	transfer.Version++

	update := tx.Update().Model(core.Transfer{}).
		Where("id = ? AND version = ?", transfer.ID, version).
		Update(map[string]interface{}{
			"status":  transfer.Status,
			"version": transfer.Version,
		})
	if update.Error != nil {
		return update.Error
	}

	if update.RowsAffected == 0 {
		return core.ErrOptimisticLock
	}

	return nil
}
