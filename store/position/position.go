package position

import (
	"context"

	"lagoon/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type positionStore struct {
	db *db.DB
}

// New new position store
func New(db *db.DB) core.IPositionStore {
	return &positionStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Position{})
		if err := tx.AutoMigrate(core.Position{}).Error; err != nil {
			return err
		}

		return nil
	})
}

// Find returns the stored position, or a zero position keyed to the query
// when the user never touched the token. Full exits keep the row with zero
// principals, so callers treat both shapes the same way.
func (s *positionStore) Find(ctx context.Context, poolID uint64, userID, assetID string) (*core.Position, error) {
	var position core.Position
	err := s.db.View().
		Where("pool_id = ? AND user_id = ? AND asset_id = ?", poolID, userID, assetID).
		First(&position).Error
	if err != nil {
		if store.IsErrNotFound(err) {
			return &core.Position{
				PoolID:  poolID,
				UserID:  userID,
				AssetID: assetID,
			}, nil
		}

		return nil, err
	}

	return &position, nil
}

func (s *positionStore) ListByUser(ctx context.Context, poolID uint64, userID string) ([]*core.Position, error) {
	var positions []*core.Position
	if err := s.db.View().
		Where("pool_id = ? AND user_id = ?", poolID, userID).
		Order("id").
		Find(&positions).Error; err != nil {
		return nil, err
	}

	return positions, nil
}

func (s *positionStore) ListByToken(ctx context.Context, poolID uint64, assetID string) ([]*core.Position, error) {
	var positions []*core.Position
	if err := s.db.View().
		Where("pool_id = ? AND asset_id = ?", poolID, assetID).
		Order("id").
		Find(&positions).Error; err != nil {
		return nil, err
	}

	return positions, nil
}

// Save inserts the row on first touch, afterwards updates every balance
// column explicitly under the version guard: principals shrink to zero on
// full exits and must not be skipped as empty values.
func (s *positionStore) Save(ctx context.Context, tx *db.DB, position *core.Position) error {
	if position.ID == 0 {
		return tx.Update().Create(position).Error
	}

	version := position.Version
	position.Version++

	update := tx.Update().Model(core.Position{}).
		Where("id = ? AND version = ?", position.ID, version).
		Update(map[string]interface{}{
			"supplied_principal": position.SuppliedPrincipal,
			"supplied_index":     position.SuppliedIndex,
			"borrowed_principal": position.BorrowedPrincipal,
			"borrowed_index":     position.BorrowedIndex,
			"version":            position.Version,
		})
	if update.Error != nil {
		return update.Error
	}

	if update.RowsAffected == 0 {
		return core.ErrOptimisticLock
	}

	return nil
}
