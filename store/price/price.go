package price

import (
	"context"

	"lagoon/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type priceStore struct {
	db *db.DB
}

// New new price store
func New(db *db.DB) core.IPriceStore {
	return &priceStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.PriceTick{})
		if err := tx.AutoMigrate(core.PriceTick{}).Error; err != nil {
			return err
		}

		return nil
	})
}

// Save upserts the latest tick of an asset. One row per asset; a second
// writer racing on the same asset loses on the version check.
func (s *priceStore) Save(ctx context.Context, tx *db.DB, tick *core.PriceTick) error {
	var existing core.PriceTick
	if err := tx.Update().Where("asset_id = ?", tick.AssetID).First(&existing).Error; err != nil {
		if store.IsErrNotFound(err) {
			return tx.Update().Create(tick).Error
		}

		return err
	}

	update := tx.Update().Model(core.PriceTick{}).
		Where("asset_id = ? AND version = ?", tick.AssetID, existing.Version).
		Update(map[string]interface{}{
			"symbol":    tick.Symbol,
			"price_usd": tick.PriceUSD,
			"time":      tick.Time,
			"content":   tick.Content,
			"version":   existing.Version + 1,
		})
	if update.Error != nil {
		return update.Error
	}

	if update.RowsAffected == 0 {
		return core.ErrOptimisticLock
	}

	return nil
}

func (s *priceStore) Find(ctx context.Context, assetID string) (*core.PriceTick, error) {
	var tick core.PriceTick
	if err := s.db.View().Where("asset_id = ?", assetID).First(&tick).Error; err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.ErrPriceNotFound
		}

		return nil, err
	}

	return &tick, nil
}

func (s *priceStore) All(ctx context.Context) ([]*core.PriceTick, error) {
	var ticks []*core.PriceTick
	if err := s.db.View().Order("asset_id").Find(&ticks).Error; err != nil {
		return nil, err
	}

	return ticks, nil
}
