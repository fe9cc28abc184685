package pool

import (
	"context"

	"lagoon/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type poolStore struct {
	db *db.DB
}

// New new pool store
func New(db *db.DB) core.IPoolStore {
	return &poolStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Pool{})
		if err := tx.AutoMigrate(core.Pool{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *poolStore) Create(ctx context.Context, tx *db.DB, pool *core.Pool) error {
	return tx.Update().Create(pool).Error
}

func (s *poolStore) Find(ctx context.Context, id uint64) (*core.Pool, error) {
	var pool core.Pool
	if err := s.db.View().Where("id = ?", id).First(&pool).Error; err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.ErrInvalidPool
		}

		return nil, err
	}

	return &pool, nil
}

func (s *poolStore) FindByName(ctx context.Context, name string) (*core.Pool, error) {
	var pool core.Pool
	if err := s.db.View().Where("name = ?", name).First(&pool).Error; err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.ErrInvalidPool
		}

		return nil, err
	}

	return &pool, nil
}

func (s *poolStore) All(ctx context.Context) ([]*core.Pool, error) {
	var pools []*core.Pool
	if err := s.db.View().Order("id").Find(&pools).Error; err != nil {
		return nil, err
	}

	return pools, nil
}

// Update writes mutable columns explicitly so paused can flip back to false.
func (s *poolStore) Update(ctx context.Context, tx *db.DB, pool *core.Pool) error {
	version := pool.Version
	pool.Version++

	update := tx.Update().Model(core.Pool{}).
		Where("id = ? AND version = ?", pool.ID, version).
		Update(map[string]interface{}{
			"reserve_factor":    pool.ReserveFactor,
			"liquidation_bonus": pool.LiquidationBonus,
			"paused":            pool.Paused,
			"version":           pool.Version,
		})
	if update.Error != nil {
		return update.Error
	}

	if update.RowsAffected == 0 {
		return core.ErrOptimisticLock
	}

	return nil
}
