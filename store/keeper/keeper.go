package keeper

import (
	"context"

	"lagoon/core"

	"github.com/fox-one/pkg/store/db"
)

type keeperStore struct {
	db *db.DB
}

// New new keeper store
func New(db *db.DB) core.IKeeperStore {
	return &keeperStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.TrackedUser{})
		if err := tx.AutoMigrate(core.TrackedUser{}).Error; err != nil {
			return err
		}

		if err := tx.AutoMigrate(core.KeeperRun{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *keeperStore) AddUser(ctx context.Context, poolID uint64, userID string) error {
	user := core.TrackedUser{PoolID: poolID, UserID: userID}
	return s.db.Update().
		Where("pool_id = ? AND user_id = ?", poolID, userID).
		FirstOrCreate(&user).Error
}

func (s *keeperStore) RemoveUser(ctx context.Context, poolID uint64, userID string) error {
	return s.db.Update().
		Where("pool_id = ? AND user_id = ?", poolID, userID).
		Delete(core.TrackedUser{}).Error
}

// ListUsers returns tracked users in insertion order.
func (s *keeperStore) ListUsers(ctx context.Context, poolID uint64) ([]*core.TrackedUser, error) {
	var users []*core.TrackedUser
	if err := s.db.View().
		Where("pool_id = ?", poolID).
		Order("id").
		Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (s *keeperStore) AllUsers(ctx context.Context) ([]*core.TrackedUser, error) {
	var users []*core.TrackedUser
	if err := s.db.View().Order("id").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (s *keeperStore) CreateRun(ctx context.Context, tx *db.DB, run *core.KeeperRun) error {
	return tx.Update().Create(run).Error
}

func (s *keeperStore) ListRuns(ctx context.Context, limit int) ([]*core.KeeperRun, error) {
	var runs []*core.KeeperRun
	if err := s.db.View().
		Order("id DESC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, err
	}

	return runs, nil
}
