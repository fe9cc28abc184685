package token

import (
	"context"

	"lagoon/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type tokenStore struct {
	db *db.DB
}

// New new token store
func New(db *db.DB) core.ITokenStore {
	return &tokenStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Token{})
		if err := tx.AutoMigrate(core.Token{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *tokenStore) Create(ctx context.Context, tx *db.DB, token *core.Token) error {
	return tx.Update().Create(token).Error
}

func (s *tokenStore) Find(ctx context.Context, poolID uint64, assetID string) (*core.Token, error) {
	var token core.Token
	if err := s.db.View().
		Where("pool_id = ? AND asset_id = ?", poolID, assetID).
		First(&token).Error; err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.ErrInvalidToken
		}

		return nil, err
	}

	return &token, nil
}

func (s *tokenStore) ListByPool(ctx context.Context, poolID uint64) ([]*core.Token, error) {
	var tokens []*core.Token
	if err := s.db.View().
		Where("pool_id = ?", poolID).
		Order("id").
		Find(&tokens).Error; err != nil {
		return nil, err
	}

	return tokens, nil
}

func (s *tokenStore) All(ctx context.Context) ([]*core.Token, error) {
	var tokens []*core.Token
	if err := s.db.View().Order("id").Find(&tokens).Error; err != nil {
		return nil, err
	}

	return tokens, nil
}

// Update writes every mutable column explicitly: balances and indices may
// legitimately return to zero and must not be skipped as empty values.
func (s *tokenStore) Update(ctx context.Context, tx *db.DB, token *core.Token) error {
	version := token.Version
	token.Version++

	update := tx.Update().Model(core.Token{}).
		Where("id = ? AND version = ?", token.ID, version).
		Update(map[string]interface{}{
			"cash":                  token.Cash,
			"borrows":               token.Borrows,
			"reserves":              token.Reserves,
			"index_supply":          token.IndexSupply,
			"index_borrow":          token.IndexBorrow,
			"last_accrue_time":      token.LastAccrueTime,
			"ltv":                   token.LTV,
			"liquidation_threshold": token.LiquidationThreshold,
			"kink":                  token.Kink,
			"base_rate":             token.BaseRate,
			"slope1":                token.Slope1,
			"slope2":                token.Slope2,
			"version":               token.Version,
		})
	if update.Error != nil {
		return update.Error
	}

	if update.RowsAffected == 0 {
		return core.ErrOptimisticLock
	}

	return nil
}
