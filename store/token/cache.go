package token

import (
	"context"
	"fmt"
	"time"

	"lagoon/core"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/store/db"
	"golang.org/x/sync/singleflight"
)

// Cache wraps a token store with a small read cache for the hot Find path.
// Writes invalidate so the engine never prices against an old row for long.
func Cache(store core.ITokenStore, exp time.Duration) core.ITokenStore {
	return &cacheTokenStore{
		ITokenStore: store,
		cache:       gcache.New(512).LRU().Expiration(exp).Build(),
		sf:          &singleflight.Group{},
	}
}

type cacheTokenStore struct {
	core.ITokenStore
	cache gcache.Cache
	sf    *singleflight.Group
}

func (s *cacheTokenStore) Find(ctx context.Context, poolID uint64, assetID string) (*core.Token, error) {
	key := s.tokenKey(poolID, assetID)
	if v, err := s.cache.Get(key); err == nil {
		if token, ok := v.(*core.Token); ok {
			return token, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		token, err := s.ITokenStore.Find(ctx, poolID, assetID)
		if err != nil {
			return nil, err
		}

		_ = s.cache.Set(key, token)
		return token, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.Token), nil
}

func (s *cacheTokenStore) Update(ctx context.Context, tx *db.DB, token *core.Token) error {
	if err := s.ITokenStore.Update(ctx, tx, token); err != nil {
		return err
	}

	s.cache.Remove(s.tokenKey(token.PoolID, token.AssetID))
	return nil
}

func (s *cacheTokenStore) Create(ctx context.Context, tx *db.DB, token *core.Token) error {
	if err := s.ITokenStore.Create(ctx, tx, token); err != nil {
		return err
	}

	s.cache.Remove(s.tokenKey(token.PoolID, token.AssetID))
	return nil
}

func (s *cacheTokenStore) tokenKey(poolID uint64, assetID string) string {
	return fmt.Sprintf("token:%d:%s", poolID, assetID)
}
