package access

import (
	"context"
	"time"

	"lagoon/core"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"
)

// Config access control config
type Config struct {
	// Admins always hold ADMIN and RISK_ADMIN, so a fresh deployment can be
	// administered before any role rows exist.
	Admins []string
}

type accessService struct {
	roles  core.IRoleStore
	admins map[string]bool
	cache  gcache.Cache
	sf     singleflight.Group
}

// New new access control backed by the role store. Role reads are cached
// briefly; a revoke may take up to the cache window to bite.
func New(roles core.IRoleStore, cfg Config) core.IAccessControl {
	admins := make(map[string]bool, len(cfg.Admins))
	for _, admin := range cfg.Admins {
		admins[admin] = true
	}

	return &accessService{
		roles:  roles,
		admins: admins,
		cache:  gcache.New(512).LRU().Build(),
	}
}

func (s *accessService) HasRole(ctx context.Context, userID, role string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	if s.admins[userID] && (role == core.RoleAdmin || role == core.RoleRiskAdmin) {
		return true, nil
	}

	roles, err := s.userRoles(ctx, userID)
	if err != nil {
		return false, err
	}

	for _, r := range roles {
		if r == role {
			return true, nil
		}
	}

	return false, nil
}

func (s *accessService) userRoles(ctx context.Context, userID string) ([]string, error) {
	if v, err := s.cache.Get(userID); err == nil {
		return v.([]string), nil
	}

	roles, err, _ := s.sf.Do(userID, func() (interface{}, error) {
		roles, err := s.roles.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}

		_ = s.cache.SetWithExpire(userID, roles, time.Minute)
		return roles, nil
	})
	if err != nil {
		return nil, err
	}

	return roles.([]string), nil
}
