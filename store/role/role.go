package role

import (
	"context"

	"lagoon/core"

	"github.com/fox-one/pkg/store/db"
)

type roleStore struct {
	db *db.DB
}

// New new role store
func New(db *db.DB) core.IRoleStore {
	return &roleStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.UserRole{})
		if err := tx.AutoMigrate(core.UserRole{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *roleStore) Grant(ctx context.Context, userID, role string) error {
	grant := core.UserRole{UserID: userID, Role: role}
	return s.db.Update().
		Where("user_id = ? AND role = ?", userID, role).
		FirstOrCreate(&grant).Error
}

func (s *roleStore) Revoke(ctx context.Context, userID, role string) error {
	return s.db.Update().
		Where("user_id = ? AND role = ?", userID, role).
		Delete(core.UserRole{}).Error
}

func (s *roleStore) ListByUser(ctx context.Context, userID string) ([]string, error) {
	var grants []*core.UserRole
	if err := s.db.View().
		Where("user_id = ?", userID).
		Order("id").
		Find(&grants).Error; err != nil {
		return nil, err
	}

	roles := make([]string, 0, len(grants))
	for _, grant := range grants {
		roles = append(roles, grant.Role)
	}

	return roles, nil
}
