package core

import (
	"context"
	"time"
)

// Roles consumed through the access control capability.
const (
	RoleAdmin      = "ADMIN"
	RoleRiskAdmin  = "RISK_ADMIN"
	RoleLiquidator = "LIQUIDATOR"
	RoleKeeper     = "KEEPER"
)

// UserRole grants one role to one user.
type UserRole struct {
	ID        uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID    string    `sql:"size:36;unique_index:user_role_idx" json:"user_id"`
	Role      string    `sql:"size:20;unique_index:user_role_idx" json:"role"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// IRoleStore role store interface
type IRoleStore interface {
	Grant(ctx context.Context, userID, role string) error
	Revoke(ctx context.Context, userID, role string) error
	ListByUser(ctx context.Context, userID string) ([]string, error)
}

// IAccessControl is the capability the engine queries before privileged
// operations. Role storage stays outside the accounting core.
type IAccessControl interface {
	HasRole(ctx context.Context, userID, role string) (bool, error)
}
