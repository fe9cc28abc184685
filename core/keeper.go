package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// TrackedUser is one keeper liquidation candidate. Insertion order is the
// scan order, which keeps batching deterministic.
type TrackedUser struct {
	ID        uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	PoolID    uint64    `sql:"unique_index:tracked_pool_user_idx" json:"pool_id"`
	UserID    string    `sql:"size:36;unique_index:tracked_pool_user_idx" json:"user_id"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// KeeperRun is the audit record of one completed keeper sweep.
type KeeperRun struct {
	ID         uint64         `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Scanned    int            `json:"scanned"`
	Candidates pq.StringArray `sql:"type:varchar(2048)" json:"candidates,omitempty"`
	Liquidated int            `json:"liquidated"`
	Failed     int            `json:"failed"`
	CreatedAt  time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// Candidate is one liquidatable position found by a scan, with the health
// factor measured at scan time.
type Candidate struct {
	PoolID       uint64          `json:"pool_id"`
	UserID       string          `json:"user_id"`
	HealthFactor decimal.Decimal `json:"health_factor"`
}

// IKeeperStore keeper store interface
type IKeeperStore interface {
	AddUser(ctx context.Context, poolID uint64, userID string) error
	RemoveUser(ctx context.Context, poolID uint64, userID string) error
	ListUsers(ctx context.Context, poolID uint64) ([]*TrackedUser, error)
	AllUsers(ctx context.Context) ([]*TrackedUser, error)
	CreateRun(ctx context.Context, tx *db.DB, run *KeeperRun) error
	ListRuns(ctx context.Context, limit int) ([]*KeeperRun, error)
}

// IKeeperService drives automated liquidation. Scanning and acting are
// separate calls so the scan never holds pool locks while liquidations run.
type IKeeperService interface {
	TrackUser(ctx context.Context, poolID uint64, userID string) error
	UntrackUser(ctx context.Context, poolID uint64, userID string) error
	TrackedUsers(ctx context.Context, poolID uint64) ([]*TrackedUser, error)

	// CheckUpkeep scans the tracked set in insertion order and returns at
	// most the configured batch of liquidatable candidates. It returns nil
	// without scanning when the check interval has not elapsed.
	CheckUpkeep(ctx context.Context, now time.Time) ([]*Candidate, error)

	// PerformUpkeep liquidates the candidates one by one, re-validating
	// each against current state. One failed candidate does not stop the
	// rest. Returns the recorded run.
	PerformUpkeep(ctx context.Context, candidates []*Candidate) (*KeeperRun, error)
}
