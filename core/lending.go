package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ILendingService is the mutating surface of the engine. Every call is
// atomic on its pool: accrue first, then mutate, state and custody written
// in one transaction or not at all.
type ILendingService interface {
	Lend(ctx context.Context, userID string, poolID uint64, assetID string, amount decimal.Decimal) (*LedgerEvent, error)
	Withdraw(ctx context.Context, userID string, poolID uint64, assetID string, amount decimal.Decimal) (*LedgerEvent, error)
	Borrow(ctx context.Context, userID string, poolID uint64, assetID string, amount decimal.Decimal) (*LedgerEvent, error)
	Repay(ctx context.Context, userID string, poolID uint64, assetID string, amount decimal.Decimal) (*LedgerEvent, error)
	Liquidate(ctx context.Context, liquidatorID, userID string, poolID uint64, debtAssetID string, repayAmount decimal.Decimal, collateralAssetID string) (*LedgerEvent, error)

	// Accrue advances the token indices to now. Safe to call any time.
	Accrue(ctx context.Context, poolID uint64, assetID string, now time.Time) error

	// pool administration, guarded by access control
	CreatePool(ctx context.Context, actorID, name string, reserveFactor, liquidationBonus decimal.Decimal) (*Pool, error)
	AddToken(ctx context.Context, actorID string, poolID uint64, assetID, symbol string, params RiskParams) (*Token, error)
	SetRiskParams(ctx context.Context, actorID string, poolID uint64, assetID string, params RiskParams) error
	SetReserveFactor(ctx context.Context, actorID string, poolID uint64, reserveFactor decimal.Decimal) error
	SetPaused(ctx context.Context, actorID string, poolID uint64, paused bool) error
}
