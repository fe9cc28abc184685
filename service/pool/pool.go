package pool

import (
	"context"
	"time"

	"lagoon/core"
	"lagoon/pkg/ledger"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

var one = decimal.New(1, 0)

// txRunner is the slice of *db.DB the service needs for atomic writes.
type txRunner interface {
	Tx(fn func(tx *db.DB) error) error
}

type lendingService struct {
	tx          txRunner
	pools       core.IPoolStore
	tokens      core.ITokenStore
	positions   core.IPositionStore
	events      core.IEventStore
	custody     core.CustodyLedger
	access      core.IAccessControl
	risk        core.IRiskService
	liquidation core.ILiquidationService
	oracle      core.IPriceOracleService
	locker      *poolLocker
}

// New new lending service
func New(
	db *db.DB,
	pools core.IPoolStore,
	tokens core.ITokenStore,
	positions core.IPositionStore,
	events core.IEventStore,
	custody core.CustodyLedger,
	access core.IAccessControl,
	risk core.IRiskService,
	liquidation core.ILiquidationService,
	oracle core.IPriceOracleService,
) core.ILendingService {
	return &lendingService{
		tx:          db,
		pools:       pools,
		tokens:      tokens,
		positions:   positions,
		events:      events,
		custody:     custody,
		access:      access,
		risk:        risk,
		liquidation: liquidation,
		oracle:      oracle,
		locker:      newPoolLocker(),
	}
}

// loadPool fetches the pool and rejects paused ones. Every state transition
// goes through here after taking the pool lock.
func (s *lendingService) loadPool(ctx context.Context, poolID uint64) (*core.Pool, error) {
	pool, err := s.pools.Find(ctx, poolID)
	if err != nil {
		return nil, err
	}

	if pool.Paused {
		return nil, core.ErrPaused
	}

	return pool, nil
}

func (s *lendingService) userHasDebt(ctx context.Context, poolID uint64, userID string) (bool, error) {
	positions, err := s.positions.ListByUser(ctx, poolID, userID)
	if err != nil {
		return false, err
	}

	for _, position := range positions {
		if position.BorrowedPrincipal.IsPositive() {
			return true, nil
		}
	}

	return false, nil
}

func (s *lendingService) priceOf(ctx context.Context, assetID string) (decimal.Decimal, error) {
	price, stale, err := s.oracle.GetPriceUSD(ctx, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	if stale {
		return decimal.Zero, core.ErrStalePrice
	}

	return price, nil
}

// Accrue advances one token ledger to now. It runs on paused pools too;
// indices must stay current so a resume prices past time correctly.
func (s *lendingService) Accrue(ctx context.Context, poolID uint64, assetID string, now time.Time) error {
	ctx, release, err := s.locker.acquire(ctx, poolID)
	if err != nil {
		return err
	}
	defer release()

	pool, err := s.pools.Find(ctx, poolID)
	if err != nil {
		return err
	}

	token, err := s.tokens.Find(ctx, poolID, assetID)
	if err != nil {
		return err
	}

	last := token.LastAccrueTime
	ledger.Accrue(token, pool.ReserveFactor, now)
	if token.LastAccrueTime.Equal(last) {
		return nil
	}

	return s.tx.Tx(func(tx *db.DB) error {
		return s.tokens.Update(ctx, tx, token)
	})
}
