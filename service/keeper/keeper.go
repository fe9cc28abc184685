package keeper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lagoon/core"
	"lagoon/pkg/ledger"
	"lagoon/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

const lastRunKey = "keeper_last_run"

// Config keeper service config
type Config struct {
	CheckInterval         time.Duration
	MaxLiquidationsPerRun int
	// MinHealthFactor positions below this line become candidates
	MinHealthFactor decimal.Decimal
	// CloseFraction share of the largest debt repaid per attempt
	CloseFraction decimal.Decimal
}

type txRunner interface {
	Tx(fn func(tx *db.DB) error) error
}

type keeperService struct {
	tx         txRunner
	keepers    core.IKeeperStore
	pools      core.IPoolStore
	tokens     core.ITokenStore
	positions  core.IPositionStore
	risk       core.IRiskService
	oracle     core.IPriceOracleService
	lending    core.ILendingService
	properties property.Store
	system     *core.System
	cfg        Config

	mux     sync.Mutex
	lastRun time.Time
	loaded  bool
	scanned int
}

// New new keeper service. Liquidations run under the system client id, which
// must hold the KEEPER role.
func New(
	db *db.DB,
	keepers core.IKeeperStore,
	pools core.IPoolStore,
	tokens core.ITokenStore,
	positions core.IPositionStore,
	risk core.IRiskService,
	oracle core.IPriceOracleService,
	lending core.ILendingService,
	properties property.Store,
	system *core.System,
	cfg Config,
) core.IKeeperService {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Minute
	}

	if cfg.MaxLiquidationsPerRun <= 0 {
		cfg.MaxLiquidationsPerRun = 10
	}

	if !cfg.MinHealthFactor.IsPositive() {
		cfg.MinHealthFactor = decimal.New(1, 0)
	}

	if !cfg.CloseFraction.IsPositive() {
		cfg.CloseFraction = decimal.New(5, -1)
	}

	return &keeperService{
		tx:         db,
		keepers:    keepers,
		pools:      pools,
		tokens:     tokens,
		positions:  positions,
		risk:       risk,
		oracle:     oracle,
		lending:    lending,
		properties: properties,
		system:     system,
		cfg:        cfg,
	}
}

func (s *keeperService) TrackUser(ctx context.Context, poolID uint64, userID string) error {
	if _, err := s.pools.Find(ctx, poolID); err != nil {
		return err
	}

	return s.keepers.AddUser(ctx, poolID, userID)
}

func (s *keeperService) UntrackUser(ctx context.Context, poolID uint64, userID string) error {
	return s.keepers.RemoveUser(ctx, poolID, userID)
}

func (s *keeperService) TrackedUsers(ctx context.Context, poolID uint64) ([]*core.TrackedUser, error) {
	return s.keepers.ListUsers(ctx, poolID)
}

// CheckUpkeep walks the tracked set in insertion order. The scan is all or
// nothing: a failed health read aborts it without advancing the last-run
// mark, so the caller backs off and the same window is rescanned.
func (s *keeperService) CheckUpkeep(ctx context.Context, now time.Time) ([]*core.Candidate, error) {
	if now.Sub(s.lastRunAt(ctx)) < s.cfg.CheckInterval {
		return nil, nil
	}

	users, err := s.keepers.AllUsers(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []*core.Candidate
	for _, user := range users {
		snapshot, err := s.risk.GetHealthSnapshot(ctx, user.PoolID, user.UserID)
		if err != nil {
			return nil, fmt.Errorf("scan %s in pool %d: %w", user.UserID, user.PoolID, err)
		}

		if snapshot.HealthFactor.GreaterThanOrEqual(s.cfg.MinHealthFactor) {
			continue
		}

		candidates = append(candidates, &core.Candidate{
			PoolID:       user.PoolID,
			UserID:       user.UserID,
			HealthFactor: snapshot.HealthFactor,
		})

		if len(candidates) >= s.cfg.MaxLiquidationsPerRun {
			break
		}
	}

	if err := s.markRun(ctx, now, len(users)); err != nil {
		return nil, err
	}

	return candidates, nil
}

// PerformUpkeep attempts every candidate independently. Positions move
// between scan and act, so each liquidation re-validates against current
// state; a candidate that healed or failed is reported and skipped.
func (s *keeperService) PerformUpkeep(ctx context.Context, candidates []*core.Candidate) (*core.KeeperRun, error) {
	log := logger.FromContext(ctx)

	run := &core.KeeperRun{Scanned: s.scanCount()}
	for _, candidate := range candidates {
		run.Candidates = append(run.Candidates, fmt.Sprintf("%d:%s", candidate.PoolID, candidate.UserID))

		if err := s.liquidate(ctx, candidate); err != nil {
			run.Failed++
			log.WithError(err).Errorf("keeper: liquidate %s in pool %d", candidate.UserID, candidate.PoolID)
			continue
		}

		run.Liquidated++
	}

	if err := s.tx.Tx(func(tx *db.DB) error {
		return s.keepers.CreateRun(ctx, tx, run)
	}); err != nil {
		return nil, err
	}

	return run, nil
}

// liquidate repays a fraction of the candidate's most valuable debt against
// their most valuable collateral.
func (s *keeperService) liquidate(ctx context.Context, candidate *core.Candidate) error {
	pool, err := s.pools.Find(ctx, candidate.PoolID)
	if err != nil {
		return err
	}

	positions, err := s.positions.ListByUser(ctx, candidate.PoolID, candidate.UserID)
	if err != nil {
		return err
	}

	now := time.Now()
	var (
		debtAsset       string
		debtBalance     decimal.Decimal
		debtUSD         decimal.Decimal
		collateralAsset string
		collateralUSD   decimal.Decimal
	)

	for _, position := range positions {
		if position.Zero() {
			continue
		}

		token, err := s.tokens.Find(ctx, candidate.PoolID, position.AssetID)
		if err != nil {
			return err
		}

		price, err := s.priceOf(ctx, position.AssetID)
		if err != nil {
			return err
		}

		accrued := ledger.Preview(token, pool.ReserveFactor, now)

		if borrowed := ledger.BorrowedBalance(position, accrued); borrowed.IsPositive() {
			if value := borrowed.Mul(price); value.GreaterThan(debtUSD) {
				debtAsset, debtBalance, debtUSD = position.AssetID, borrowed, value
			}
		}

		if supplied := ledger.SuppliedBalance(position, accrued); supplied.IsPositive() {
			if value := supplied.Mul(price); value.GreaterThan(collateralUSD) {
				collateralAsset, collateralUSD = position.AssetID, value
			}
		}
	}

	if debtAsset == "" || collateralAsset == "" {
		return core.ErrUserHealthy
	}

	repay := number.Truncate(debtBalance.Mul(s.cfg.CloseFraction))
	if !repay.IsPositive() {
		repay = debtBalance
	}

	_, err = s.lending.Liquidate(ctx, s.system.ClientID, candidate.UserID, candidate.PoolID, debtAsset, repay, collateralAsset)
	return err
}

func (s *keeperService) priceOf(ctx context.Context, assetID string) (decimal.Decimal, error) {
	price, stale, err := s.oracle.GetPriceUSD(ctx, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	if stale {
		return decimal.Zero, core.ErrStalePrice
	}

	return price, nil
}

// lastRunAt reads the persisted mark once, then serves from memory.
func (s *keeperService) lastRunAt(ctx context.Context) time.Time {
	s.mux.Lock()
	defer s.mux.Unlock()

	if s.loaded {
		return s.lastRun
	}

	if v, err := s.properties.Get(ctx, lastRunKey); err == nil {
		if sec := v.Int64(); sec > 0 {
			s.lastRun = time.Unix(sec, 0)
		}
	}

	s.loaded = true
	return s.lastRun
}

func (s *keeperService) markRun(ctx context.Context, now time.Time, scanned int) error {
	if err := s.properties.Save(ctx, lastRunKey, now.Unix()); err != nil {
		return err
	}

	s.mux.Lock()
	s.lastRun = now
	s.loaded = true
	s.scanned = scanned
	s.mux.Unlock()

	return nil
}

func (s *keeperService) scanCount() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.scanned
}
