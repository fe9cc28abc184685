package keeper

import (
	"context"
	"fmt"
	"testing"
	"time"

	"lagoon/core"
	"lagoon/pkg/number"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct{}

func (fakeTx) Tx(fn func(tx *db.DB) error) error { return fn(nil) }

type fakeKeepers struct {
	users []*core.TrackedUser
	runs  []*core.KeeperRun
}

func (s *fakeKeepers) AddUser(ctx context.Context, poolID uint64, userID string) error {
	for _, user := range s.users {
		if user.PoolID == poolID && user.UserID == userID {
			return nil
		}
	}

	s.users = append(s.users, &core.TrackedUser{
		ID:     uint64(len(s.users) + 1),
		PoolID: poolID,
		UserID: userID,
	})
	return nil
}

func (s *fakeKeepers) RemoveUser(ctx context.Context, poolID uint64, userID string) error {
	out := s.users[:0]
	for _, user := range s.users {
		if user.PoolID != poolID || user.UserID != userID {
			out = append(out, user)
		}
	}

	s.users = out
	return nil
}

func (s *fakeKeepers) ListUsers(ctx context.Context, poolID uint64) ([]*core.TrackedUser, error) {
	var out []*core.TrackedUser
	for _, user := range s.users {
		if user.PoolID == poolID {
			out = append(out, user)
		}
	}

	return out, nil
}

func (s *fakeKeepers) AllUsers(ctx context.Context) ([]*core.TrackedUser, error) {
	return s.users, nil
}

func (s *fakeKeepers) CreateRun(ctx context.Context, tx *db.DB, run *core.KeeperRun) error {
	run.ID = uint64(len(s.runs) + 1)
	copied := *run
	s.runs = append(s.runs, &copied)
	return nil
}

func (s *fakeKeepers) ListRuns(ctx context.Context, limit int) ([]*core.KeeperRun, error) {
	return s.runs, nil
}

type fakePools struct {
	pools map[uint64]*core.Pool
}

func (s *fakePools) Create(ctx context.Context, tx *db.DB, pool *core.Pool) error { return nil }
func (s *fakePools) FindByName(ctx context.Context, name string) (*core.Pool, error) {
	return nil, core.ErrInvalidPool
}
func (s *fakePools) All(ctx context.Context) ([]*core.Pool, error)                { return nil, nil }
func (s *fakePools) Update(ctx context.Context, tx *db.DB, pool *core.Pool) error { return nil }

func (s *fakePools) Find(ctx context.Context, id uint64) (*core.Pool, error) {
	pool, ok := s.pools[id]
	if !ok {
		return nil, core.ErrInvalidPool
	}

	return pool, nil
}

type fakeTokens struct {
	tokens map[string]*core.Token
}

func tokenKey(poolID uint64, assetID string) string {
	return fmt.Sprintf("%d/%s", poolID, assetID)
}

func (s *fakeTokens) Create(ctx context.Context, tx *db.DB, token *core.Token) error { return nil }
func (s *fakeTokens) ListByPool(ctx context.Context, poolID uint64) ([]*core.Token, error) {
	return nil, nil
}
func (s *fakeTokens) All(ctx context.Context) ([]*core.Token, error)                 { return nil, nil }
func (s *fakeTokens) Update(ctx context.Context, tx *db.DB, token *core.Token) error { return nil }

func (s *fakeTokens) Find(ctx context.Context, poolID uint64, assetID string) (*core.Token, error) {
	token, ok := s.tokens[tokenKey(poolID, assetID)]
	if !ok {
		return nil, core.ErrInvalidToken
	}

	return token, nil
}

type fakePositions struct {
	rows []*core.Position
}

func (s *fakePositions) Find(ctx context.Context, poolID uint64, userID, assetID string) (*core.Position, error) {
	return &core.Position{PoolID: poolID, UserID: userID, AssetID: assetID}, nil
}
func (s *fakePositions) ListByToken(ctx context.Context, poolID uint64, assetID string) ([]*core.Position, error) {
	return nil, nil
}
func (s *fakePositions) Save(ctx context.Context, tx *db.DB, position *core.Position) error {
	return nil
}

func (s *fakePositions) ListByUser(ctx context.Context, poolID uint64, userID string) ([]*core.Position, error) {
	var out []*core.Position
	for _, row := range s.rows {
		if row.PoolID == poolID && row.UserID == userID {
			out = append(out, row)
		}
	}

	return out, nil
}

type fakeOracle struct {
	prices map[string]decimal.Decimal
	stale  map[string]bool
}

func (s *fakeOracle) SetStaleThreshold(ctx context.Context, d time.Duration) error { return nil }
func (s *fakeOracle) StaleThreshold(ctx context.Context) time.Duration             { return time.Minute }
func (s *fakeOracle) PullPriceTickers(ctx context.Context, t time.Time) ([]*core.PriceData, error) {
	return nil, nil
}

func (s *fakeOracle) GetPriceUSD(ctx context.Context, assetID string) (decimal.Decimal, bool, error) {
	price, ok := s.prices[assetID]
	if !ok {
		return decimal.Zero, false, core.ErrPriceNotFound
	}

	return price, s.stale[assetID], nil
}

func healthKey(poolID uint64, userID string) string {
	return fmt.Sprintf("%d:%s", poolID, userID)
}

type fakeRisk struct {
	health map[string]decimal.Decimal
	errs   map[string]error
	scans  int
}

func (s *fakeRisk) GetHealthSnapshot(ctx context.Context, poolID uint64, userID string) (*core.HealthSnapshot, error) {
	s.scans++
	if err := s.errs[healthKey(poolID, userID)]; err != nil {
		return nil, err
	}

	hf, ok := s.health[healthKey(poolID, userID)]
	if !ok {
		hf = core.HealthFactorMax
	}

	return &core.HealthSnapshot{HealthFactor: hf}, nil
}

func (s *fakeRisk) GetHypotheticalHealth(ctx context.Context, poolID uint64, userID string, change core.HypotheticalChange) (*core.HealthSnapshot, error) {
	return s.GetHealthSnapshot(ctx, poolID, userID)
}

func (s *fakeRisk) GetBorrowPowerUSD(ctx context.Context, poolID uint64, userID string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s *fakeRisk) IsLiquidatable(ctx context.Context, poolID uint64, userID string) (bool, error) {
	snapshot, err := s.GetHealthSnapshot(ctx, poolID, userID)
	if err != nil {
		return false, err
	}

	return snapshot.Liquidatable(), nil
}

type liquidateCall struct {
	liquidatorID    string
	userID          string
	poolID          uint64
	debtAsset       string
	repay           decimal.Decimal
	collateralAsset string
}

type fakeLending struct {
	calls []liquidateCall
	fail  map[string]error
}

func (s *fakeLending) Liquidate(ctx context.Context, liquidatorID, userID string, poolID uint64, debtAssetID string, repayAmount decimal.Decimal, collateralAssetID string) (*core.LedgerEvent, error) {
	s.calls = append(s.calls, liquidateCall{
		liquidatorID:    liquidatorID,
		userID:          userID,
		poolID:          poolID,
		debtAsset:       debtAssetID,
		repay:           repayAmount,
		collateralAsset: collateralAssetID,
	})

	if err := s.fail[userID]; err != nil {
		return nil, err
	}

	return &core.LedgerEvent{Action: core.ActionLiquidate}, nil
}

func (s *fakeLending) Lend(ctx context.Context, userID string, poolID uint64, assetID string, amount decimal.Decimal) (*core.LedgerEvent, error) {
	return nil, nil
}
func (s *fakeLending) Withdraw(ctx context.Context, userID string, poolID uint64, assetID string, amount decimal.Decimal) (*core.LedgerEvent, error) {
	return nil, nil
}
func (s *fakeLending) Borrow(ctx context.Context, userID string, poolID uint64, assetID string, amount decimal.Decimal) (*core.LedgerEvent, error) {
	return nil, nil
}
func (s *fakeLending) Repay(ctx context.Context, userID string, poolID uint64, assetID string, amount decimal.Decimal) (*core.LedgerEvent, error) {
	return nil, nil
}
func (s *fakeLending) Accrue(ctx context.Context, poolID uint64, assetID string, now time.Time) error {
	return nil
}
func (s *fakeLending) CreatePool(ctx context.Context, actorID, name string, reserveFactor, liquidationBonus decimal.Decimal) (*core.Pool, error) {
	return nil, nil
}
func (s *fakeLending) AddToken(ctx context.Context, actorID string, poolID uint64, assetID, symbol string, params core.RiskParams) (*core.Token, error) {
	return nil, nil
}
func (s *fakeLending) SetRiskParams(ctx context.Context, actorID string, poolID uint64, assetID string, params core.RiskParams) error {
	return nil
}
func (s *fakeLending) SetReserveFactor(ctx context.Context, actorID string, poolID uint64, reserveFactor decimal.Decimal) error {
	return nil
}
func (s *fakeLending) SetPaused(ctx context.Context, actorID string, poolID uint64, paused bool) error {
	return nil
}

type fakeProperties struct {
	saved map[string]interface{}
}

func (s *fakeProperties) Get(ctx context.Context, key string) (property.Value, error) {
	return property.Value(""), nil
}

func (s *fakeProperties) Save(ctx context.Context, key string, value interface{}) error {
	s.saved[key] = value
	return nil
}

func (s *fakeProperties) Expire(ctx context.Context, key string) error { return nil }

func (s *fakeProperties) List(ctx context.Context) (map[string]property.Value, error) {
	return nil, nil
}

type keeperEnv struct {
	keepers    *fakeKeepers
	pools      *fakePools
	tokens     *fakeTokens
	positions  *fakePositions
	oracle     *fakeOracle
	risk       *fakeRisk
	lending    *fakeLending
	properties *fakeProperties
}

func flatToken(poolID uint64, assetID string) *core.Token {
	return &core.Token{
		PoolID:         poolID,
		AssetID:        assetID,
		IndexSupply:    number.One,
		IndexBorrow:    number.One,
		LastAccrueTime: time.Now(),
	}
}

func newTestKeeper(cfg Config) (*keeperService, *keeperEnv) {
	env := &keeperEnv{
		keepers:    &fakeKeepers{},
		pools:      &fakePools{pools: map[uint64]*core.Pool{}},
		tokens:     &fakeTokens{tokens: map[string]*core.Token{}},
		positions:  &fakePositions{},
		oracle:     &fakeOracle{prices: map[string]decimal.Decimal{}, stale: map[string]bool{}},
		risk:       &fakeRisk{health: map[string]decimal.Decimal{}, errs: map[string]error{}},
		lending:    &fakeLending{fail: map[string]error{}},
		properties: &fakeProperties{saved: map[string]interface{}{}},
	}

	env.pools.pools[1] = &core.Pool{ID: 1, ReserveFactor: number.Decimal("0.1")}

	svc := New(nil, env.keepers, env.pools, env.tokens, env.positions, env.risk,
		env.oracle, env.lending, env.properties, &core.System{ClientID: "keeper-bot"}, cfg).(*keeperService)
	svc.tx = fakeTx{}

	return svc, env
}

func (env *keeperEnv) setPosition(poolID uint64, userID, assetID, supplied, borrowed string) {
	env.positions.rows = append(env.positions.rows, &core.Position{
		PoolID:            poolID,
		UserID:            userID,
		AssetID:           assetID,
		SuppliedPrincipal: number.Decimal(supplied),
		SuppliedIndex:     number.One,
		BorrowedPrincipal: number.Decimal(borrowed),
		BorrowedIndex:     number.One,
	})
}

func TestTrackUsers(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestKeeper(Config{})

	assert.Equal(t, core.ErrInvalidPool, svc.TrackUser(ctx, 99, "alice"))

	require.NoError(t, svc.TrackUser(ctx, 1, "alice"))
	require.NoError(t, svc.TrackUser(ctx, 1, "bob"))
	require.NoError(t, svc.TrackUser(ctx, 1, "alice"))

	users, err := svc.TrackedUsers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].UserID)
	assert.Equal(t, "bob", users[1].UserID)

	require.NoError(t, svc.UntrackUser(ctx, 1, "alice"))
	users, err = svc.TrackedUsers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].UserID)
}

func TestCheckUpkeep(t *testing.T) {
	ctx := context.Background()
	svc, env := newTestKeeper(Config{
		CheckInterval:         time.Minute,
		MaxLiquidationsPerRun: 2,
	})

	for _, user := range []string{"alice", "bob", "carol", "dave"} {
		require.NoError(t, svc.TrackUser(ctx, 1, user))
	}
	env.risk.health[healthKey(1, "alice")] = number.Decimal("0.9")
	env.risk.health[healthKey(1, "bob")] = number.Decimal("1.2")
	env.risk.health[healthKey(1, "carol")] = number.Decimal("0.5")
	env.risk.health[healthKey(1, "dave")] = number.Decimal("0.95")

	start := time.Now()

	// insertion order, capped at the batch size
	candidates, err := svc.CheckUpkeep(ctx, start)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "alice", candidates[0].UserID)
	assert.True(t, number.Decimal("0.9").Equal(candidates[0].HealthFactor))
	assert.Equal(t, "carol", candidates[1].UserID)
	assert.Equal(t, start.Unix(), env.properties.saved[lastRunKey])

	// within the interval nothing is scanned
	scans := env.risk.scans
	candidates, err = svc.CheckUpkeep(ctx, start.Add(30*time.Second))
	require.NoError(t, err)
	assert.Nil(t, candidates)
	assert.Equal(t, scans, env.risk.scans)

	// next window picks up the recovered and the still unhealthy
	env.risk.health[healthKey(1, "carol")] = number.Decimal("1.5")
	candidates, err = svc.CheckUpkeep(ctx, start.Add(2*time.Minute))
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "alice", candidates[0].UserID)
	assert.Equal(t, "dave", candidates[1].UserID)
}

func TestCheckUpkeepBacklog(t *testing.T) {
	ctx := context.Background()
	svc, env := newTestKeeper(Config{
		CheckInterval:         time.Minute,
		MaxLiquidationsPerRun: 3,
	})

	// every tracked user is liquidatable; the batch still stays bounded
	for i := 0; i < 10; i++ {
		user := fmt.Sprintf("user-%02d", i)
		require.NoError(t, svc.TrackUser(ctx, 1, user))
		env.risk.health[healthKey(1, user)] = number.Decimal("0.8")
	}

	candidates, err := svc.CheckUpkeep(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, "user-00", candidates[0].UserID)
	assert.Equal(t, "user-01", candidates[1].UserID)
	assert.Equal(t, "user-02", candidates[2].UserID)
}

func TestCheckUpkeepScanError(t *testing.T) {
	ctx := context.Background()
	svc, env := newTestKeeper(Config{CheckInterval: time.Minute})

	require.NoError(t, svc.TrackUser(ctx, 1, "alice"))
	require.NoError(t, svc.TrackUser(ctx, 1, "bob"))
	env.risk.health[healthKey(1, "alice")] = number.Decimal("0.9")
	env.risk.errs[healthKey(1, "bob")] = core.ErrStalePrice

	start := time.Now()

	// one unreadable user aborts the scan without advancing the mark
	_, err := svc.CheckUpkeep(ctx, start)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrStalePrice)
	assert.NotContains(t, env.properties.saved, lastRunKey)

	// the same window is rescanned once the feed recovers
	delete(env.risk.errs, healthKey(1, "bob"))
	env.risk.health[healthKey(1, "bob")] = number.Decimal("1.1")

	candidates, err := svc.CheckUpkeep(ctx, start)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "alice", candidates[0].UserID)
}

func TestPerformUpkeep(t *testing.T) {
	ctx := context.Background()

	t.Run("repays the largest debt against the largest collateral", func(t *testing.T) {
		svc, env := newTestKeeper(Config{CloseFraction: number.Decimal("0.5")})

		env.tokens.tokens[tokenKey(1, "eth")] = flatToken(1, "eth")
		env.tokens.tokens[tokenKey(1, "btc")] = flatToken(1, "btc")
		env.tokens.tokens[tokenKey(1, "usdc")] = flatToken(1, "usdc")
		env.oracle.prices["eth"] = number.Decimal("2000")
		env.oracle.prices["btc"] = number.Decimal("30000")
		env.oracle.prices["usdc"] = number.One

		env.setPosition(1, "alice", "eth", "10", "2")      // 20000 supplied, 4000 owed
		env.setPosition(1, "alice", "btc", "1", "0")       // 30000 supplied
		env.setPosition(1, "alice", "usdc", "0", "15000")  // 15000 owed

		run, err := svc.PerformUpkeep(ctx, []*core.Candidate{
			{PoolID: 1, UserID: "alice", HealthFactor: number.Decimal("0.9")},
		})
		require.NoError(t, err)

		require.Len(t, env.lending.calls, 1)
		call := env.lending.calls[0]
		assert.Equal(t, "keeper-bot", call.liquidatorID)
		assert.Equal(t, "alice", call.userID)
		assert.Equal(t, uint64(1), call.poolID)
		assert.Equal(t, "usdc", call.debtAsset)
		assert.Equal(t, "btc", call.collateralAsset)
		assert.True(t, number.Decimal("7500").Equal(call.repay))

		assert.Equal(t, 1, run.Liquidated)
		assert.Equal(t, 0, run.Failed)
		assert.Equal(t, []string{"1:alice"}, []string(run.Candidates))
		require.Len(t, env.keepers.runs, 1)
	})

	t.Run("dust debt is repaid in full", func(t *testing.T) {
		svc, env := newTestKeeper(Config{CloseFraction: number.Decimal("0.5")})

		env.tokens.tokens[tokenKey(1, "eth")] = flatToken(1, "eth")
		env.tokens.tokens[tokenKey(1, "usdc")] = flatToken(1, "usdc")
		env.oracle.prices["eth"] = number.Decimal("2000")
		env.oracle.prices["usdc"] = number.One

		env.setPosition(1, "alice", "eth", "1", "0")
		env.setPosition(1, "alice", "usdc", "0", "0.000000000000000001")

		_, err := svc.PerformUpkeep(ctx, []*core.Candidate{{PoolID: 1, UserID: "alice"}})
		require.NoError(t, err)

		require.Len(t, env.lending.calls, 1)
		assert.True(t, number.Decimal("0.000000000000000001").Equal(env.lending.calls[0].repay))
	})

	t.Run("one failure does not stop the rest", func(t *testing.T) {
		svc, env := newTestKeeper(Config{CloseFraction: number.Decimal("0.5")})

		env.tokens.tokens[tokenKey(1, "eth")] = flatToken(1, "eth")
		env.tokens.tokens[tokenKey(1, "usdc")] = flatToken(1, "usdc")
		env.oracle.prices["eth"] = number.Decimal("2000")
		env.oracle.prices["usdc"] = number.One

		env.setPosition(1, "alice", "eth", "10", "0")
		env.setPosition(1, "alice", "usdc", "0", "1000")
		env.setPosition(1, "bob", "eth", "5", "0")
		env.setPosition(1, "bob", "usdc", "0", "2000")

		// alice healed between scan and act
		env.lending.fail["alice"] = core.ErrUserHealthy

		run, err := svc.PerformUpkeep(ctx, []*core.Candidate{
			{PoolID: 1, UserID: "alice"},
			{PoolID: 1, UserID: "bob"},
		})
		require.NoError(t, err)

		assert.Len(t, env.lending.calls, 2)
		assert.Equal(t, 1, run.Liquidated)
		assert.Equal(t, 1, run.Failed)
		assert.Equal(t, []string{"1:alice", "1:bob"}, []string(run.Candidates))
	})

	t.Run("skips users without collateral", func(t *testing.T) {
		svc, env := newTestKeeper(Config{})

		env.tokens.tokens[tokenKey(1, "usdc")] = flatToken(1, "usdc")
		env.oracle.prices["usdc"] = number.One
		env.setPosition(1, "eve", "usdc", "0", "500")

		run, err := svc.PerformUpkeep(ctx, []*core.Candidate{{PoolID: 1, UserID: "eve"}})
		require.NoError(t, err)

		assert.Len(t, env.lending.calls, 0)
		assert.Equal(t, 1, run.Failed)
	})

	t.Run("never acts on a stale price", func(t *testing.T) {
		svc, env := newTestKeeper(Config{})

		env.tokens.tokens[tokenKey(1, "eth")] = flatToken(1, "eth")
		env.tokens.tokens[tokenKey(1, "usdc")] = flatToken(1, "usdc")
		env.oracle.prices["eth"] = number.Decimal("2000")
		env.oracle.prices["usdc"] = number.One
		env.oracle.stale["eth"] = true

		env.setPosition(1, "alice", "eth", "10", "0")
		env.setPosition(1, "alice", "usdc", "0", "1000")

		run, err := svc.PerformUpkeep(ctx, []*core.Candidate{{PoolID: 1, UserID: "alice"}})
		require.NoError(t, err)

		assert.Len(t, env.lending.calls, 0)
		assert.Equal(t, 1, run.Failed)
	})
}
