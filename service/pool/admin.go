package pool

import (
	"context"
	"time"

	"lagoon/core"
	"lagoon/internal/interest"
	"lagoon/pkg/id"
	"lagoon/pkg/ledger"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

func (s *lendingService) requireAnyRole(ctx context.Context, actorID string, roles ...string) error {
	for _, role := range roles {
		ok, err := s.access.HasRole(ctx, actorID, role)
		if err != nil {
			return err
		}

		if ok {
			return nil
		}
	}

	return core.ErrUnauthorized
}

func validPoolParams(reserveFactor, liquidationBonus decimal.Decimal) error {
	if reserveFactor.IsNegative() || reserveFactor.GreaterThan(interest.ReserveFactorMax) {
		return core.ErrInvalidRiskParams
	}

	if liquidationBonus.LessThan(interest.LiquidationBonusMin) ||
		liquidationBonus.GreaterThan(interest.LiquidationBonusMax) {
		return core.ErrInvalidRiskParams
	}

	return nil
}

func (s *lendingService) CreatePool(ctx context.Context, actorID, name string, reserveFactor, liquidationBonus decimal.Decimal) (*core.Pool, error) {
	if err := s.requireAnyRole(ctx, actorID, core.RoleAdmin); err != nil {
		return nil, err
	}

	if err := validPoolParams(reserveFactor, liquidationBonus); err != nil {
		return nil, err
	}

	pool := &core.Pool{
		Name:             name,
		ReserveFactor:    reserveFactor,
		LiquidationBonus: liquidationBonus,
	}

	if err := s.tx.Tx(func(tx *db.DB) error {
		return s.pools.Create(ctx, tx, pool)
	}); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Infof("pool %d (%s) created by %s", pool.ID, name, actorID)
	return pool, nil
}

func (s *lendingService) AddToken(ctx context.Context, actorID string, poolID uint64, assetID, symbol string, params core.RiskParams) (*core.Token, error) {
	if err := s.requireAnyRole(ctx, actorID, core.RoleAdmin); err != nil {
		return nil, err
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	ctx, release, err := s.locker.acquire(ctx, poolID)
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := s.pools.Find(ctx, poolID); err != nil {
		return nil, err
	}

	token := &core.Token{
		PoolID:         poolID,
		AssetID:        assetID,
		Symbol:         symbol,
		LastAccrueTime: time.Now().UTC(),
	}
	token.Apply(params)
	ledger.Normalize(token)

	if err := s.tx.Tx(func(tx *db.DB) error {
		return s.tokens.Create(ctx, tx, token)
	}); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Infof("pool %d: token %s (%s) added by %s", poolID, symbol, assetID, actorID)
	return token, nil
}

// SetRiskParams swaps the token's rate and collateral parameters. Interest
// up to now accrues under the old curve first, so the change never reaches
// back in time.
func (s *lendingService) SetRiskParams(ctx context.Context, actorID string, poolID uint64, assetID string, params core.RiskParams) error {
	if err := s.requireAnyRole(ctx, actorID, core.RoleRiskAdmin); err != nil {
		return err
	}

	if err := params.Validate(); err != nil {
		return err
	}

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

	now := time.Now()
	ledger.Accrue(token, pool.ReserveFactor, now)
	token.Apply(params)

	event := &core.LedgerEvent{
		TraceID: id.GenTraceID(),
		PoolID:  poolID,
		UserID:  actorID,
		Action:  core.ActionSetRiskParams,
		AssetID: assetID,
		Amount:  decimal.Zero,
		Extra: core.NewEventExtra().
			Put(core.EventKeyParams, params).
			Format(),
		CreatedAt: now,
	}

	return s.tx.Tx(func(tx *db.DB) error {
		if err := s.tokens.Update(ctx, tx, token); err != nil {
			return err
		}

		return s.events.Create(ctx, tx, event)
	})
}

// SetReserveFactor accrues every token in the pool under the old factor
// before switching, because the factor feeds the supply index.
func (s *lendingService) SetReserveFactor(ctx context.Context, actorID string, poolID uint64, reserveFactor decimal.Decimal) error {
	if err := s.requireAnyRole(ctx, actorID, core.RoleRiskAdmin); err != nil {
		return err
	}

	if reserveFactor.IsNegative() || reserveFactor.GreaterThan(interest.ReserveFactorMax) {
		return core.ErrInvalidRiskParams
	}

	ctx, release, err := s.locker.acquire(ctx, poolID)
	if err != nil {
		return err
	}
	defer release()

	pool, err := s.pools.Find(ctx, poolID)
	if err != nil {
		return err
	}

	tokens, err := s.tokens.ListByPool(ctx, poolID)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, token := range tokens {
		ledger.Accrue(token, pool.ReserveFactor, now)
	}
	pool.ReserveFactor = reserveFactor

	event := &core.LedgerEvent{
		TraceID: id.GenTraceID(),
		PoolID:  poolID,
		UserID:  actorID,
		Action:  core.ActionSetReserveFactor,
		Amount:  decimal.Zero,
		Extra: core.NewEventExtra().
			Put(core.EventKeyReserveFactor, reserveFactor).
			Format(),
		CreatedAt: now,
	}

	return s.tx.Tx(func(tx *db.DB) error {
		for _, token := range tokens {
			if err := s.tokens.Update(ctx, tx, token); err != nil {
				return err
			}
		}

		if err := s.pools.Update(ctx, tx, pool); err != nil {
			return err
		}

		return s.events.Create(ctx, tx, event)
	})
}

func (s *lendingService) SetPaused(ctx context.Context, actorID string, poolID uint64, paused bool) error {
	if err := s.requireAnyRole(ctx, actorID, core.RoleAdmin, core.RoleRiskAdmin); err != nil {
		return err
	}

	ctx, release, err := s.locker.acquire(ctx, poolID)
	if err != nil {
		return err
	}
	defer release()

	pool, err := s.pools.Find(ctx, poolID)
	if err != nil {
		return err
	}

	if pool.Paused == paused {
		return nil
	}

	pool.Paused = paused
	action := core.ActionPause
	if !paused {
		action = core.ActionUnpause
	}

	event := &core.LedgerEvent{
		TraceID:   id.GenTraceID(),
		PoolID:    poolID,
		UserID:    actorID,
		Action:    action,
		Amount:    decimal.Zero,
		CreatedAt: time.Now(),
	}

	if err := s.tx.Tx(func(tx *db.DB) error {
		if err := s.pools.Update(ctx, tx, pool); err != nil {
			return err
		}

		return s.events.Create(ctx, tx, event)
	}); err != nil {
		return err
	}

	logger.FromContext(ctx).Infof("pool %d: paused=%v by %s", poolID, paused, actorID)
	return nil
}
