package core

import "errors"

// Engine errors. Every rejected operation surfaces one of these so that
// callers can tell a permanent rejection from a retriable one.
var (
	ErrZeroAmount            = errors.New("amount must be positive")
	ErrInvalidToken          = errors.New("token not supported by pool")
	ErrInvalidPool           = errors.New("pool not found")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientLiquidity = errors.New("insufficient pool liquidity")
	ErrHealthFactorTooLow    = errors.New("health factor too low")
	ErrUserHealthy           = errors.New("user is not liquidatable")
	ErrReentrant             = errors.New("reentrant call rejected")
	ErrStalePrice            = errors.New("oracle price is stale")
	ErrPriceNotFound         = errors.New("oracle price not found")
	ErrUnauthorized          = errors.New("caller lacks required role")
	ErrPaused                = errors.New("pool is paused")
	ErrOptimisticLock        = errors.New("version conflict")
	ErrInvalidRiskParams     = errors.New("invalid risk parameters")
)
