package config

import (
	"github.com/fox-one/mixin-sdk-go"
	"github.com/fox-one/pkg/store/db"
)

// Config lagoon node config
type Config struct {
	DB          db.Config   `json:"db"`
	Dapp        Dapp        `json:"dapp"`
	PriceOracle PriceOracle `json:"price_oracle"`
	Keeper      Keeper      `json:"keeper"`
	Cashier     Cashier     `json:"cashier"`
	Accruer     Accruer     `json:"accruer"`
	DepositSync DepositSync `json:"deposit_sync"`
	// Admins always pass ADMIN and RISK_ADMIN checks, before any role rows
	// exist
	Admins []string `json:"admins"`
}

// Dapp custody wallet keystore
type Dapp struct {
	mixin.Keystore
	Pin string `json:"pin"`
}

// PriceOracle price feed config
type PriceOracle struct {
	EndPoint string `json:"end_point" valid:"url,optional"`
	// Threshold minimum number of feed signers per accepted tick
	Threshold uint8 `json:"threshold"`
	// StaleThresholdSeconds max price age before risk reads hard fail
	StaleThresholdSeconds int64 `json:"stale_threshold_seconds"`
	// PullIntervalSeconds feed poll cadence
	PullIntervalSeconds int64 `json:"pull_interval_seconds"`
}

// Keeper liquidation keeper config
type Keeper struct {
	CheckIntervalSeconds  int64  `json:"check_interval_seconds"`
	MaxLiquidationsPerRun int    `json:"max_liquidations_per_run"`
	MinHealthFactor       string `json:"min_health_factor"`
	// CloseFraction share of the candidate's largest debt repaid per attempt
	CloseFraction      string `json:"close_fraction"`
	BackoffBaseSeconds int64  `json:"backoff_base_seconds"`
	BackoffCapSeconds  int64  `json:"backoff_cap_seconds"`
}

// Cashier outbound transfer worker config
type Cashier struct {
	Batch    int   `json:"batch" valid:"required"`
	Capacity int64 `json:"capacity" valid:"required"`
}

// Accruer background accrual config
type Accruer struct {
	IntervalSeconds int64 `json:"interval_seconds"`
}

// DepositSync custody snapshot sync config
type DepositSync struct {
	Batch int `json:"batch"`
}

func defaultConfig(cfg *Config) {
	if cfg.Keeper.CheckIntervalSeconds <= 0 {
		cfg.Keeper.CheckIntervalSeconds = 60
	}

	if cfg.Keeper.MaxLiquidationsPerRun <= 0 {
		cfg.Keeper.MaxLiquidationsPerRun = 10
	}

	if cfg.Keeper.MinHealthFactor == "" {
		cfg.Keeper.MinHealthFactor = "1"
	}

	if cfg.Keeper.CloseFraction == "" {
		cfg.Keeper.CloseFraction = "0.5"
	}

	if cfg.Keeper.BackoffBaseSeconds <= 0 {
		cfg.Keeper.BackoffBaseSeconds = 5
	}

	if cfg.Keeper.BackoffCapSeconds <= 0 {
		cfg.Keeper.BackoffCapSeconds = 300
	}

	if cfg.Cashier.Batch <= 0 {
		cfg.Cashier.Batch = 100
	}

	if cfg.Cashier.Capacity <= 0 {
		cfg.Cashier.Capacity = 1
	}

	if cfg.Accruer.IntervalSeconds <= 0 {
		cfg.Accruer.IntervalSeconds = 60
	}

	if cfg.DepositSync.Batch <= 0 {
		cfg.DepositSync.Batch = 500
	}

	if cfg.PriceOracle.Threshold == 0 {
		cfg.PriceOracle.Threshold = 1
	}

	if cfg.PriceOracle.StaleThresholdSeconds <= 0 {
		cfg.PriceOracle.StaleThresholdSeconds = 600
	}

	if cfg.PriceOracle.PullIntervalSeconds <= 0 {
		cfg.PriceOracle.PullIntervalSeconds = 10
	}
}
