package cmd

import (
	"time"

	"lagoon/core"
	accessservice "lagoon/service/access"
	custodyservice "lagoon/service/custody"
	keeperservice "lagoon/service/keeper"
	liquidationservice "lagoon/service/liquidation"
	oracleservice "lagoon/service/oracle"
	poolservice "lagoon/service/pool"
	riskservice "lagoon/service/risk"
	walletservice "lagoon/service/wallet"
	"lagoon/store/custody"
	"lagoon/store/event"
	"lagoon/store/keeper"
	"lagoon/store/oracle"
	"lagoon/store/pool"
	"lagoon/store/position"
	"lagoon/store/price"
	"lagoon/store/role"
	"lagoon/store/token"

	"github.com/fox-one/mixin-sdk-go"
	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
	"github.com/shopspring/decimal"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideDapp() *mixin.Client {
	c, err := mixin.NewFromKeystore(&cfg.Dapp.Keystore)
	if err != nil {
		panic(err)
	}

	return c
}

func provideSystem() *core.System {
	return &core.System{
		ClientID:       cfg.Dapp.ClientID,
		PriceThreshold: cfg.PriceOracle.Threshold,
		Version:        rootCmd.Version,
	}
}

// ---------------store-----------------------------------------

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

func providePoolStore(db *db.DB) core.IPoolStore {
	return pool.New(db)
}

func provideTokenStore(db *db.DB) core.ITokenStore {
	return token.New(db)
}

// provideCachedTokenStore fronts token reads with a short cache. Only the
// read surface uses it; the engine reads raw rows so version guards and
// accrual always see the latest state.
func provideCachedTokenStore(db *db.DB) core.ITokenStore {
	return token.Cache(token.New(db), time.Minute)
}

func providePositionStore(db *db.DB) core.IPositionStore {
	return position.New(db)
}

func provideEventStore(db *db.DB) core.IEventStore {
	return event.New(db)
}

func providePriceStore(db *db.DB) core.IPriceStore {
	return price.New(db)
}

func provideOracleSignerStore(db *db.DB) core.IOracleSignerStore {
	return oracle.New(db)
}

func provideKeeperStore(db *db.DB) core.IKeeperStore {
	return keeper.New(db)
}

func provideCustodyStore(db *db.DB) core.ICustodyStore {
	return custody.New(db)
}

func provideRoleStore(db *db.DB) core.IRoleStore {
	return role.New(db)
}

// ------------------service------------------------------------

func provideWalletService(client *mixin.Client) core.IWalletService {
	return walletservice.New(client, walletservice.Config{
		Pin: cfg.Dapp.Pin,
	})
}

func provideOracleService(prices core.IPriceStore, properties property.Store) core.IPriceOracleService {
	return oracleservice.New(prices, properties, oracleservice.Config{
		EndPoint:       cfg.PriceOracle.EndPoint,
		StaleThreshold: time.Duration(cfg.PriceOracle.StaleThresholdSeconds) * time.Second,
	})
}

func provideAccessService(roles core.IRoleStore) core.IAccessControl {
	return accessservice.New(roles, accessservice.Config{
		Admins: cfg.Admins,
	})
}

func provideCustodyLedger(store core.ICustodyStore) core.CustodyLedger {
	return custodyservice.New(store)
}

func provideRiskService(
	pools core.IPoolStore,
	tokens core.ITokenStore,
	positions core.IPositionStore,
	oracleSrv core.IPriceOracleService,
) core.IRiskService {
	return riskservice.New(pools, tokens, positions, oracleSrv)
}

func provideLiquidationService() core.ILiquidationService {
	return liquidationservice.New()
}

func provideLendingService(
	db *db.DB,
	pools core.IPoolStore,
	tokens core.ITokenStore,
	positions core.IPositionStore,
	events core.IEventStore,
	custodyLedger core.CustodyLedger,
	access core.IAccessControl,
	risk core.IRiskService,
	liquidation core.ILiquidationService,
	oracleSrv core.IPriceOracleService,
) core.ILendingService {
	return poolservice.New(db, pools, tokens, positions, events, custodyLedger, access, risk, liquidation, oracleSrv)
}

func provideKeeperService(
	db *db.DB,
	keepers core.IKeeperStore,
	pools core.IPoolStore,
	tokens core.ITokenStore,
	positions core.IPositionStore,
	risk core.IRiskService,
	oracleSrv core.IPriceOracleService,
	lending core.ILendingService,
	properties property.Store,
	system *core.System,
) core.IKeeperService {
	minHealthFactor, err := decimal.NewFromString(cfg.Keeper.MinHealthFactor)
	if err != nil {
		panic(err)
	}

	closeFraction, err := decimal.NewFromString(cfg.Keeper.CloseFraction)
	if err != nil {
		panic(err)
	}

	return keeperservice.New(db, keepers, pools, tokens, positions, risk, oracleSrv, lending, properties, system, keeperservice.Config{
		CheckInterval:         time.Duration(cfg.Keeper.CheckIntervalSeconds) * time.Second,
		MaxLiquidationsPerRun: cfg.Keeper.MaxLiquidationsPerRun,
		MinHealthFactor:       minHealthFactor,
		CloseFraction:         closeFraction,
	})
}
