package cmd

import (
	"os/signal"
	"sync"
	"syscall"
	"time"

	"lagoon/core"
	"lagoon/worker"
	"lagoon/worker/accruer"
	"lagoon/worker/cashier"
	"lagoon/worker/depositsync"
	keeperworker "lagoon/worker/keeper"
	"lagoon/worker/pricesync"

	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "lagoon job worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		database := provideDatabase()
		defer database.Close()

		dapp := provideDapp()
		system := provideSystem()

		propertyStore := providePropertyStore(database)
		poolStore := providePoolStore(database)
		tokenStore := provideTokenStore(database)
		positionStore := providePositionStore(database)
		eventStore := provideEventStore(database)
		priceStore := providePriceStore(database)
		signerStore := provideOracleSignerStore(database)
		keeperStore := provideKeeperStore(database)
		custodyStore := provideCustodyStore(database)
		roleStore := provideRoleStore(database)

		walletService := provideWalletService(dapp)
		oracleService := provideOracleService(priceStore, propertyStore)
		accessService := provideAccessService(roleStore)
		custodyLedger := provideCustodyLedger(custodyStore)
		riskService := provideRiskService(poolStore, tokenStore, positionStore, oracleService)
		liquidationService := provideLiquidationService()
		lendingService := provideLendingService(database, poolStore, tokenStore, positionStore, eventStore, custodyLedger, accessService, riskService, liquidationService, oracleService)
		keeperService := provideKeeperService(database, keeperStore, poolStore, tokenStore, positionStore, riskService, oracleService, lendingService, propertyStore, system)

		// the keeper liquidates under the dapp identity
		if err := roleStore.Grant(ctx, system.ClientID, core.RoleKeeper); err != nil {
			log.WithError(err).Fatal("grant keeper role")
		}

		workers := []worker.Worker{
			cashier.New(database, custodyStore, walletService, cashier.Config{
				Batch:    cfg.Cashier.Batch,
				Capacity: cfg.Cashier.Capacity,
			}),
			depositsync.New(database, custodyStore, walletService, propertyStore, depositsync.Config{
				Batch: cfg.DepositSync.Batch,
			}),
			accruer.New(poolStore, tokenStore, lendingService, time.Duration(cfg.Accruer.IntervalSeconds)*time.Second),
			pricesync.New(database, signerStore, priceStore, tokenStore, oracleService, system, time.Duration(cfg.PriceOracle.PullIntervalSeconds)*time.Second),
			keeperworker.New(keeperService, keeperworker.Config{
				BackoffBase: time.Duration(cfg.Keeper.BackoffBaseSeconds) * time.Second,
				BackoffCap:  time.Duration(cfg.Keeper.BackoffCapSeconds) * time.Second,
			}),
		}

		wg := sync.WaitGroup{}
		for _, w := range workers {
			wg.Add(1)

			go func(worker worker.Worker) {
				defer wg.Done()
				_ = worker.Run(ctx)
			}(w)
		}

		wg.Wait()
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
