package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"lagoon/handler"
	"lagoon/handler/hc"

	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "run lagoon api server",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		database := provideDatabase()
		defer database.Close()

		system := provideSystem()

		propertyStore := providePropertyStore(database)
		poolStore := providePoolStore(database)
		tokenStore := provideTokenStore(database)
		positionStore := providePositionStore(database)
		eventStore := provideEventStore(database)
		priceStore := providePriceStore(database)
		keeperStore := provideKeeperStore(database)
		custodyStore := provideCustodyStore(database)
		roleStore := provideRoleStore(database)

		oracleService := provideOracleService(priceStore, propertyStore)
		accessService := provideAccessService(roleStore)
		custodyLedger := provideCustodyLedger(custodyStore)
		riskService := provideRiskService(poolStore, tokenStore, positionStore, oracleService)
		liquidationService := provideLiquidationService()
		lendingService := provideLendingService(database, poolStore, tokenStore, positionStore, eventStore, custodyLedger, accessService, riskService, liquidationService, oracleService)
		keeperService := provideKeeperService(database, keeperStore, poolStore, tokenStore, positionStore, riskService, oracleService, lendingService, propertyStore, system)

		svr := handler.New(
			system,
			poolStore,
			provideCachedTokenStore(database),
			positionStore,
			eventStore,
			priceStore,
			keeperStore,
			lendingService,
			riskService,
			keeperService,
			oracleService,
		)

		mux := chi.NewMux()
		mux.Use(middleware.Recoverer)
		mux.Use(middleware.StripSlashes)
		mux.Use(cors.AllowAll().Handler)
		mux.Use(logger.WithRequestID)
		mux.Use(middleware.Logger)
		mux.Use(middleware.NewCompressor(5).Handler)

		mux.Mount("/hc", hc.Handle(system.Version))
		mux.Mount("/api", svr.HandleRestAPI())

		port, _ := cmd.Flags().GetInt("port")
		addr := fmt.Sprintf(":%d", port)

		server := &http.Server{
			Addr:    addr,
			Handler: mux,
		}

		done := make(chan struct{}, 1)
		go func() {
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				logrus.WithError(err).Error("graceful shutdown server failed")
			}

			close(done)
		}()

		logrus.Infoln("serve at", addr)
		err := server.ListenAndServe()
		if err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server aborted")
		}

		<-done
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntP("port", "p", 9000, "server port")
}
