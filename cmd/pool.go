package cmd

import (
	"lagoon/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// newLendingStack wires the full engine for one-shot admin commands.
func newLendingStack(database *db.DB) (core.ILendingService, core.IKeeperService) {
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

	return lendingService, keeperService
}

func actorFlag(cmd *cobra.Command) string {
	actor, _ := cmd.Flags().GetString("actor")
	if actor == "" {
		actor = cfg.Dapp.ClientID
	}

	return actor
}

func decimalFlag(cmd *cobra.Command, name string) decimal.Decimal {
	raw, _ := cmd.Flags().GetString(name)
	value, err := decimal.NewFromString(raw)
	if err != nil {
		panic("invalid " + name)
	}

	return value
}

var createPoolCmd = &cobra.Command{
	Use:     "create-pool",
	Aliases: []string{"cp"},
	Short:   "create an isolated lending pool",
	Run: func(cmd *cobra.Command, args []string) {
		database := provideDatabase()
		defer database.Close()

		lending, _ := newLendingStack(database)

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			panic("invalid name")
		}

		pool, err := lending.CreatePool(cmd.Context(), actorFlag(cmd), name, decimalFlag(cmd, "reserve-factor"), decimalFlag(cmd, "bonus"))
		if err != nil {
			panic(err)
		}

		cmd.Println("pool created:", pool.ID, pool.Name)
	},
}

var addTokenCmd = &cobra.Command{
	Use:     "add-token",
	Aliases: []string{"at"},
	Short:   "add a token to a pool",
	Run: func(cmd *cobra.Command, args []string) {
		database := provideDatabase()
		defer database.Close()

		lending, _ := newLendingStack(database)

		poolID, _ := cmd.Flags().GetUint64("pool")
		assetID, _ := cmd.Flags().GetString("asset")
		symbol, _ := cmd.Flags().GetString("symbol")
		if assetID == "" || symbol == "" {
			panic("invalid asset or symbol")
		}

		token, err := lending.AddToken(cmd.Context(), actorFlag(cmd), poolID, assetID, symbol, riskParamFlags(cmd))
		if err != nil {
			panic(err)
		}

		cmd.Println("token added:", token.ID, token.Symbol)
	},
}

var setRiskCmd = &cobra.Command{
	Use:   "set-risk",
	Short: "update the risk parameters of a token",
	Run: func(cmd *cobra.Command, args []string) {
		database := provideDatabase()
		defer database.Close()

		lending, _ := newLendingStack(database)

		poolID, _ := cmd.Flags().GetUint64("pool")
		assetID, _ := cmd.Flags().GetString("asset")
		if assetID == "" {
			panic("invalid asset")
		}

		if err := lending.SetRiskParams(cmd.Context(), actorFlag(cmd), poolID, assetID, riskParamFlags(cmd)); err != nil {
			panic(err)
		}

		cmd.Println("risk params updated")
	},
}

var setReserveFactorCmd = &cobra.Command{
	Use:   "set-reserve-factor",
	Short: "update the reserve factor of a pool",
	Run: func(cmd *cobra.Command, args []string) {
		database := provideDatabase()
		defer database.Close()

		lending, _ := newLendingStack(database)

		poolID, _ := cmd.Flags().GetUint64("pool")
		if err := lending.SetReserveFactor(cmd.Context(), actorFlag(cmd), poolID, decimalFlag(cmd, "value")); err != nil {
			panic(err)
		}

		cmd.Println("reserve factor updated")
	},
}

var pausePoolCmd = &cobra.Command{
	Use:   "pause-pool",
	Short: "suspend state transitions on a pool",
	Run: func(cmd *cobra.Command, args []string) {
		database := provideDatabase()
		defer database.Close()

		lending, _ := newLendingStack(database)

		poolID, _ := cmd.Flags().GetUint64("pool")
		if err := lending.SetPaused(cmd.Context(), actorFlag(cmd), poolID, true); err != nil {
			panic(err)
		}

		cmd.Println("pool paused")
	},
}

var unpausePoolCmd = &cobra.Command{
	Use:   "unpause-pool",
	Short: "resume state transitions on a pool",
	Run: func(cmd *cobra.Command, args []string) {
		database := provideDatabase()
		defer database.Close()

		lending, _ := newLendingStack(database)

		poolID, _ := cmd.Flags().GetUint64("pool")
		if err := lending.SetPaused(cmd.Context(), actorFlag(cmd), poolID, false); err != nil {
			panic(err)
		}

		cmd.Println("pool unpaused")
	},
}

var listPoolsCmd = &cobra.Command{
	Use:   "list-pools",
	Short: "list pools and their tokens",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		poolStore := providePoolStore(database)
		tokenStore := provideTokenStore(database)

		pools, err := poolStore.All(ctx)
		if err != nil {
			panic(err)
		}

		for _, pool := range pools {
			status := "active"
			if pool.Paused {
				status = "paused"
			}

			cmd.Printf("pool %d %s [%s] reserve_factor=%s bonus=%s\n", pool.ID, pool.Name, status, pool.ReserveFactor, pool.LiquidationBonus)

			tokens, err := tokenStore.ListByPool(ctx, pool.ID)
			if err != nil {
				panic(err)
			}

			for _, token := range tokens {
				cmd.Printf("  %s %s cash=%s borrows=%s ltv=%s lt=%s\n", token.Symbol, token.AssetID, token.Cash, token.Borrows, token.LTV, token.LiquidationThreshold)
			}
		}
	},
}

var grantRoleCmd = &cobra.Command{
	Use:   "grant-role",
	Short: "grant a role to a user",
	Run: func(cmd *cobra.Command, args []string) {
		database := provideDatabase()
		defer database.Close()

		userID, _ := cmd.Flags().GetString("user")
		role, _ := cmd.Flags().GetString("role")
		if userID == "" || role == "" {
			panic("invalid user or role")
		}

		if err := provideRoleStore(database).Grant(cmd.Context(), userID, role); err != nil {
			panic(err)
		}

		cmd.Println("granted", role, "to", userID)
	},
}

var revokeRoleCmd = &cobra.Command{
	Use:   "revoke-role",
	Short: "revoke a role from a user",
	Run: func(cmd *cobra.Command, args []string) {
		database := provideDatabase()
		defer database.Close()

		userID, _ := cmd.Flags().GetString("user")
		role, _ := cmd.Flags().GetString("role")
		if userID == "" || role == "" {
			panic("invalid user or role")
		}

		if err := provideRoleStore(database).Revoke(cmd.Context(), userID, role); err != nil {
			panic(err)
		}

		cmd.Println("revoked", role, "from", userID)
	},
}

var trackUserCmd = &cobra.Command{
	Use:   "track-user",
	Short: "register a user for keeper monitoring",
	Run: func(cmd *cobra.Command, args []string) {
		database := provideDatabase()
		defer database.Close()

		_, keeper := newLendingStack(database)

		poolID, _ := cmd.Flags().GetUint64("pool")
		userID, _ := cmd.Flags().GetString("user")
		if userID == "" {
			panic("invalid user")
		}

		if err := keeper.TrackUser(cmd.Context(), poolID, userID); err != nil {
			panic(err)
		}

		cmd.Println("tracking", userID, "in pool", poolID)
	},
}

var untrackUserCmd = &cobra.Command{
	Use:   "untrack-user",
	Short: "remove a user from keeper monitoring",
	Run: func(cmd *cobra.Command, args []string) {
		database := provideDatabase()
		defer database.Close()

		_, keeper := newLendingStack(database)

		poolID, _ := cmd.Flags().GetUint64("pool")
		userID, _ := cmd.Flags().GetString("user")
		if userID == "" {
			panic("invalid user")
		}

		if err := keeper.UntrackUser(cmd.Context(), poolID, userID); err != nil {
			panic(err)
		}

		cmd.Println("untracked", userID, "in pool", poolID)
	},
}

func riskParamFlags(cmd *cobra.Command) core.RiskParams {
	return core.RiskParams{
		LTV:                  decimalFlag(cmd, "ltv"),
		LiquidationThreshold: decimalFlag(cmd, "lt"),
		Kink:                 decimalFlag(cmd, "kink"),
		BaseRate:             decimalFlag(cmd, "base-rate"),
		Slope1:               decimalFlag(cmd, "slope1"),
		Slope2:               decimalFlag(cmd, "slope2"),
	}
}

func addRiskParamFlags(cmd *cobra.Command) {
	cmd.Flags().String("ltv", "0", "max loan to value")
	cmd.Flags().String("lt", "0", "liquidation threshold")
	cmd.Flags().String("kink", "0.8", "utilization breakpoint")
	cmd.Flags().String("base-rate", "0.02", "annual base borrow rate")
	cmd.Flags().String("slope1", "0.1", "annual rate slope below the kink")
	cmd.Flags().String("slope2", "1", "annual rate slope above the kink")
}

func init() {
	rootCmd.AddCommand(createPoolCmd)
	rootCmd.AddCommand(addTokenCmd)
	rootCmd.AddCommand(setRiskCmd)
	rootCmd.AddCommand(setReserveFactorCmd)
	rootCmd.AddCommand(pausePoolCmd)
	rootCmd.AddCommand(unpausePoolCmd)
	rootCmd.AddCommand(listPoolsCmd)
	rootCmd.AddCommand(grantRoleCmd)
	rootCmd.AddCommand(revokeRoleCmd)
	rootCmd.AddCommand(trackUserCmd)
	rootCmd.AddCommand(untrackUserCmd)

	for _, cmd := range []*cobra.Command{createPoolCmd, addTokenCmd, setRiskCmd, setReserveFactorCmd, pausePoolCmd, unpausePoolCmd} {
		cmd.Flags().String("actor", "", "acting admin user id, defaults to the dapp client id")
	}

	createPoolCmd.Flags().String("name", "", "pool name")
	createPoolCmd.Flags().String("reserve-factor", "0.1", "share of interest withheld for reserves")
	createPoolCmd.Flags().String("bonus", "0.05", "liquidation bonus")

	addTokenCmd.Flags().Uint64("pool", 0, "pool id")
	addTokenCmd.Flags().String("asset", "", "asset id")
	addTokenCmd.Flags().String("symbol", "", "token symbol")
	addRiskParamFlags(addTokenCmd)

	setRiskCmd.Flags().Uint64("pool", 0, "pool id")
	setRiskCmd.Flags().String("asset", "", "asset id")
	addRiskParamFlags(setRiskCmd)

	setReserveFactorCmd.Flags().Uint64("pool", 0, "pool id")
	setReserveFactorCmd.Flags().String("value", "0.1", "new reserve factor")

	pausePoolCmd.Flags().Uint64("pool", 0, "pool id")
	unpausePoolCmd.Flags().Uint64("pool", 0, "pool id")

	grantRoleCmd.Flags().String("user", "", "user id")
	grantRoleCmd.Flags().String("role", "", "role name")
	revokeRoleCmd.Flags().String("user", "", "user id")
	revokeRoleCmd.Flags().String("role", "", "role name")

	trackUserCmd.Flags().Uint64("pool", 0, "pool id")
	trackUserCmd.Flags().String("user", "", "user id")
	untrackUserCmd.Flags().Uint64("pool", 0, "pool id")
	untrackUserCmd.Flags().String("user", "", "user id")
}
