package rest

import (
	"net/http"

	"lagoon/core"
	"lagoon/handler/render"
	"lagoon/handler/request"

	"github.com/go-chi/chi"
	"github.com/spf13/cast"
	"github.com/twitchtv/twirp"
)

// Handle handle rest api request
func Handle(
	system *core.System,
	pools core.IPoolStore,
	tokens core.ITokenStore,
	positions core.IPositionStore,
	events core.IEventStore,
	prices core.IPriceStore,
	keepers core.IKeeperStore,
	lending core.ILendingService,
	riskSrv core.IRiskService,
	keeperSrv core.IKeeperService,
	oracleSrv core.IPriceOracleService,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFound(w, "not found")
	})

	router.Route("/pools", func(r chi.Router) {
		r.Get("/", listPoolsHandler(pools))
		r.Post("/", createPoolHandler(lending))

		r.Route("/{poolID}", func(r chi.Router) {
			r.Get("/", poolHandler(pools))
			r.Get("/tokens", listTokensHandler(pools, tokens, oracleSrv))
			r.Post("/tokens", addTokenHandler(lending))
			r.Post("/tokens/{assetID}/risk-params", setRiskParamsHandler(lending))
			r.Post("/reserve-factor", setReserveFactorHandler(lending))
			r.Post("/pause", setPausedHandler(lending, true))
			r.Post("/unpause", setPausedHandler(lending, false))

			r.Post("/lend", lendHandler(lending))
			r.Post("/withdraw", withdrawHandler(lending))
			r.Post("/borrow", borrowHandler(lending))
			r.Post("/repay", repayHandler(lending))
			r.Post("/liquidate", liquidateHandler(lending))
			r.Post("/accrue", accrueHandler(lending))

			r.Get("/events", poolEventsHandler(events))

			r.Route("/users/{userID}", func(r chi.Router) {
				r.Get("/positions", listPositionsHandler(pools, tokens, positions))
				r.Get("/health", healthHandler(riskSrv))
				r.Get("/events", userEventsHandler(events))
			})

			r.Route("/keeper", func(r chi.Router) {
				r.Get("/users", trackedUsersHandler(keeperSrv))
				r.Post("/users", trackUserHandler(keeperSrv))
				r.Delete("/users/{userID}", untrackUserHandler(keeperSrv))
			})
		})
	})

	router.Route("/keeper", func(r chi.Router) {
		r.Get("/runs", keeperRunsHandler(keepers))
		r.Post("/check", checkUpkeepHandler(keeperSrv))
		r.Post("/perform", performUpkeepHandler(keeperSrv))
	})

	router.Get("/prices", listPricesHandler(prices))
	router.Get("/prices/{assetID}", priceHandler(prices))
	router.Get("/events", eventsHandler(events))

	return router
}

func urlPoolID(r *http.Request) uint64 {
	return cast.ToUint64(chi.URLParam(r, "poolID"))
}

// authUser extracts the caller identity, writing an unauthenticated error
// when the request carries none.
func authUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := request.UserFrom(r.Context())
	if !ok {
		render.Error(w, twirp.NewError(twirp.Unauthenticated, "authentication required"))
	}

	return userID, ok
}
