package rest

import (
	"context"
	"net/http"
	"time"

	"lagoon/core"
	"lagoon/handler/param"
	"lagoon/handler/render"
	"lagoon/handler/views"
	"lagoon/internal/interest"
	"lagoon/pkg/ledger"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

func listPoolsHandler(pools core.IPoolStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := pools.All(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, list)
	}
}

func poolHandler(pools core.IPoolStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pool, err := pools.Find(r.Context(), urlPoolID(r))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, pool)
	}
}

func listTokensHandler(pools core.IPoolStore, tokens core.ITokenStore, oracleSrv core.IPriceOracleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		pool, err := pools.Find(ctx, urlPoolID(r))
		if err != nil {
			render.Error(w, err)
			return
		}

		list, err := tokens.ListByPool(ctx, pool.ID)
		if err != nil {
			render.Error(w, err)
			return
		}

		tokenViews := make([]*views.Token, 0, len(list))
		for _, token := range list {
			tokenViews = append(tokenViews, getTokenView(ctx, pool, token, oracleSrv))
		}

		render.JSON(w, tokenViews)
	}
}

func getTokenView(ctx context.Context, pool *core.Pool, token *core.Token, oracleSrv core.IPriceOracleService) *views.Token {
	previewed := ledger.Preview(token, pool.ReserveFactor, time.Now())

	borrowRate := ledger.CurBorrowRate(previewed)
	supplyRate := ledger.CurSupplyRate(previewed, pool.ReserveFactor)

	price, _, err := oracleSrv.GetPriceUSD(ctx, token.AssetID)
	if err != nil {
		price = decimal.Zero
	}

	return &views.Token{
		Token:           *previewed,
		UtilizationRate: ledger.CurUtilization(previewed),
		BorrowRate:      borrowRate,
		SupplyRate:      supplyRate,
		BorrowAPY:       interest.Apy(interest.PerSecond(borrowRate)),
		SupplyAPY:       interest.Apy(interest.PerSecond(supplyRate)),
		PriceUSD:        price,
	}
}

func createPoolHandler(lending core.ILendingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := authUser(w, r)
		if !ok {
			return
		}

		var params struct {
			Name             string          `json:"name"`
			ReserveFactor    decimal.Decimal `json:"reserve_factor"`
			LiquidationBonus decimal.Decimal `json:"liquidation_bonus"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		pool, err := lending.CreatePool(r.Context(), actor, params.Name, params.ReserveFactor, params.LiquidationBonus)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, pool)
	}
}

func addTokenHandler(lending core.ILendingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := authUser(w, r)
		if !ok {
			return
		}

		var params struct {
			AssetID string `json:"asset_id"`
			Symbol  string `json:"symbol"`
			core.RiskParams
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		token, err := lending.AddToken(r.Context(), actor, urlPoolID(r), params.AssetID, params.Symbol, params.RiskParams)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, token)
	}
}

func setRiskParamsHandler(lending core.ILendingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := authUser(w, r)
		if !ok {
			return
		}

		var params core.RiskParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		assetID := chi.URLParam(r, "assetID")
		if err := lending.SetRiskParams(r.Context(), actor, urlPoolID(r), assetID, params); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{})
	}
}

func setReserveFactorHandler(lending core.ILendingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := authUser(w, r)
		if !ok {
			return
		}

		var params struct {
			ReserveFactor decimal.Decimal `json:"reserve_factor"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := lending.SetReserveFactor(r.Context(), actor, urlPoolID(r), params.ReserveFactor); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{})
	}
}

func setPausedHandler(lending core.ILendingService, paused bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := authUser(w, r)
		if !ok {
			return
		}

		if err := lending.SetPaused(r.Context(), actor, urlPoolID(r), paused); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{})
	}
}
