package rest

import (
	"context"
	"net/http"
	"time"

	"lagoon/core"
	"lagoon/handler/param"
	"lagoon/handler/render"

	"github.com/shopspring/decimal"
)

type transitionParams struct {
	AssetID string          `json:"asset_id"`
	Amount  decimal.Decimal `json:"amount"`
}

type transitionFunc func(ctx context.Context, userID string, poolID uint64, assetID string, amount decimal.Decimal) (*core.LedgerEvent, error)

// transitionHandler binds the shared lend/withdraw/borrow/repay shape to one
// engine call.
func transitionHandler(fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authUser(w, r)
		if !ok {
			return
		}

		var params transitionParams
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		event, err := fn(r.Context(), userID, urlPoolID(r), params.AssetID, params.Amount)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, event)
	}
}

func lendHandler(lending core.ILendingService) http.HandlerFunc {
	return transitionHandler(lending.Lend)
}

func withdrawHandler(lending core.ILendingService) http.HandlerFunc {
	return transitionHandler(lending.Withdraw)
}

func borrowHandler(lending core.ILendingService) http.HandlerFunc {
	return transitionHandler(lending.Borrow)
}

func repayHandler(lending core.ILendingService) http.HandlerFunc {
	return transitionHandler(lending.Repay)
}

func liquidateHandler(lending core.ILendingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		liquidatorID, ok := authUser(w, r)
		if !ok {
			return
		}

		var params struct {
			UserID            string          `json:"user_id"`
			DebtAssetID       string          `json:"debt_asset_id"`
			RepayAmount       decimal.Decimal `json:"repay_amount"`
			CollateralAssetID string          `json:"collateral_asset_id"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		event, err := lending.Liquidate(r.Context(), liquidatorID, params.UserID, urlPoolID(r), params.DebtAssetID, params.RepayAmount, params.CollateralAssetID)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, event)
	}
}

func accrueHandler(lending core.ILendingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			AssetID string `json:"asset_id"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := lending.Accrue(r.Context(), urlPoolID(r), params.AssetID, time.Now()); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{})
	}
}
