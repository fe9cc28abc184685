package rest

import (
	"net/http"
	"time"

	"lagoon/core"
	"lagoon/handler/render"
	"lagoon/handler/views"
	"lagoon/pkg/ledger"

	"github.com/go-chi/chi"
)

func listPositionsHandler(pools core.IPoolStore, tokens core.ITokenStore, positions core.IPositionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		pool, err := pools.Find(ctx, urlPoolID(r))
		if err != nil {
			render.Error(w, err)
			return
		}

		list, err := positions.ListByUser(ctx, pool.ID, chi.URLParam(r, "userID"))
		if err != nil {
			render.Error(w, err)
			return
		}

		now := time.Now()
		positionViews := make([]*views.Position, 0, len(list))
		for _, position := range list {
			if position.Zero() {
				continue
			}

			token, err := tokens.Find(ctx, pool.ID, position.AssetID)
			if err != nil {
				render.Error(w, err)
				return
			}

			previewed := ledger.Preview(token, pool.ReserveFactor, now)
			positionViews = append(positionViews, &views.Position{
				Position: *position,
				Supplied: ledger.SuppliedBalance(position, previewed),
				Borrowed: ledger.BorrowedBalance(position, previewed),
			})
		}

		render.JSON(w, positionViews)
	}
}

func healthHandler(riskSrv core.IRiskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		poolID := urlPoolID(r)
		userID := chi.URLParam(r, "userID")

		snapshot, err := riskSrv.GetHealthSnapshot(ctx, poolID, userID)
		if err != nil {
			render.Error(w, err)
			return
		}

		borrowPower, err := riskSrv.GetBorrowPowerUSD(ctx, poolID, userID)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, &views.Health{
			HealthSnapshot: *snapshot,
			BorrowPowerUSD: borrowPower,
			Liquidatable:   snapshot.Liquidatable(),
		})
	}
}
