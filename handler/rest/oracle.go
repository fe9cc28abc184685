package rest

import (
	"net/http"

	"lagoon/core"
	"lagoon/handler/render"

	"github.com/go-chi/chi"
)

func listPricesHandler(prices core.IPriceStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := prices.All(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, list)
	}
}

func priceHandler(prices core.IPriceStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tick, err := prices.Find(r.Context(), chi.URLParam(r, "assetID"))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, tick)
	}
}
