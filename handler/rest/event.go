package rest

import (
	"net/http"

	"lagoon/core"
	"lagoon/handler/param"
	"lagoon/handler/render"

	"github.com/go-chi/chi"
)

type eventCursor struct {
	FromID uint64 `json:"from_id"`
	Limit  int    `json:"limit"`
}

func (c eventCursor) limitOr(def int) int {
	if c.Limit <= 0 {
		return def
	}

	return c.Limit
}

func eventsHandler(events core.IEventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cursor eventCursor
		if err := param.Binding(r, &cursor); err != nil {
			render.BadRequest(w, err)
			return
		}

		list, err := events.List(r.Context(), cursor.FromID, cursor.limitOr(100))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, list)
	}
}

func poolEventsHandler(events core.IEventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cursor eventCursor
		if err := param.Binding(r, &cursor); err != nil {
			render.BadRequest(w, err)
			return
		}

		list, err := events.ListByPool(r.Context(), urlPoolID(r), cursor.FromID, cursor.limitOr(100))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, list)
	}
}

func userEventsHandler(events core.IEventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cursor eventCursor
		if err := param.Binding(r, &cursor); err != nil {
			render.BadRequest(w, err)
			return
		}

		list, err := events.ListByUser(r.Context(), urlPoolID(r), chi.URLParam(r, "userID"), cursor.FromID, cursor.limitOr(100))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, list)
	}
}
