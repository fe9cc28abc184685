package rest

import (
	"net/http"
	"time"

	"lagoon/core"
	"lagoon/handler/param"
	"lagoon/handler/render"

	"github.com/go-chi/chi"
	"github.com/spf13/cast"
)

func keeperRunsHandler(keepers core.IKeeperStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := cast.ToInt(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 20
		}

		runs, err := keepers.ListRuns(r.Context(), limit)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, runs)
	}
}

func trackedUsersHandler(keeperSrv core.IKeeperService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := keeperSrv.TrackedUsers(r.Context(), urlPoolID(r))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, users)
	}
}

func trackUserHandler(keeperSrv core.IKeeperService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			UserID string `json:"user_id"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if err := keeperSrv.TrackUser(r.Context(), urlPoolID(r), params.UserID); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{})
	}
}

func untrackUserHandler(keeperSrv core.IKeeperService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := keeperSrv.UntrackUser(r.Context(), urlPoolID(r), chi.URLParam(r, "userID")); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{})
	}
}

func checkUpkeepHandler(keeperSrv core.IKeeperService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidates, err := keeperSrv.CheckUpkeep(r.Context(), time.Now())
		if err != nil {
			render.Error(w, err)
			return
		}

		if candidates == nil {
			candidates = []*core.Candidate{}
		}

		render.JSON(w, candidates)
	}
}

func performUpkeepHandler(keeperSrv core.IKeeperService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Candidates []*core.Candidate `json:"candidates"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		run, err := keeperSrv.PerformUpkeep(r.Context(), params.Candidates)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, run)
	}
}
