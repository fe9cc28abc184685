package hc

import (
	"net/http"
	"time"

	"lagoon/handler/render"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

// Handle reports process uptime and build version.
func Handle(version string) http.Handler {
	boot := time.Now()

	r := chi.NewRouter()
	r.Use(middleware.NoCache)
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, render.H{
			"uptime":  time.Since(boot).Truncate(time.Millisecond).String(),
			"version": version,
		})
	})

	return r
}
