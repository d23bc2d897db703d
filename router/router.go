// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/pulsepoll/admission"
	"github.com/danielhkuo/pulsepoll/cliparse"
	"github.com/danielhkuo/pulsepoll/handlers"
	"github.com/danielhkuo/pulsepoll/metrics"
	"github.com/danielhkuo/pulsepoll/middleware"
	"github.com/danielhkuo/pulsepoll/models"
	"github.com/danielhkuo/pulsepoll/notify"
	"github.com/danielhkuo/pulsepoll/store"
)

// Services are the long-lived components the routes are served by
type Services struct {
	Store    store.Store
	Pipeline *admission.Pipeline
	Notifier *notify.Notifier
	Metrics  *metrics.Admission
	Gatherer prometheus.Gatherer
}

func NewRouter(svc Services, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(svc.Store)
	votingHandler := handlers.NewVotingHandler(svc.Pipeline)
	eventsHandler := handlers.NewEventsHandler(svc.Store, svc.Notifier, svc.Metrics, cfg.CORSOrigins)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Store.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("UNAVAILABLE"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.Handle("GET /metrics", promhttp.HandlerFor(svc.Gatherer, promhttp.HandlerOpts{}))

	// Polls
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))

	// Voting
	mux.HandleFunc("POST /polls/{id}/vote", middleware.WithLogging(votingHandler.Vote))

	// Live updates
	mux.HandleFunc("GET /polls/{id}/events", middleware.WithLogging(eventsHandler.Stream))
	mux.HandleFunc("GET /polls/{id}/ws", middleware.WithLogging(eventsHandler.WebSocket))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{
			Status:  "ok",
			Service: "pulsepoll",
			Storage: cfg.DatabaseType,
		})
	})

	return mux
}
