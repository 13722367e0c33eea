// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/pollvote/auth"
	"github.com/danielhkuo/pollvote/cliparse"
	"github.com/danielhkuo/pollvote/engine"
	"github.com/danielhkuo/pollvote/handlers"
	"github.com/danielhkuo/pollvote/lifecycle"
	"github.com/danielhkuo/pollvote/metrics"
	"github.com/danielhkuo/pollvote/middleware"
	"github.com/danielhkuo/pollvote/models"
	"github.com/danielhkuo/pollvote/notify"
	"github.com/danielhkuo/pollvote/results"
	"github.com/danielhkuo/pollvote/store"
)

// Options carries the process-wide pieces the router does not build
// itself. Zero values give a standalone single-instance setup.
type Options struct {
	// Broker feeds live result streams. Defaults to a new broker.
	Broker *notify.Broker
	// Publisher announces changes. Defaults to Broker; set it to a
	// notify.RedisBridge to reach other instances.
	Publisher notify.Publisher
	// Registry exposes /metrics. Defaults to a new registry.
	Registry *prometheus.Registry
}

func NewRouter(db *sql.DB, cfg cliparse.Config, opts Options) (http.Handler, error) {
	if opts.Broker == nil {
		opts.Broker = notify.NewBroker()
	}
	if opts.Publisher == nil {
		opts.Publisher = opts.Broker
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	verifier, err := auth.NewVerifier(cfg.AuthSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create token verifier: %w", err)
	}
	m, err := metrics.New(opts.Registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	s := store.New(db)

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(lifecycle.New(s, opts.Publisher, m))
	votingHandler := handlers.NewVotingHandler(engine.New(s, opts.Publisher, m))
	resultsHandler := handlers.NewResultsHandler(results.New(s, opts.Broker, m), cfg.AllowedOrigin)

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			middleware.WriteError(w, fmt.Errorf("health: %w: %w", models.ErrStoreUnavailable, err))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))

	// Poll lifecycle
	mux.HandleFunc("POST /polls", middleware.WithLogging(middleware.RequireAuth(pollHandler.CreatePoll)))
	mux.HandleFunc("GET /polls", middleware.WithLogging(pollHandler.ListPolls))
	mux.HandleFunc("GET /polls/latest", middleware.WithLogging(pollHandler.LatestPolls))
	mux.HandleFunc("GET /polls/mine", middleware.WithLogging(middleware.RequireAuth(pollHandler.MyPolls)))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("POST /polls/{id}/toggle", middleware.WithLogging(middleware.RequireAuth(pollHandler.ToggleStatus)))
	mux.HandleFunc("DELETE /polls/{id}", middleware.WithLogging(middleware.RequireAuth(pollHandler.DeletePoll)))

	// Voting
	mux.HandleFunc("POST /polls/{id}/votes", middleware.WithLogging(middleware.RequireAuth(votingHandler.CastVote)))
	mux.HandleFunc("GET /polls/{id}/votes/me", middleware.WithLogging(middleware.RequireAuth(votingHandler.MyVote)))

	// Results
	mux.HandleFunc("GET /polls/{id}/results", middleware.WithLogging(resultsHandler.GetResults))
	mux.HandleFunc("GET /polls/{id}/results/live", middleware.WithLogging(resultsHandler.LiveResults))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pollvote API v1"))
	})

	return middleware.CORS(cfg.AllowedOrigin, middleware.Authenticate(verifier, mux)), nil
}
