// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the pollvote API.

# Route Registration

NewRouter builds the services, wires the handlers and returns the full
handler chain (CORS, bearer authentication, routes):

	mux, err := router.NewRouter(db, cfg, router.Options{})

Options lets main share one notification broker and metrics registry and
swap in a redis publisher.

# Endpoints

Ops:

	GET /health  - Database ping
	GET /metrics - Prometheus exposition

Polls:

	POST   /polls             - Create poll (bearer)
	GET    /polls             - List polls, ?category= filter
	GET    /polls/latest      - Newest polls, ?limit= (default 10)
	GET    /polls/mine        - Caller's polls (bearer)
	GET    /polls/{id}        - Poll with counters
	POST   /polls/{id}/toggle - Open/close (creator or admin)
	DELETE /polls/{id}        - Delete with all votes (creator or admin)

Voting:

	POST /polls/{id}/votes    - Cast vote (bearer)
	GET  /polls/{id}/votes/me - Caller's vote (bearer)

Results:

	GET /polls/{id}/results      - Current results
	GET /polls/{id}/results/live - Websocket stream of results
*/
package router
