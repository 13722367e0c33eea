// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /polls", middleware.WithLogging(handler))

Logs completion with status and duration_ms. The wrapper still supports
hijacking, so websocket handlers can be wrapped too.

# Authentication

Authenticate verifies an optional bearer token and stores the principal
on the request context. RequireAuth rejects requests without one:

	handler := middleware.Authenticate(verifier, mux)
	mux.HandleFunc("POST /polls", middleware.RequireAuth(h.CreatePoll))

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigin, mux),
	}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.WriteError(w, err)

WriteError maps domain errors to statuses (not found 404, closed or
duplicate 409, invalid option or validation 400, forbidden 403,
unauthenticated 401, store unavailable 503 with Retry-After) and writes
an ErrorResponse carrying the machine-readable code.
*/
package middleware
