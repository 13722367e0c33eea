// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the pollvote API server.

pollvote is a single-choice polling service. Users create polls, every
authenticated user votes once per poll, and results (counts, rounded
percentages and, for named polls, voter lists) are readable at any time
and streamed live over websockets.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=pollvote.db AUTH_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -auth-secret ...

A .env file in the working directory is loaded first if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite path or PostgreSQL connection string
  - AUTH_SECRET (-auth-secret): HS256 key for bearer tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - REDIS_URL (-redis): fan live-result signals out across instances
  - LOG_LEVEL (-log-level): debug, info, warn or error
  - ALLOWED_ORIGIN (-origin): browser origin for CORS and websockets

# Architecture

  - store: poll store and vote ledger over database/sql
  - engine: vote casting, the only writer of counters
  - lifecycle: create, toggle, delete and list polls
  - results: result views and live subscriptions
  - notify: change signals, in-process and over redis
  - handlers, router, middleware: the HTTP surface
  - metrics: prometheus collectors
  - auth, models, db, cliparse: supporting packages

The server, the redis relay and signal handling run under one errgroup;
SIGINT or SIGTERM triggers a graceful shutdown.
*/
package main
