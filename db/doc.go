// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Drivers

Two dialects share one schema and one set of queries ($N placeholders):

  - postgres via github.com/lib/pq
  - sqlite via modernc.org/sqlite (pure Go, the default)

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

SQLite connections get busy_timeout, WAL, foreign keys and immediate
transactions, and the pool is capped at one connection.

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - poll: question, lifecycle flags and the total_votes counter
  - poll_option: ordered options with their vote_count counter
  - vote: the ledger, one row per (poll_id, user_id)

# Relationships

	poll 1──* poll_option
	poll 1──* vote
	poll_option 1──* vote

# Constraints

  - vote (poll_id, user_id) unique: one vote per user per poll
  - vote (poll_id, seq) unique: arrival order within a poll
  - poll_option (poll_id, position) unique: stable option order
  - counters CHECK >= 0
*/
package db
