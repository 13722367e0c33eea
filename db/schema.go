// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/pollvote/cliparse"
)

// sqliteParams make every transaction take the write lock up front, so
// concurrent votes queue on busy_timeout instead of failing on upgrade.
const sqliteParams = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate"

// Open connects to the configured database and verifies the connection.
func Open(dbType, url string) (*sql.DB, error) {
	switch dbType {
	case cliparse.DatabasePostgres:
		conn, err := sql.Open("postgres", url)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to ping postgres: %w", err)
		}
		return conn, nil

	case cliparse.DatabaseSQLite, "":
		conn, err := sql.Open("sqlite", SQLiteDSN(url))
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		// Pooled connections: WAL readers run alongside the single writer,
		// and writers queue on busy_timeout via BEGIN IMMEDIATE.
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to ping sqlite: %w", err)
		}
		return conn, nil
	}

	return nil, fmt.Errorf("unsupported database type %q", dbType)
}

// SQLiteDSN appends the required pragmas to a sqlite path or file: URL.
func SQLiteDSN(path string) string {
	path = strings.TrimPrefix(path, "sqlite://")
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + sqliteParams
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// Statements are portable between postgres and sqlite: no server-side
// defaults, the application always supplies every value.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS poll (
    id TEXT PRIMARY KEY,
    question TEXT NOT NULL,
    category TEXT NOT NULL,
    is_custom_category BOOLEAN NOT NULL,
    created_by TEXT NOT NULL,
    is_active BOOLEAN NOT NULL,
    is_anonymous BOOLEAN NOT NULL,
    total_votes INTEGER NOT NULL CHECK (total_votes >= 0),
    created_at TIMESTAMP NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_poll_created_by ON poll(created_by)`,
	`CREATE INDEX IF NOT EXISTS idx_poll_created_at ON poll(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_poll_category ON poll(category)`,

	`CREATE TABLE IF NOT EXISTS poll_option (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    text TEXT NOT NULL,
    vote_count INTEGER NOT NULL CHECK (vote_count >= 0),
    UNIQUE (poll_id, position)
)`,
	`CREATE INDEX IF NOT EXISTS idx_poll_option_poll_id ON poll_option(poll_id)`,

	`CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    option_id TEXT NOT NULL REFERENCES poll_option(id) ON DELETE CASCADE,
    user_display_name TEXT NOT NULL,
    seq INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (poll_id, user_id),
    UNIQUE (poll_id, seq)
)`,
	`CREATE INDEX IF NOT EXISTS idx_vote_poll_id ON vote(poll_id)`,
	`CREATE INDEX IF NOT EXISTS idx_vote_option_id ON vote(option_id)`,
}
