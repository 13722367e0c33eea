// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/pollvote/models"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every query can run
// standalone or as part of a caller's transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store bundles the poll store and the vote ledger over one database.
type Store struct {
	db    *sql.DB
	Polls PollStore
	Votes VoteLedger
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the handle for standalone (auto-commit) queries.
func (s *Store) DB() DBTX {
	return s.db
}

// InTx runs fn inside a transaction. fn's error aborts the transaction
// and is returned unchanged; begin and commit failures are reported as
// models.ErrStoreUnavailable.
func (s *Store) InTx(ctx context.Context, fn func(q DBTX) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateVote
		}
		return unavailable("commit transaction", err)
	}
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", models.ErrStoreUnavailable, op, err)
}

// isUniqueViolation recognizes unique constraint failures from both drivers
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		// Extended codes carry the primary code in the low byte
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT &&
			strings.Contains(liteErr.Error(), "UNIQUE")
	}
	return false
}
