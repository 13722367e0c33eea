// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/pollvote/models"
)

// VoteLedger owns the append-only vote rows.
type VoteLedger struct{}

// Insert appends a vote. The (poll_id, user_id) unique constraint is the
// only duplicate check; a violation becomes models.ErrDuplicateVote.
func (VoteLedger) Insert(ctx context.Context, q DBTX, v models.Vote) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO vote (id, poll_id, user_id, option_id, user_display_name, seq, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, v.ID, v.PollID, v.UserID, v.OptionID, v.DisplayName, v.Seq, v.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateVote
		}
		return unavailable("insert vote", err)
	}
	return nil
}

// Exists reports whether userID has a vote on pollID.
func (VoteLedger) Exists(ctx context.Context, q DBTX, pollID, userID string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM vote
			WHERE poll_id = $1 AND user_id = $2
		)
	`, pollID, userID).Scan(&exists)
	if err != nil {
		return false, unavailable("check vote", err)
	}
	return exists, nil
}

// ForUser returns userID's vote on pollID.
func (VoteLedger) ForUser(ctx context.Context, q DBTX, pollID, userID string) (models.Vote, error) {
	var v models.Vote
	err := q.QueryRowContext(ctx, `
		SELECT id, poll_id, user_id, option_id, user_display_name, seq, created_at
		FROM vote
		WHERE poll_id = $1 AND user_id = $2
	`, pollID, userID).Scan(&v.ID, &v.PollID, &v.UserID, &v.OptionID, &v.DisplayName, &v.Seq, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vote{}, fmt.Errorf("vote: %w", models.ErrNotFound)
	}
	if err != nil {
		return models.Vote{}, unavailable("query vote", err)
	}
	return v, nil
}

// Voters returns display names per option in arrival order, limited to
// votes with seq <= maxSeq. Passing the poll's total_votes from the same
// read yields the voters that the counters account for, and no others.
func (VoteLedger) Voters(ctx context.Context, q DBTX, pollID string, maxSeq int) (map[string][]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT option_id, user_display_name
		FROM vote
		WHERE poll_id = $1 AND seq <= $2
		ORDER BY seq
	`, pollID, maxSeq)
	if err != nil {
		return nil, unavailable("query voters", err)
	}
	defer rows.Close()

	voters := make(map[string][]string)
	for rows.Next() {
		var optionID, name string
		if err := rows.Scan(&optionID, &name); err != nil {
			return nil, unavailable("scan voter", err)
		}
		if name == "" {
			name = models.AnonymousVoterName
		}
		voters[optionID] = append(voters[optionID], name)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate voters", err)
	}

	return voters, nil
}

// Count returns the number of ledger rows for pollID.
func (VoteLedger) Count(ctx context.Context, q DBTX, pollID string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM vote WHERE poll_id = $1`, pollID).Scan(&n)
	if err != nil {
		return 0, unavailable("count votes", err)
	}
	return n, nil
}

// DeleteForPoll removes every vote on pollID and returns how many went.
func (VoteLedger) DeleteForPoll(ctx context.Context, q DBTX, pollID string) (int64, error) {
	res, err := q.ExecContext(ctx, `DELETE FROM vote WHERE poll_id = $1`, pollID)
	if err != nil {
		return 0, unavailable("delete votes", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, unavailable("delete votes", err)
	}
	return n, nil
}
