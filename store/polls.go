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

// PollStore owns poll documents and their options.
type PollStore struct{}

// ListFilter narrows poll listings. Zero values mean "no filter".
type ListFilter struct {
	Category  string
	CreatedBy string
	Limit     int
}

const pollColumns = `
	p.id, p.question, p.category, p.is_custom_category, p.created_by,
	p.is_active, p.is_anonymous, p.total_votes, p.created_at,
	o.id, o.text, o.vote_count`

// Insert writes a new poll and all of its options.
func (PollStore) Insert(ctx context.Context, q DBTX, poll models.Poll) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO poll (id, question, category, is_custom_category, created_by,
		                  is_active, is_anonymous, total_votes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, poll.ID, poll.Question, poll.Category, poll.IsCustomCategory, poll.CreatedBy,
		poll.IsActive, poll.IsAnonymous, poll.TotalVotes, poll.CreatedAt)
	if err != nil {
		return unavailable("insert poll", err)
	}

	for i, opt := range poll.Options {
		_, err := q.ExecContext(ctx, `
			INSERT INTO poll_option (id, poll_id, position, text, vote_count)
			VALUES ($1, $2, $3, $4, $5)
		`, opt.ID, poll.ID, i, opt.Text, opt.VoteCount)
		if err != nil {
			return unavailable("insert option", err)
		}
	}

	return nil
}

// Get loads a poll with its options in a single statement, so the
// counters it returns always come from the same commit.
func (PollStore) Get(ctx context.Context, q DBTX, pollID string) (models.Poll, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+pollColumns+`
		FROM poll p
		JOIN poll_option o ON o.poll_id = p.id
		WHERE p.id = $1
		ORDER BY o.position
	`, pollID)
	if err != nil {
		return models.Poll{}, unavailable("query poll", err)
	}

	polls, err := scanPolls(rows)
	if err != nil {
		return models.Poll{}, err
	}
	if len(polls) == 0 {
		return models.Poll{}, models.ErrNotFound
	}
	return polls[0], nil
}

// List returns polls newest first.
func (PollStore) List(ctx context.Context, q DBTX, f ListFilter) ([]models.Poll, error) {
	where := "WHERE 1 = 1"
	var args []any
	if f.Category != "" {
		args = append(args, f.Category)
		where += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if f.CreatedBy != "" {
		args = append(args, f.CreatedBy)
		where += fmt.Sprintf(" AND created_by = $%d", len(args))
	}
	limit := ""
	if f.Limit > 0 {
		args = append(args, f.Limit)
		limit = fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := q.QueryContext(ctx, `
		SELECT `+pollColumns+`
		FROM poll p
		JOIN poll_option o ON o.poll_id = p.id
		WHERE p.id IN (
			SELECT id FROM poll `+where+`
			ORDER BY created_at DESC, id`+limit+`
		)
		ORDER BY p.created_at DESC, p.id, o.position
	`, args...)
	if err != nil {
		return nil, unavailable("list polls", err)
	}

	return scanPolls(rows)
}

// scanPolls folds joined poll/option rows back into polls, keeping the
// row order. Closes rows.
func scanPolls(rows *sql.Rows) ([]models.Poll, error) {
	defer rows.Close()

	polls := []models.Poll{}
	for rows.Next() {
		var p models.Poll
		var opt models.Option
		if err := rows.Scan(
			&p.ID, &p.Question, &p.Category, &p.IsCustomCategory, &p.CreatedBy,
			&p.IsActive, &p.IsAnonymous, &p.TotalVotes, &p.CreatedAt,
			&opt.ID, &opt.Text, &opt.VoteCount,
		); err != nil {
			return nil, unavailable("scan poll", err)
		}

		if n := len(polls); n > 0 && polls[n-1].ID == p.ID {
			polls[n-1].Options = append(polls[n-1].Options, opt)
			continue
		}
		p.Options = []models.Option{opt}
		polls = append(polls, p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate polls", err)
	}

	return polls, nil
}

// Exists reports whether pollID is stored.
func (PollStore) Exists(ctx context.Context, q DBTX, pollID string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM poll WHERE id = $1)`, pollID).Scan(&exists)
	if err != nil {
		return false, unavailable("check poll", err)
	}
	return exists, nil
}

// Lock takes the poll's row lock for the rest of the transaction and
// returns its owner and active flag. The no-op UPDATE stands in for
// SELECT ... FOR UPDATE, which sqlite lacks; it touches a non-key column
// so no foreign key checks fire.
func (PollStore) Lock(ctx context.Context, q DBTX, pollID string) (createdBy string, isActive bool, err error) {
	err = q.QueryRowContext(ctx, `
		UPDATE poll SET total_votes = total_votes WHERE id = $1
		RETURNING created_by, is_active
	`, pollID).Scan(&createdBy, &isActive)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, models.ErrNotFound
	}
	if err != nil {
		return "", false, unavailable("lock poll", err)
	}
	return createdBy, isActive, nil
}

// BumpTally increments total_votes on an active poll and returns the new
// total, which doubles as the vote's arrival sequence number. ok is false
// when no active poll matched; the caller decides between not found and
// closed.
func (PollStore) BumpTally(ctx context.Context, q DBTX, pollID string) (seq int, isAnonymous bool, ok bool, err error) {
	err = q.QueryRowContext(ctx, `
		UPDATE poll SET total_votes = total_votes + 1
		WHERE id = $1 AND is_active = TRUE
		RETURNING total_votes, is_anonymous
	`, pollID).Scan(&seq, &isAnonymous)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, unavailable("increment total votes", err)
	}
	return seq, isAnonymous, true, nil
}

// BumpOption increments one option's vote_count. ok is false when the
// option is not part of the poll.
func (PollStore) BumpOption(ctx context.Context, q DBTX, pollID, optionID string) (ok bool, err error) {
	res, err := q.ExecContext(ctx, `
		UPDATE poll_option SET vote_count = vote_count + 1
		WHERE poll_id = $1 AND id = $2
	`, pollID, optionID)
	if err != nil {
		return false, unavailable("increment option votes", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("increment option votes", err)
	}
	return n == 1, nil
}

// FlipActive inverts is_active and returns the new value.
func (PollStore) FlipActive(ctx context.Context, q DBTX, pollID string) (bool, error) {
	var isActive bool
	err := q.QueryRowContext(ctx, `
		UPDATE poll SET is_active = NOT is_active
		WHERE id = $1
		RETURNING is_active
	`, pollID).Scan(&isActive)
	if errors.Is(err, sql.ErrNoRows) {
		return false, models.ErrNotFound
	}
	if err != nil {
		return false, unavailable("toggle poll", err)
	}
	return isActive, nil
}

// Delete removes the poll and its options. Votes must already be gone.
func (PollStore) Delete(ctx context.Context, q DBTX, pollID string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM poll_option WHERE poll_id = $1`, pollID); err != nil {
		return unavailable("delete options", err)
	}

	res, err := q.ExecContext(ctx, `DELETE FROM poll WHERE id = $1`, pollID)
	if err != nil {
		return unavailable("delete poll", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("delete poll", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
