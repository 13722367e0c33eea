// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package engine records votes against the poll store and vote ledger.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/pollvote/auth"
	"github.com/danielhkuo/pollvote/metrics"
	"github.com/danielhkuo/pollvote/models"
	"github.com/danielhkuo/pollvote/notify"
	"github.com/danielhkuo/pollvote/store"
)

// Engine records votes. It is the only writer of vote counters.
type Engine struct {
	store   *store.Store
	notify  notify.Publisher
	metrics *metrics.Metrics
	now     func() time.Time
}

func New(s *store.Store, pub notify.Publisher, m *metrics.Metrics) *Engine {
	return &Engine{store: s, notify: pub, metrics: m, now: time.Now}
}

// CastVote records p's vote for optionID on pollID.
//
// The tally bump, option bump and ledger insert share one transaction.
// The poll's active flag is checked by the tally UPDATE itself, under the
// row lock, so a close that commits first always wins. Duplicates are
// caught by the ledger's unique constraint, never by a prior read.
func (e *Engine) CastVote(ctx context.Context, pollID, optionID string, p *auth.Principal) (models.Vote, error) {
	vote, err := e.castVote(ctx, pollID, optionID, p)
	if err != nil {
		e.metrics.RejectVote(err)
		return models.Vote{}, err
	}

	e.metrics.VotesCast.Inc()
	slog.Info("vote cast", "poll_id", pollID, "vote_id", vote.ID, "seq", vote.Seq)

	if err := e.notify.Publish(ctx, pollID); err != nil {
		slog.Warn("failed to publish tally change", "poll_id", pollID, "error", err)
	}
	return vote, nil
}

func (e *Engine) castVote(ctx context.Context, pollID, optionID string, p *auth.Principal) (models.Vote, error) {
	if p == nil || p.ID == "" {
		return models.Vote{}, models.ErrUnauthenticated
	}

	vote := models.Vote{
		ID:        auth.NewID(),
		PollID:    pollID,
		UserID:    p.ID,
		OptionID:  optionID,
		CreatedAt: e.now().UTC(),
	}

	err := e.store.InTx(ctx, func(q store.DBTX) error {
		seq, isAnonymous, ok, err := e.store.Polls.BumpTally(ctx, q, pollID)
		if err != nil {
			return err
		}
		if !ok {
			return closedOrMissing(ctx, e.store, q, pollID)
		}

		ok, err = e.store.Polls.BumpOption(ctx, q, pollID, optionID)
		if err != nil {
			return err
		}
		if !ok {
			return models.ErrInvalidOption
		}

		vote.Seq = seq
		if !isAnonymous {
			vote.DisplayName = p.DisplayName
			if vote.DisplayName == "" {
				vote.DisplayName = models.AnonymousVoterName
			}
		}
		return e.store.Votes.Insert(ctx, q, vote)
	})
	if err != nil {
		return models.Vote{}, fmt.Errorf("cast vote: %w", err)
	}

	return vote, nil
}

// closedOrMissing explains why the tally UPDATE matched nothing: the
// poll is gone, or it exists but was inactive at that statement.
func closedOrMissing(ctx context.Context, s *store.Store, q store.DBTX, pollID string) error {
	exists, err := s.Polls.Exists(ctx, q, pollID)
	if err != nil {
		return err
	}
	if !exists {
		return models.ErrNotFound
	}
	return models.ErrPollClosed
}

// HasVoted reports whether p already voted on pollID.
func (e *Engine) HasVoted(ctx context.Context, pollID string, p *auth.Principal) (bool, error) {
	if p == nil || p.ID == "" {
		return false, models.ErrUnauthenticated
	}
	return e.store.Votes.Exists(ctx, e.store.DB(), pollID, p.ID)
}

// UserVote returns p's own vote on pollID, or an error matching
// models.ErrNotFound when there is none.
func (e *Engine) UserVote(ctx context.Context, pollID string, p *auth.Principal) (models.Vote, error) {
	if p == nil || p.ID == "" {
		return models.Vote{}, models.ErrUnauthenticated
	}
	return e.store.Votes.ForUser(ctx, e.store.DB(), pollID, p.ID)
}
