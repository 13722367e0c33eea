// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package results projects polls into result views and live streams.
package results

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/danielhkuo/pollvote/metrics"
	"github.com/danielhkuo/pollvote/models"
	"github.com/danielhkuo/pollvote/notify"
	"github.com/danielhkuo/pollvote/store"
)

// Projector builds read-only result views. It never writes.
type Projector struct {
	store   *store.Store
	broker  *notify.Broker
	metrics *metrics.Metrics
}

func New(s *store.Store, b *notify.Broker, m *metrics.Metrics) *Projector {
	return &Projector{store: s, broker: b, metrics: m}
}

// Percentage is round-half-up(count / total * 100), 0 when total is 0.
// Percentages of a poll are rounded independently and need not sum to 100.
func Percentage(count, total int) int {
	if total <= 0 {
		return 0
	}
	return (count*200 + total) / (2 * total)
}

// GetResults returns the poll's current tally. Counters come from one
// statement; voters are limited to the votes those counters include.
func (p *Projector) GetResults(ctx context.Context, pollID string) (models.Results, error) {
	q := p.store.DB()

	poll, err := p.store.Polls.Get(ctx, q, pollID)
	if err != nil {
		return models.Results{}, err
	}

	var voters map[string][]string
	if !poll.IsAnonymous {
		voters, err = p.store.Votes.Voters(ctx, q, pollID, poll.TotalVotes)
		if err != nil {
			return models.Results{}, err
		}
	}

	return project(poll, voters), nil
}

// project turns a poll snapshot into a results view. voters must be nil
// for anonymous polls.
func project(poll models.Poll, voters map[string][]string) models.Results {
	res := models.Results{
		PollID:      poll.ID,
		Question:    poll.Question,
		IsActive:    poll.IsActive,
		IsAnonymous: poll.IsAnonymous,
		TotalVotes:  poll.TotalVotes,
		Options:     make([]models.OptionResult, 0, len(poll.Options)),
	}

	for _, opt := range poll.Options {
		or := models.OptionResult{
			ID:         opt.ID,
			Text:       opt.Text,
			VoteCount:  opt.VoteCount,
			Percentage: Percentage(opt.VoteCount, poll.TotalVotes),
		}
		if !poll.IsAnonymous {
			or.Voters = voters[opt.ID]
		}
		res.Options = append(res.Options, or)
	}

	return res
}

// Subscription is one caller's live results stream. C receives the
// current view first and a fresh view after every change. C is closed
// when the subscription ends: Close, context cancellation or poll
// deletion.
type Subscription struct {
	C <-chan models.Results

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// Close ends the subscription and waits for its goroutine to exit.
func (s *Subscription) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

// Subscribe opens a live stream for pollID. It fails with
// models.ErrNotFound when the poll does not exist.
func (p *Projector) Subscribe(ctx context.Context, pollID string) (*Subscription, error) {
	// Register before the first read so no change can slip in between
	signal, cancel := p.broker.Subscribe(pollID)

	first, err := p.GetResults(ctx, pollID)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan models.Results, 1)
	out <- first

	sub := &Subscription{
		C:    out,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	p.metrics.LiveSubscribers.Inc()
	go func() {
		defer close(sub.done)
		defer close(out)
		defer p.metrics.LiveSubscribers.Dec()
		defer cancel()

		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.stop:
				return
			case <-signal:
			}

			res, err := p.GetResults(ctx, pollID)
			if errors.Is(err, models.ErrNotFound) {
				slog.Debug("live results ended, poll deleted", "poll_id", pollID)
				return
			}
			if err != nil {
				// Transient; the next signal retries
				slog.Warn("failed to refresh live results", "poll_id", pollID, "error", err)
				continue
			}

			// Drop a stale unread view in favour of the newer one
			select {
			case <-out:
			default:
			}
			select {
			case out <- res:
			case <-ctx.Done():
				return
			case <-sub.stop:
				return
			}
		}
	}()

	return sub, nil
}
