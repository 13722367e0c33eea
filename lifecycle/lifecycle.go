// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/danielhkuo/pollvote/auth"
	"github.com/danielhkuo/pollvote/metrics"
	"github.com/danielhkuo/pollvote/models"
	"github.com/danielhkuo/pollvote/notify"
	"github.com/danielhkuo/pollvote/store"
)

// Latest-polls feed sizes.
const (
	DefaultLatest = 10
	MaxLatest     = 100
)

// Manager creates, toggles and deletes polls. It is the only writer of
// is_active and the only component that deletes.
type Manager struct {
	store   *store.Store
	notify  notify.Publisher
	metrics *metrics.Metrics
	now     func() time.Time
}

func New(s *store.Store, pub notify.Publisher, m *metrics.Metrics) *Manager {
	return &Manager{store: s, notify: pub, metrics: m, now: time.Now}
}

// Validate normalizes in and reports every rule it breaks.
func Validate(in models.CreatePollInput) (models.CreatePollInput, error) {
	out := models.CreatePollInput{
		Question:         strings.TrimSpace(in.Question),
		IsAnonymous:      in.IsAnonymous,
		Category:         strings.TrimSpace(in.Category),
		IsCustomCategory: in.IsCustomCategory,
	}
	fields := make(map[string]string)

	if len([]rune(out.Question)) < models.MinQuestionLength {
		fields["question"] = fmt.Sprintf("must be at least %d characters", models.MinQuestionLength)
	}

	seen := make(map[string]bool, len(in.Options))
	for _, opt := range in.Options {
		text := strings.TrimSpace(opt)
		if text == "" {
			fields["options"] = "options cannot be blank"
			break
		}
		key := strings.ToLower(text)
		if seen[key] {
			fields["options"] = "options must be distinct"
			break
		}
		seen[key] = true
		out.Options = append(out.Options, text)
	}
	if _, bad := fields["options"]; !bad && len(out.Options) < models.MinOptions {
		fields["options"] = fmt.Sprintf("at least %d options are required", models.MinOptions)
	}

	if out.Category == "" {
		fields["category"] = "category is required"
	}

	if len(fields) > 0 {
		return models.CreatePollInput{}, &models.ValidationError{Fields: fields}
	}
	return out, nil
}

// CreatePoll stores a new active poll with zeroed counters.
func (m *Manager) CreatePoll(ctx context.Context, in models.CreatePollInput, p *auth.Principal) (string, error) {
	if p == nil || p.ID == "" {
		return "", models.ErrUnauthenticated
	}

	in, err := Validate(in)
	if err != nil {
		return "", err
	}

	poll := models.Poll{
		ID:               auth.NewID(),
		Question:         in.Question,
		CreatedBy:        p.ID,
		CreatedAt:        m.now().UTC(),
		IsActive:         true,
		IsAnonymous:      in.IsAnonymous,
		Category:         in.Category,
		IsCustomCategory: in.IsCustomCategory,
	}
	for _, text := range in.Options {
		poll.Options = append(poll.Options, models.Option{ID: auth.NewID(), Text: text})
	}

	err = m.store.InTx(ctx, func(q store.DBTX) error {
		return m.store.Polls.Insert(ctx, q, poll)
	})
	if err != nil {
		return "", fmt.Errorf("create poll: %w", err)
	}

	m.metrics.PollsCreated.Inc()
	slog.Info("poll created", "poll_id", poll.ID, "creator", p.ID, "options", len(poll.Options))

	return poll.ID, nil
}

// ToggleStatus flips the poll between active and closed and returns the
// new state. Only the creator or an admin may do this.
func (m *Manager) ToggleStatus(ctx context.Context, pollID string, p *auth.Principal) (bool, error) {
	if p == nil || p.ID == "" {
		return false, models.ErrUnauthenticated
	}

	var isActive bool
	err := m.store.InTx(ctx, func(q store.DBTX) error {
		owner, _, err := m.store.Polls.Lock(ctx, q, pollID)
		if err != nil {
			return err
		}
		if !p.CanManage(owner) {
			return models.ErrForbidden
		}
		isActive, err = m.store.Polls.FlipActive(ctx, q, pollID)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("toggle poll: %w", err)
	}

	m.metrics.PollsToggled.Inc()
	slog.Info("poll toggled", "poll_id", pollID, "is_active", isActive, "by", p.ID, "admin", p.IsAdmin)
	m.publish(ctx, pollID)

	return isActive, nil
}

// DeletePoll removes the poll, its options and every vote on it in one
// transaction. Either everything goes or nothing does.
func (m *Manager) DeletePoll(ctx context.Context, pollID string, p *auth.Principal) error {
	if p == nil || p.ID == "" {
		return models.ErrUnauthenticated
	}

	var removed int64
	err := m.store.InTx(ctx, func(q store.DBTX) error {
		// Locking first makes any in-flight vote either finish before the
		// sweep (and get swept) or run after and find no poll.
		owner, _, err := m.store.Polls.Lock(ctx, q, pollID)
		if err != nil {
			return err
		}
		if !p.CanManage(owner) {
			return models.ErrForbidden
		}

		removed, err = m.store.Votes.DeleteForPoll(ctx, q, pollID)
		if err != nil {
			return err
		}
		return m.store.Polls.Delete(ctx, q, pollID)
	})
	if err != nil {
		return fmt.Errorf("delete poll: %w", err)
	}

	m.metrics.PollsDeleted.Inc()
	m.metrics.VotesDeleted.Add(float64(removed))
	slog.Info("poll deleted", "poll_id", pollID, "votes_removed", removed, "by", p.ID, "admin", p.IsAdmin)
	m.publish(ctx, pollID)

	return nil
}

func (m *Manager) publish(ctx context.Context, pollID string) {
	if err := m.notify.Publish(ctx, pollID); err != nil {
		slog.Warn("failed to publish poll change", "poll_id", pollID, "error", err)
	}
}

// GetPoll returns a poll with its current counters.
func (m *Manager) GetPoll(ctx context.Context, pollID string) (models.Poll, error) {
	return m.store.Polls.Get(ctx, m.store.DB(), pollID)
}

// ListPolls returns every poll newest first, optionally within one category.
func (m *Manager) ListPolls(ctx context.Context, category string) ([]models.Poll, error) {
	return m.store.Polls.List(ctx, m.store.DB(), store.ListFilter{Category: strings.TrimSpace(category)})
}

// LatestPolls returns the n newest polls (DefaultLatest when n <= 0,
// at most MaxLatest).
func (m *Manager) LatestPolls(ctx context.Context, n int) ([]models.Poll, error) {
	if n <= 0 {
		n = DefaultLatest
	}
	n = min(n, MaxLatest)
	return m.store.Polls.List(ctx, m.store.DB(), store.ListFilter{Limit: n})
}

// UserPolls returns the polls p created, newest first.
func (m *Manager) UserPolls(ctx context.Context, p *auth.Principal) ([]models.Poll, error) {
	if p == nil || p.ID == "" {
		return nil, models.ErrUnauthenticated
	}
	return m.store.Polls.List(ctx, m.store.DB(), store.ListFilter{CreatedBy: p.ID})
}
