// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/pollvote/models"
)

const namespace = "pollvote"

// Metrics holds the service's prometheus collectors.
type Metrics struct {
	VotesCast       prometheus.Counter
	VotesRejected   *prometheus.CounterVec // code
	PollsCreated    prometheus.Counter
	PollsToggled    prometheus.Counter
	PollsDeleted    prometheus.Counter
	VotesDeleted    prometheus.Counter
	LiveSubscribers prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		VotesCast: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_cast_total",
			Help:      "Votes committed to the ledger",
		}),
		VotesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_rejected_total",
			Help:      "Vote attempts that failed, by error code",
		}, []string{"code"}),
		PollsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_created_total",
			Help:      "Polls created",
		}),
		PollsToggled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_toggled_total",
			Help:      "Poll status flips",
		}),
		PollsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_deleted_total",
			Help:      "Polls deleted",
		}),
		VotesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_deleted_total",
			Help:      "Ledger rows removed by poll deletion",
		}),
		LiveSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_subscribers",
			Help:      "Open live result subscriptions",
		}),
	}

	err := errors.Join(
		reg.Register(m.VotesCast),
		reg.Register(m.VotesRejected),
		reg.Register(m.PollsCreated),
		reg.Register(m.PollsToggled),
		reg.Register(m.PollsDeleted),
		reg.Register(m.VotesDeleted),
		reg.Register(m.LiveSubscribers),
	)
	return m, err
}

// NewNoop returns collectors registered nowhere, for tests and tools.
func NewNoop() *Metrics {
	m, _ := New(prometheus.NewRegistry())
	return m
}

// RejectVote counts a failed vote attempt under its error code.
func (m *Metrics) RejectVote(err error) {
	m.VotesRejected.WithLabelValues(models.Code(err)).Inc()
}
