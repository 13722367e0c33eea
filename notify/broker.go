// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"sync"
)

// Publisher announces that a poll's tally or status changed.
type Publisher interface {
	Publish(ctx context.Context, pollID string) error
}

// Broker fans change signals out to in-process subscribers. Signals are
// coalesced: each subscriber channel holds at most one pending signal,
// and Publish never blocks on a slow subscriber.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[chan struct{}]struct{})}
}

// Subscribe registers interest in pollID. The returned cancel func must
// be called to release the subscription; it is safe to call twice.
func (b *Broker) Subscribe(pollID string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	set, ok := b.subs[pollID]
	if !ok {
		set = make(map[chan struct{}]struct{})
		b.subs[pollID] = set
	}
	set[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[pollID], ch)
			if len(b.subs[pollID]) == 0 {
				delete(b.subs, pollID)
			}
		})
	}
	return ch, cancel
}

// Publish signals every subscriber of pollID.
func (b *Broker) Publish(_ context.Context, pollID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs[pollID] {
		select {
		case ch <- struct{}{}:
		default:
			// A signal is already pending; the subscriber will read fresh state
		}
	}
	return nil
}

// Subscribers returns the number of live subscriptions for pollID.
func (b *Broker) Subscribers(pollID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[pollID])
}
