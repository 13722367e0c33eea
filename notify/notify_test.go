// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestBrokerDeliversToPollSubscribers(t *testing.T) {
	b := NewBroker()
	ctx := context.Background()

	a, cancelA := b.Subscribe("poll-a")
	defer cancelA()
	other, cancelOther := b.Subscribe("poll-b")
	defer cancelOther()

	b.Publish(ctx, "poll-a")

	select {
	case <-a:
	case <-time.After(time.Second):
		t.Fatal("expected signal for poll-a subscriber")
	}

	select {
	case <-other:
		t.Error("poll-b subscriber should not be signalled")
	default:
	}
}

func TestBrokerCoalescesSignals(t *testing.T) {
	b := NewBroker()
	ctx := context.Background()

	ch, cancel := b.Subscribe("poll")
	defer cancel()

	// Publish must never block, even with nobody reading
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(ctx, "poll")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	<-ch
	select {
	case <-ch:
		t.Error("expected burst to coalesce into one pending signal")
	default:
	}
}

func TestBrokerCancel(t *testing.T) {
	b := NewBroker()

	_, cancel1 := b.Subscribe("poll")
	_, cancel2 := b.Subscribe("poll")
	if n := b.Subscribers("poll"); n != 2 {
		t.Fatalf("expected 2 subscribers, got %d", n)
	}

	cancel1()
	cancel1() // idempotent
	if n := b.Subscribers("poll"); n != 1 {
		t.Errorf("expected 1 subscriber, got %d", n)
	}

	cancel2()
	if n := b.Subscribers("poll"); n != 0 {
		t.Errorf("expected 0 subscribers, got %d", n)
	}
}

func TestRedisBridgeRelay(t *testing.T) {
	local := NewBroker()
	bridge := &RedisBridge{channel: DefaultChannel, local: local}

	ch, cancel := local.Subscribe("poll-1")
	defer cancel()

	bridge.relay(context.Background(), nil)
	bridge.relay(context.Background(), &redis.Message{Channel: DefaultChannel, Payload: ""})
	select {
	case <-ch:
		t.Fatal("empty messages should be ignored")
	default:
	}

	bridge.relay(context.Background(), &redis.Message{Channel: DefaultChannel, Payload: "poll-1"})
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected relayed signal")
	}
}

func TestNewRedisBridgeInvalidURL(t *testing.T) {
	if _, err := NewRedisBridge(context.Background(), "not a url", NewBroker()); err == nil {
		t.Error("expected error for invalid redis url")
	}
}
