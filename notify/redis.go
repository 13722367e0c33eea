// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the redis pub/sub channel carrying poll IDs.
const DefaultChannel = "pollvote:tally"

// RedisBridge publishes change signals through redis so that live
// subscribers on every instance hear about votes cast on any instance.
// Run relays the channel into the local Broker, including this
// instance's own messages.
type RedisBridge struct {
	client  *redis.Client
	channel string
	local   *Broker
}

// NewRedisBridge parses a redis:// URL and verifies the connection.
func NewRedisBridge(ctx context.Context, url string, local *Broker) (*RedisBridge, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisBridge{client: client, channel: DefaultChannel, local: local}, nil
}

// Publish sends pollID to every instance. When redis is unreachable the
// local subscribers are still signalled.
func (r *RedisBridge) Publish(ctx context.Context, pollID string) error {
	if err := r.client.Publish(ctx, r.channel, pollID).Err(); err != nil {
		r.local.Publish(ctx, pollID)
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}

// Run relays redis messages to the local broker until ctx ends.
func (r *RedisBridge) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	// Wait for the subscription confirmation before relaying
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to redis: %w", err)
	}
	slog.Info("redis bridge subscribed", "channel", r.channel)

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			r.relay(ctx, msg)
		}
	}
}

func (r *RedisBridge) relay(ctx context.Context, msg *redis.Message) {
	if msg == nil || msg.Payload == "" {
		return
	}
	r.local.Publish(ctx, msg.Payload)
}

func (r *RedisBridge) Close() error {
	return r.client.Close()
}
