// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package notify carries "poll changed" signals from writers to live
// result subscribers, in process (Broker) or across instances
// (RedisBridge).
package notify
