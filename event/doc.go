// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package event exports admitted votes as models.VoteEvent messages, to
// Kafka when brokers are configured and nowhere otherwise.
package event
