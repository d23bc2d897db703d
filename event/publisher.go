// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package event

import (
	"context"

	"github.com/danielhkuo/pulsepoll/models"
)

// VotePublisher exports admitted votes to downstream consumers.
// Publishing happens after the vote is committed and never changes its outcome.
type VotePublisher interface {
	Publish(ctx context.Context, ev models.VoteEvent) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.VoteEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
