// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"context"
	"time"

	"github.com/danielhkuo/pulsepoll/models"
	"github.com/danielhkuo/pulsepoll/store"
)

// Limiter decides whether a vote attempt from fingerprint on pollID is
// admitted. Every call counts as an attempt, allowed or not.
type Limiter interface {
	Allow(ctx context.Context, pollID, fingerprint string, now time.Time) (bool, error)
}

// AttemptLimiter is a sliding window over the persistent attempt log.
// It needs no infrastructure beyond the vote store.
type AttemptLimiter struct {
	attempts    store.Attempts
	window      time.Duration
	maxAttempts int
}

func NewAttemptLimiter(attempts store.Attempts, window time.Duration, maxAttempts int) *AttemptLimiter {
	return &AttemptLimiter{
		attempts:    attempts,
		window:      window,
		maxAttempts: maxAttempts,
	}
}

// Allow logs the attempt and then counts the attempts in [now-window, now].
// The current attempt is included, so the request that pushes the count
// past maxAttempts is the first one denied.
func (l *AttemptLimiter) Allow(ctx context.Context, pollID, fingerprint string, now time.Time) (bool, error) {
	err := l.attempts.RecordAttempt(ctx, models.VoteAttempt{
		PollID:      pollID,
		IPHash:      fingerprint,
		AttemptedAt: now,
	})
	if err != nil {
		return false, err
	}

	count, err := l.attempts.CountAttempts(ctx, pollID, fingerprint, now.Add(-l.window))
	if err != nil {
		return false, err
	}

	return count <= l.maxAttempts, nil
}
