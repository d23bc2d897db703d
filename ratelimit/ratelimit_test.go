// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/pulsepoll/store"
)

func newAttemptLimiter(t *testing.T, window time.Duration, max int) *AttemptLimiter {
	t.Helper()

	s, err := store.OpenSQL(context.Background(), store.DialectSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return NewAttemptLimiter(s, window, max)
}

func newRedisLimiter(t *testing.T, window time.Duration, max int) *RedisLimiter {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisLimiter(client, window, max)
}

func limiters(t *testing.T, window time.Duration, max int) map[string]Limiter {
	return map[string]Limiter{
		"attempt log": newAttemptLimiter(t, window, max),
		"redis":       newRedisLimiter(t, window, max),
	}
}

func TestAllow_SixteenthAttemptDenied(t *testing.T) {
	for name, l := range limiters(t, 60*time.Second, 15) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

			for i := 1; i <= 15; i++ {
				ok, err := l.Allow(ctx, "poll", "fp", now.Add(time.Duration(i)*time.Second))
				require.NoError(t, err)
				assert.True(t, ok, "attempt %d should be allowed", i)
			}

			ok, err := l.Allow(ctx, "poll", "fp", now.Add(16*time.Second))
			require.NoError(t, err)
			assert.False(t, ok, "16th attempt should be denied")
		})
	}
}

func TestAllow_WindowSlides(t *testing.T) {
	for name, l := range limiters(t, 10*time.Second, 2) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

			allow := func(at time.Time) bool {
				ok, err := l.Allow(ctx, "poll", "fp", at)
				require.NoError(t, err)
				return ok
			}

			assert.True(t, allow(now))
			assert.True(t, allow(now.Add(time.Second)))
			assert.False(t, allow(now.Add(2*time.Second)))

			// denied attempts still count against the budget
			assert.False(t, allow(now.Add(9*time.Second)))
			assert.False(t, allow(now.Add(12*time.Second)))

			// everything before 20s has left the window
			assert.True(t, allow(now.Add(30*time.Second)))
			assert.True(t, allow(now.Add(31*time.Second)))
			assert.False(t, allow(now.Add(32*time.Second)))
		})
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	for name, l := range limiters(t, time.Minute, 1) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now()

			ok, err := l.Allow(ctx, "poll-a", "fp-1", now)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = l.Allow(ctx, "poll-a", "fp-1", now)
			require.NoError(t, err)
			assert.False(t, ok)

			ok, err = l.Allow(ctx, "poll-a", "fp-2", now)
			require.NoError(t, err)
			assert.True(t, ok, "other fingerprint has its own budget")

			ok, err = l.Allow(ctx, "poll-b", "fp-1", now)
			require.NoError(t, err)
			assert.True(t, ok, "other poll has its own budget")
		})
	}
}

func TestRedisLimiter_SetsExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	l := NewRedisLimiter(client, 30*time.Second, 5)
	_, err := l.Allow(context.Background(), "poll", "fp", time.Now())
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, mr.TTL(attemptKey("poll", "fp")))
}

func TestRedisLimiter_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()

	mr.Close()

	l := NewRedisLimiter(client, time.Minute, 5)
	_, err := l.Allow(context.Background(), "poll", "fp", time.Now())
	assert.True(t, errors.Is(err, store.ErrUnavailable))
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	client.Close()

	_, err = Connect(context.Background(), "not a url")
	assert.Error(t, err)
}
