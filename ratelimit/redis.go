// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/pulsepoll/store"
)

// RedisLimiter keeps one sorted set per (poll, fingerprint), scored by
// attempt time in milliseconds. It lets several server instances share
// a window.
type RedisLimiter struct {
	client      *redis.Client
	window      time.Duration
	maxAttempts int
}

func NewRedisLimiter(client *redis.Client, window time.Duration, maxAttempts int) *RedisLimiter {
	return &RedisLimiter{
		client:      client,
		window:      window,
		maxAttempts: maxAttempts,
	}
}

// Connect parses a redis:// URL and checks the server answers
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func attemptKey(pollID, fingerprint string) string {
	return "ratelimit:" + pollID + ":" + fingerprint
}

func (l *RedisLimiter) Allow(ctx context.Context, pollID, fingerprint string, now time.Time) (bool, error) {
	key := attemptKey(pollID, fingerprint)
	nowMs := now.UnixMilli()
	windowStart := now.Add(-l.window).UnixMilli()

	var card *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(nowMs), Member: uuid.NewString()})
		pipe.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(windowStart, 10))
		card = pipe.ZCard(ctx, key)
		pipe.PExpire(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit: %w: %w", store.ErrUnavailable, err)
	}

	return card.Val() <= int64(l.maxAttempts), nil
}
