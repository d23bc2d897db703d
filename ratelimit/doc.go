// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ratelimit bounds vote attempts per poll and IP fingerprint over a
sliding window.

Two implementations share the Limiter interface:

  - AttemptLimiter: counts rows in the store's attempt log (default)
  - RedisLimiter: a sorted set per key, for multi-instance deployments

Both record the attempt before counting, so rejected and duplicate
attempts still consume the budget. With a window of 60s and a limit of 15,
the 16th attempt inside one minute is denied.
*/
package ratelimit
