// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package metrics defines the Prometheus metrics exposed on GET /metrics.

  - pulsepoll_votes_total{outcome}: vote requests by admission outcome
  - pulsepoll_vote_admission_seconds: admission latency
  - pulsepoll_event_streams: open SSE and WebSocket streams
*/
package metrics
