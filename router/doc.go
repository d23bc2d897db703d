// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the PulsePoll API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(router.Services{
		Store:    st,
		Pipeline: pipeline,
		Notifier: notifier,
		Metrics:  m,
		Gatherer: prometheus.DefaultGatherer,
	}, cfg)

# Endpoints

Service:

	GET /        - Status and storage backend
	GET /health  - Pings the store (200 OK or 503)
	GET /metrics - Prometheus metrics

Polls:

	POST /polls      - Create poll
	GET  /polls/{id} - Poll snapshot

Voting (anonymous, voter_id cookie):

	POST /polls/{id}/vote - Cast a vote

Live updates:

	GET /polls/{id}/events - Server-Sent Events
	GET /polls/{id}/ws     - WebSocket

Each stream emits an RFC 3339 timestamp whenever the poll changes.
Clients re-fetch GET /polls/{id} on every marker.

CORS is applied around the whole mux by the caller.
*/
package router
