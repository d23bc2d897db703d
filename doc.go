// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the PulsePoll API server.

PulsePoll is an anonymous live poll service: create a poll, share its link,
collect one vote per browser and watch the results update in real time.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=pulsepoll.db IP_HASH_SALT=secret go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -ip-salt secret

A .env file in the working directory is loaded if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path, PostgreSQL URL or MongoDB URI
  - IP_HASH_SALT (-ip-salt): Secret mixed into IP fingerprints

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite, postgres or mongo (default: sqlite)
  - DATABASE_NAME (-db-name): MongoDB database (default: pulsepoll)
  - RATE_LIMIT_WINDOW_SECONDS (-rate-window): default 60
  - RATE_LIMIT_MAX_ATTEMPTS (-rate-max): default 15
  - CORS_ORIGINS (-cors): comma-separated allowed origins
  - REDIS_URL (-redis): share the rate limit window through Redis
  - KAFKA_BROKERS (-kafka), KAFKA_TOPIC (-kafka-topic): export vote events
  - LOG_LEVEL (-log-level): debug, info, warn or error

# Architecture

  - admission: the vote pipeline (validation, rate limit, ledger, counters)
  - store: polls, the vote ledger and the attempt log (SQL or MongoDB)
  - ratelimit: sliding-window attempt limiting
  - notify: per-poll change signals for live streams
  - event: Kafka export of admitted votes
  - metrics: Prometheus metrics
  - handlers, router, middleware: the HTTP surface
  - models, auth, db, cliparse: shared types, IDs, schema and configuration

See package documentation for each component.
*/
package main
