// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type (sqlite, postgres, mongo)
	-db-name      Database name (mongo only)
	-ip-salt      IP fingerprint salt
	-rate-window  Rate limit window in seconds
	-rate-max     Max vote attempts per window
	-cors         Allowed origins, comma separated
	-redis        Redis URL for the rate limiter
	-kafka        Kafka brokers for vote events, comma separated
	-kafka-topic  Kafka topic
	-log-level    debug, info, warn or error

# Environment Variables

Flags fall back to environment variables:

	PORT                       → -p          (default 3318)
	DATABASE_URL               → -d          (required)
	DATABASE_TYPE              → -t          (default sqlite)
	DATABASE_NAME              → -db-name    (default pulsepoll)
	IP_HASH_SALT               → -ip-salt    (required)
	RATE_LIMIT_WINDOW_SECONDS  → -rate-window (default 60)
	RATE_LIMIT_MAX_ATTEMPTS    → -rate-max   (default 15)
	CORS_ORIGINS               → -cors
	REDIS_URL                  → -redis
	KAFKA_BROKERS              → -kafka
	KAFKA_TOPIC                → -kafka-topic (default poll-votes)
	LOG_LEVEL                  → -log-level  (default info)

A .env file in the working directory is loaded first; variables already set
in the environment are never overwritten by it. CLI flags take precedence
over both.
*/
package cliparse
