// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// Supported database types
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabaseMongo    = "mongo"
)

const (
	defaultPort          = 3318
	defaultDatabaseName  = "pulsepoll"
	defaultWindowSeconds = 60
	defaultMaxAttempts   = 15
	defaultCORSOrigins   = "http://localhost:3000,http://127.0.0.1:3000"
	defaultKafkaTopic    = "poll-votes"
	defaultLogLevel      = "info"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	DatabaseName string
	IPHashSalt   string

	RateLimitWindow      time.Duration
	RateLimitMaxAttempts int

	CORSOrigins []string

	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string

	LogLevel string
}

// ParseFlags validates flags and fills the rest from the environment.
// Precedence: CLI flag, then environment (including a .env file), then default.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var windowSeconds, maxAttempts int
	var corsOrigins, kafkaBrokers string

	fs := flag.NewFlagSet("pulsepoll", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite, postgres or mongo)")
	fs.StringVar(&cfg.DatabaseName, "db-name", "", "Database name (mongo only)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.IPHashSalt, "ip-salt", "", "IP fingerprint salt (prefer env)")

	// Abuse guard
	fs.IntVar(&windowSeconds, "rate-window", 0, "Rate limit window in seconds")
	fs.IntVar(&maxAttempts, "rate-max", 0, "Max vote attempts per window")

	fs.StringVar(&corsOrigins, "cors", "", "Comma separated list of allowed origins")
	fs.StringVar(&cfg.RedisURL, "redis", "", "Redis URL for the rate limiter (optional)")
	fs.StringVar(&kafkaBrokers, "kafka", "", "Comma separated Kafka brokers for vote events (optional)")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", "", "Kafka topic for vote events")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// A missing .env file is fine; real environment variables always win.
	_ = godotenv.Load()

	if cfg.Port == 0 {
		port, err := envInt("PORT", defaultPort)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envString("DATABASE_TYPE", DatabaseSQLite)
	}
	switch cfg.DatabaseType {
	case DatabaseSQLite, DatabasePostgres, DatabaseMongo:
	default:
		return Config{}, fmt.Errorf("unknown database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseName == "" {
		cfg.DatabaseName = envString("DATABASE_NAME", defaultDatabaseName)
	}

	// Secrets - MUST be provided
	if cfg.IPHashSalt == "" {
		cfg.IPHashSalt = os.Getenv("IP_HASH_SALT")
	}
	if cfg.IPHashSalt == "" {
		return Config{}, errors.New("IP_HASH_SALT required")
	}

	if windowSeconds == 0 {
		v, err := envInt("RATE_LIMIT_WINDOW_SECONDS", defaultWindowSeconds)
		if err != nil {
			return Config{}, err
		}
		windowSeconds = v
	}
	if windowSeconds <= 0 {
		return Config{}, errors.New("rate limit window must be positive")
	}
	cfg.RateLimitWindow = time.Duration(windowSeconds) * time.Second

	if maxAttempts == 0 {
		v, err := envInt("RATE_LIMIT_MAX_ATTEMPTS", defaultMaxAttempts)
		if err != nil {
			return Config{}, err
		}
		maxAttempts = v
	}
	if maxAttempts <= 0 {
		return Config{}, errors.New("rate limit max attempts must be positive")
	}
	cfg.RateLimitMaxAttempts = maxAttempts

	if corsOrigins == "" {
		corsOrigins = envString("CORS_ORIGINS", defaultCORSOrigins)
	}
	cfg.CORSOrigins = SplitList(corsOrigins)

	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}

	if kafkaBrokers == "" {
		kafkaBrokers = os.Getenv("KAFKA_BROKERS")
	}
	cfg.KafkaBrokers = SplitList(kafkaBrokers)
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = envString("KAFKA_TOPIC", defaultKafkaTopic)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = envString("LOG_LEVEL", defaultLogLevel)
	}

	return cfg, nil
}

// SplitList splits a comma separated value, dropping blank entries
func SplitList(s string) []string {
	return lo.FilterMap(strings.Split(s, ","), func(item string, _ int) (string, bool) {
		item = strings.TrimSpace(item)
		return item, item != ""
	})
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}
