package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/pulsepoll/admission"
	"github.com/danielhkuo/pulsepoll/cliparse"
	"github.com/danielhkuo/pulsepoll/event"
	"github.com/danielhkuo/pulsepoll/metrics"
	"github.com/danielhkuo/pulsepoll/middleware"
	"github.com/danielhkuo/pulsepoll/notify"
	"github.com/danielhkuo/pulsepoll/ratelimit"
	"github.com/danielhkuo/pulsepoll/router"
	"github.com/danielhkuo/pulsepoll/store"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to storage; refuse to start without it
	st, err := store.Open(ctx, cfg)
	if err != nil {
		slog.Error("storage unavailable", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer st.Close()
	slog.Info("Storage ready", "type", cfg.DatabaseType)

	// Rate limiter: Redis when configured, otherwise the attempt log
	var limiter ratelimit.Limiter = ratelimit.NewAttemptLimiter(st, cfg.RateLimitWindow, cfg.RateLimitMaxAttempts)
	if cfg.RedisURL != "" {
		client, err := ratelimit.Connect(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		limiter = ratelimit.NewRedisLimiter(client, cfg.RateLimitWindow, cfg.RateLimitMaxAttempts)
		slog.Info("Using Redis rate limiter")
	}

	// Vote events
	var publisher event.VotePublisher = event.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = event.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		slog.Info("Publishing vote events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	defer publisher.Close()

	m := metrics.New(prometheus.DefaultRegisterer)
	notifier := notify.New()
	pipeline := admission.New(st, limiter, notifier, publisher, m, cfg.IPHashSalt)

	mux := router.NewRouter(router.Services{
		Store:    st,
		Pipeline: pipeline,
		Notifier: notifier,
		Metrics:  m,
		Gatherer: prometheus.DefaultGatherer,
	}, cfg)

	server := http.Server{
		Handler:           middleware.CORS(cfg.CORSOrigins)(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts derive from ctx so open event streams end on shutdown
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
		return
	}

	<-shutdownDone
	slog.Info("Server closed")
}

func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		slog.Warn("unknown log level, using info", "level", level)
		lvl = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
