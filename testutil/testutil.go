// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/pulsepoll/admission"
	"github.com/danielhkuo/pulsepoll/cliparse"
	"github.com/danielhkuo/pulsepoll/event"
	"github.com/danielhkuo/pulsepoll/metrics"
	"github.com/danielhkuo/pulsepoll/models"
	"github.com/danielhkuo/pulsepoll/notify"
	"github.com/danielhkuo/pulsepoll/ratelimit"
	"github.com/danielhkuo/pulsepoll/store"
)

// TestDBURL opens a private in-memory SQLite database
const TestDBURL = ":memory:"

// Env is a fully wired vote stack on an in-memory database
type Env struct {
	Config   cliparse.Config
	Store    *store.SQLStore
	Notifier *notify.Notifier
	Registry *prometheus.Registry
	Metrics  *metrics.Admission
	Pipeline *admission.Pipeline
}

// SetupTestStore creates a fresh in-memory store with the full schema
func SetupTestStore(t *testing.T) *store.SQLStore {
	t.Helper()

	st, err := store.OpenSQL(context.Background(), store.DialectSQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return st
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                 3318,
		DatabaseURL:          TestDBURL,
		DatabaseType:         cliparse.DatabaseSQLite,
		DatabaseName:         "pulsepoll",
		IPHashSalt:           "test-ip-salt",
		RateLimitWindow:      60 * time.Second,
		RateLimitMaxAttempts: 15,
		CORSOrigins:          []string{"http://localhost:3000"},
		KafkaTopic:           "poll-votes",
		LogLevel:             "info",
	}
}

// NewEnv wires a store, attempt-log limiter, notifier, metrics and
// pipeline using cfg
func NewEnv(t *testing.T, cfg cliparse.Config) *Env {
	t.Helper()

	st := SetupTestStore(t)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	notifier := notify.New()
	limiter := ratelimit.NewAttemptLimiter(st, cfg.RateLimitWindow, cfg.RateLimitMaxAttempts)

	return &Env{
		Config:   cfg,
		Store:    st,
		Notifier: notifier,
		Registry: reg,
		Metrics:  m,
		Pipeline: admission.New(st, limiter, notifier, event.NopPublisher{}, m, cfg.IPHashSalt),
	}
}

// CreateTestPoll creates a poll with the given options
func CreateTestPoll(t *testing.T, st store.Polls, question string, options ...string) models.Poll {
	t.Helper()

	poll, err := st.CreatePoll(context.Background(), question, options)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return poll
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks the response status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into v
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response: %v. Body: %s", err, w.Body.String())
	}
}

// VoterCookie returns the voter_id cookie set on the response, or nil
func VoterCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "voter_id" {
			return c
		}
	}
	return nil
}
