// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pulsepoll"

// Vote outcomes, used as the "outcome" label
const (
	OutcomeAccepted      = "accepted"
	OutcomeDuplicate     = "duplicate"
	OutcomeRateLimited   = "rate_limited"
	OutcomeInvalidOption = "invalid_option"
	OutcomeNotFound      = "not_found"
	OutcomeInvalid       = "invalid"
	OutcomeError         = "error"
)

// Admission holds the vote admission and live stream metrics
type Admission struct {
	Votes         *prometheus.CounterVec
	AdmissionTime prometheus.Histogram
	EventStreams  prometheus.Gauge
}

// New registers the metrics with reg. Pass prometheus.NewRegistry() in
// tests so repeated construction does not collide.
func New(reg prometheus.Registerer) *Admission {
	factory := promauto.With(reg)

	return &Admission{
		Votes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "votes_total",
				Help:      "Vote requests by admission outcome",
			},
			[]string{"outcome"},
		),
		AdmissionTime: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "vote_admission_seconds",
				Help:      "Time spent admitting a vote, including rejected ones",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
			},
		),
		EventStreams: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "event_streams",
				Help:      "Open live update streams (SSE and WebSocket)",
			},
		),
	}
}

// ObserveVote records one admission attempt
func (m *Admission) ObserveVote(outcome string, took time.Duration) {
	m.Votes.WithLabelValues(outcome).Inc()
	m.AdmissionTime.Observe(took.Seconds())
}

// StreamOpened increments the open stream gauge and returns the matching
// decrement.
func (m *Admission) StreamOpened() (closed func()) {
	m.EventStreams.Inc()
	return m.EventStreams.Dec
}
