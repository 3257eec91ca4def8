// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package lifecycle

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects lifecycle counters on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	turns       *prometheus.CounterVec
	failures    *prometheus.CounterVec
	remoteCalls *prometheus.CounterVec
	delay       *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers the lifecycle collectors.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lifecycle_turns_total",
				Help:      "Lifecycle turns by resource type, operation and outcome",
			},
			[]string{"resource_type", "operation", "outcome"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lifecycle_failures_total",
				Help:      "Failed turns by resource type, operation and error kind",
			},
			[]string{"resource_type", "operation", "kind"},
		),
		remoteCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lifecycle_remote_calls_total",
				Help:      "Remote API calls issued by the lifecycle engine",
			},
			[]string{"resource_type", "call"},
		),
		delay: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "lifecycle_requested_delay_seconds",
				Help:      "Re-invocation delay requested on in-progress turns",
				Buckets:   []float64{1, 5, 10, 15, 30, 60, 120},
			},
			[]string{"resource_type", "operation"},
		),
	}

	registry.MustRegister(m.turns, m.failures, m.remoteCalls, m.delay)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) recordCall(resourceType, call string) {
	if m == nil {
		return
	}
	m.remoteCalls.WithLabelValues(resourceType, call).Inc()
}

func (m *Metrics) recordOutcome(resourceType, operation string, out Outcome) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(resourceType, operation, string(out.Status)).Inc()
	switch out.Status {
	case OutcomeFailed:
		m.failures.WithLabelValues(resourceType, operation, string(out.Kind)).Inc()
	case OutcomeInProgress:
		m.delay.WithLabelValues(resourceType, operation).Observe(float64(out.DelaySeconds))
	}
}
