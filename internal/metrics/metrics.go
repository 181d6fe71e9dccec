// Package metrics exposes pipeline counters in Prometheus format.
// A nil *Metrics is valid; every method is a no-op on a nil receiver.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cortex"

// Event sources.
const (
	SourceIngest   = "ingest"
	SourceSimulate = "simulate"
)

// Delivery outcomes.
const (
	OutcomeDelivered = "delivered"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

type Metrics struct {
	registry      *prometheus.Registry
	testResponses prometheus.Counter
	events        *prometheus.CounterVec
	deliveries    *prometheus.CounterVec
	connections   prometheus.Gauge
}

// New builds a private registry holding the pipeline collectors plus the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		testResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "test_responses_total",
			Help:      "Test responses persisted.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "neurofeedback_events_total",
			Help:      "Neurofeedback events persisted, by source.",
		}, []string{"source"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcast_deliveries_total",
			Help:      "Per-connection broadcast attempts, by outcome.",
		}, []string{"outcome"}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_connections",
			Help:      "Registered live connections.",
		}),
	}
	m.registry.MustRegister(
		m.testResponses,
		m.events,
		m.deliveries,
		m.connections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) TestResponseStored() {
	if m == nil {
		return
	}
	m.testResponses.Inc()
}

func (m *Metrics) EventStored(source string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(source).Inc()
}

func (m *Metrics) Deliveries(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.deliveries.WithLabelValues(outcome).Add(float64(n))
}

func (m *Metrics) SetConnections(n int) {
	if m == nil {
		return
	}
	m.connections.Set(float64(n))
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
