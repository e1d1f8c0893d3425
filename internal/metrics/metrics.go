// Package metrics holds the server's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lighthouse"

// Outcome labels shared by the counters
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	matchMessages   *prometheus.CounterVec
	authAttempts    *prometheus.CounterVec
	resourceUploads *prometheus.CounterVec
}

// New creates the collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		matchMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_messages_total",
			Help:      "Match messages handled, by message type and outcome.",
		}, []string{"type", "outcome"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Login attempts, by client flavor and outcome.",
		}, []string{"flavor", "outcome"}),
		resourceUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resource_uploads_total",
			Help:      "Resource uploads, by sniffed file kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
	m.registry.MustRegister(m.matchMessages, m.authAttempts, m.resourceUploads)
	return m
}

// TrackRooms exposes the number of registered rooms as a gauge read on scrape
func (m *Metrics) TrackRooms(count func() int) {
	if m == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rooms_registered",
		Help:      "Rooms currently registered in the room directory.",
	}, func() float64 { return float64(count()) }))
}

// MatchMessage counts a handled match message
func (m *Metrics) MatchMessage(kind, outcome string) {
	if m == nil {
		return
	}
	m.matchMessages.WithLabelValues(kind, outcome).Inc()
}

// AuthAttempt counts a game or web login attempt
func (m *Metrics) AuthAttempt(flavor, outcome string) {
	if m == nil {
		return
	}
	m.authAttempts.WithLabelValues(flavor, outcome).Inc()
}

// ResourceUpload counts an upload attempt
func (m *Metrics) ResourceUpload(kind, outcome string) {
	if m == nil {
		return
	}
	m.resourceUploads.WithLabelValues(kind, outcome).Inc()
}

// Registry returns the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
