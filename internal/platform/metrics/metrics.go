// Package metrics registers the Prometheus instruments for the identity core.
// All methods are nil-safe so services can run without metrics in tests.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the identity core.
type Metrics struct {
	XPGrants        *prometheus.CounterVec
	XPRejections    *prometheus.CounterVec
	StreakTicks     *prometheus.CounterVec
	DNARefresh      prometheus.Histogram
	Handshakes      *prometheus.CounterVec
	SignalsOut      *prometheus.CounterVec
	SignalFailures  prometheus.Counter
	CoordinatorRuns *prometheus.CounterVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		XPGrants: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "helix_xp_grants_total",
			Help: "Total number of successful XP grants by source.",
		}, []string{"source"}),
		XPRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "helix_xp_rejections_total",
			Help: "Total number of rejected XP mutations by reason.",
		}, []string{"reason"}),
		StreakTicks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "helix_streak_ticks_total",
			Help: "Total number of streak ticks by action.",
		}, []string{"action"}),
		DNARefresh: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "helix_dna_refresh_seconds",
			Help:    "Duration of DNA profile refreshes.",
			Buckets: prometheus.DefBuckets,
		}),
		Handshakes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "helix_gateway_handshakes_total",
			Help: "Total number of gateway handshakes by outcome.",
		}, []string{"outcome"}),
		SignalsOut: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "helix_signals_published_total",
			Help: "Total number of outbound signals published by type.",
		}, []string{"type"}),
		SignalFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "helix_signal_publish_failures_total",
			Help: "Total number of outbound signal publish failures.",
		}),
		CoordinatorRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "helix_coordinator_sequences_total",
			Help: "Total number of coordinator sequences by outcome.",
		}, []string{"event", "outcome"}),
	}
}

func (m *Metrics) IncGrant(source string) {
	if m == nil {
		return
	}
	m.XPGrants.WithLabelValues(source).Inc()
}

func (m *Metrics) IncRejection(reason string) {
	if m == nil {
		return
	}
	m.XPRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncTick(action string) {
	if m == nil {
		return
	}
	m.StreakTicks.WithLabelValues(action).Inc()
}

func (m *Metrics) ObserveRefresh(seconds float64) {
	if m == nil {
		return
	}
	m.DNARefresh.Observe(seconds)
}

func (m *Metrics) IncHandshake(outcome string) {
	if m == nil {
		return
	}
	m.Handshakes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncSignal(signalType string) {
	if m == nil {
		return
	}
	m.SignalsOut.WithLabelValues(signalType).Inc()
}

func (m *Metrics) IncSignalFailure() {
	if m == nil {
		return
	}
	m.SignalFailures.Inc()
}

func (m *Metrics) IncSequence(event, outcome string) {
	if m == nil {
		return
	}
	m.CoordinatorRuns.WithLabelValues(event, outcome).Inc()
}
