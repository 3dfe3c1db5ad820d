// Package metrics counts certification outcomes on a private Prometheus
// registry. A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage labels for StageLatency
const (
	StageLoad     = "load"
	StageClassify = "classify"
	StageClaims   = "claims"
	StageExtract  = "extract"
	StageDecide   = "decide"
	StageTotal    = "total"
)

// Metrics holds the pipeline collectors
type Metrics struct {
	registry *prometheus.Registry

	// Documents by family and outcome (ready, review, failed)
	Documents *prometheus.CounterVec

	// Decision reasons as reported in Decision.Reason
	Reasons *prometheus.CounterVec

	// Claim-based family overrides
	Overrides prometheus.Counter

	// Cache lookups by result (hit, miss)
	CacheLookups *prometheus.CounterVec

	// Per-stage latency
	StageLatency *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Documents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "certifi_documents_total",
			Help: "Documents processed by family and outcome",
		}, []string{"family", "outcome"}),

		Reasons: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "certifi_decision_reasons_total",
			Help: "Decisions by reason token",
		}, []string{"reason"}),

		Overrides: factory.NewCounter(prometheus.CounterOpts{
			Name: "certifi_claim_overrides_total",
			Help: "Family classifications replaced by the claim-based override",
		}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "certifi_cache_lookups_total",
			Help: "Result cache lookups by result",
		}, []string{"result"}),

		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "certifi_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10},
		}, []string{"stage"}),
	}
}

// Registry exposes the private registry for gathering
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveDocument records the final outcome of one document
func (m *Metrics) ObserveDocument(family, outcome, reason string) {
	if m == nil {
		return
	}
	m.Documents.WithLabelValues(family, outcome).Inc()
	if reason != "" {
		m.Reasons.WithLabelValues(reason).Inc()
	}
}

// IncOverride records a claim-based override
func (m *Metrics) IncOverride() {
	if m != nil {
		m.Overrides.Inc()
	}
}

// ObserveCache records a cache hit or miss
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// ObserveStage records how long a stage took
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// Since is ObserveStage(stage, time.Since(start)), shaped for defer
func (m *Metrics) Since(stage string, start time.Time) {
	m.ObserveStage(stage, time.Since(start))
}

// WriteTextfile writes the registry in the node_exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
