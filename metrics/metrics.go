// SPDX-License-Identifier: MIT

// Package metrics exposes ensemble progress as Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/katalvlaran/redistrict/chain"
)

// Metrics groups the ensemble collectors.
type Metrics struct {
	Steps          *prometheus.CounterVec
	SpanningTrees  prometheus.Counter
	RunsStarted    prometheus.Counter
	RunsCompleted  prometheus.Counter
	RunFailures    *prometheus.CounterVec
	RunDurationSec prometheus.Histogram
	CutEdges       prometheus.Histogram
}

// New creates the collectors and registers them with reg. A nil reg skips
// registration, which keeps tests independent of the default registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recom_steps_total",
			Help: "Chain transitions by outcome",
		}, []string{"kind"}),
		SpanningTrees: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recom_spanning_trees_total",
			Help: "Spanning trees drawn by proposals",
		}),
		RunsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recom_runs_started_total",
			Help: "Chain runs started",
		}),
		RunsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recom_runs_completed_total",
			Help: "Chain runs finished and persisted",
		}),
		RunFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recom_run_failures_total",
			Help: "Chain runs aborted by a fatal error, by stage",
		}, []string{"stage"}),
		RunDurationSec: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recom_run_duration_seconds",
			Help:    "Wall time of one chain run",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		CutEdges: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recom_cut_edges",
			Help:    "Cut-edge count of emitted partitions",
			Buckets: prometheus.ExponentialBuckets(1, 2, 16),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Steps, m.SpanningTrees, m.RunsStarted, m.RunsCompleted,
			m.RunFailures, m.RunDurationSec, m.CutEdges)
	}

	return m
}

// ObserveStep records one emitted transition.
func (m *Metrics) ObserveStep(s chain.Step) {
	m.Steps.WithLabelValues(s.Kind.String()).Inc()
	m.CutEdges.Observe(float64(s.Partition.CutEdgeCount()))
}

// Handler serves the collectors gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
