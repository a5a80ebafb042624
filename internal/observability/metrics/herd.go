// Package metrics provides custom Prometheus metrics for the herdwatch engine.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// HerdMetrics contains all Prometheus metrics related to ingestion and
// indicator computation.
type HerdMetrics struct {
	RowsIngested   prometheus.Counter
	RowsSkipped    prometheus.Counter
	BatchesTotal   prometheus.Counter
	CohortSize     *prometheus.GaugeVec
	RosterSize     prometheus.Gauge
	ComputeRuns    prometheus.Counter
	ComputeSeconds prometheus.Histogram
	Unavailable    *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewHerdMetrics creates a new instance of HerdMetrics registered on the
// given Prometheus registry. Returns an error if registration fails.
func NewHerdMetrics(registry *prometheus.Registry) (*HerdMetrics, error) {
	m := &HerdMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register herd metrics: %w", err)
	}
	return m, nil
}

// initMetrics initializes all metrics for HerdMetrics.
func (m *HerdMetrics) initMetrics() {
	m.RowsIngested = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "herdwatch_test_rows_ingested_total",
		Help: "Total number of herd-test rows accepted into the batch log.",
	})
	m.RowsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "herdwatch_test_rows_skipped_total",
		Help: "Total number of herd-test rows dropped for unparseable sample dates.",
	})
	m.BatchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "herdwatch_batches_ingested_total",
		Help: "Total number of ingested test row batches.",
	})
	m.CohortSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "herdwatch_cohort_animals",
		Help: "Deduplicated animal count per monthly cohort.",
	}, []string{"month"})
	m.RosterSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "herdwatch_roster_animals",
		Help: "Animal count of the currently loaded herd-master roster.",
	})
	m.ComputeRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "herdwatch_compute_runs_total",
		Help: "Total number of full indicator computation passes.",
	})
	m.ComputeSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "herdwatch_compute_duration_seconds",
		Help:    "Time taken for one full indicator computation pass.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 10), // 1ms to ~1s
	})
	m.Unavailable = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "herdwatch_indicator_unavailable_total",
		Help: "Indicator results without a value, partitioned by diagnosis code.",
	}, []string{"diagnosis"})
}

// Describe implements the prometheus.Collector interface.
func (m *HerdMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.RowsIngested.Describe(ch)
	m.RowsSkipped.Describe(ch)
	m.BatchesTotal.Describe(ch)
	m.CohortSize.Describe(ch)
	m.RosterSize.Describe(ch)
	m.ComputeRuns.Describe(ch)
	m.ComputeSeconds.Describe(ch)
	m.Unavailable.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *HerdMetrics) Collect(ch chan<- prometheus.Metric) {
	m.RowsIngested.Collect(ch)
	m.RowsSkipped.Collect(ch)
	m.BatchesTotal.Collect(ch)
	m.CohortSize.Collect(ch)
	m.RosterSize.Collect(ch)
	m.ComputeRuns.Collect(ch)
	m.ComputeSeconds.Collect(ch)
	m.Unavailable.Collect(ch)
}
