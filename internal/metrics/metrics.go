// Package metrics provides Prometheus metrics for the application.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ibs-tree/ibstree/internal/version"
)

// Query type label values for the queriesTotal counter.
const (
	QueryTypePoint = "point"
	QueryTypeRange = "range"
)

var (
	// registry is a custom registry to avoid exposing Go runtime metrics.
	registry = prometheus.NewRegistry()

	// versionInfo exposes version information as a gauge.
	versionInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ibstree_version_info",
			Help: "Version information",
		},
		[]string{"version"},
	)

	// intervalsTotal tracks the number of intervals currently held by each
	// named workload's tree.
	intervalsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ibstree_intervals_total",
			Help: "Number of intervals currently stored, by workload",
		},
		[]string{"workload"},
	)

	// maximumDepth tracks the maximum overlap depth of each named
	// workload's tree.
	maximumDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ibstree_maximum_depth",
			Help: "Maximum number of intervals overlapping any single point, by workload",
		},
		[]string{"workload"},
	)

	// queriesTotal tracks the total number of queries served, by workload
	// and query type.
	queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ibstree_queries_total",
			Help: "Total number of queries served, by workload and query type",
		},
		[]string{"workload", "type"},
	)

	// queryDuration tracks query latency, by query type.
	queryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ibstree_query_duration_seconds",
			Help:    "Query latency in seconds, by query type",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)
)

func init() {
	registry.MustRegister(
		versionInfo,
		intervalsTotal,
		maximumDepth,
		queriesTotal,
		queryDuration,
	)
	versionInfo.WithLabelValues(version.Get()).Set(1)
}

// RecordTreeState updates the gauges describing a named workload's tree.
func RecordTreeState(workloadName string, count, depth int) {
	intervalsTotal.WithLabelValues(workloadName).Set(float64(count))
	maximumDepth.WithLabelValues(workloadName).Set(float64(depth))
}

// RecordQuery records one served query and its latency.
func RecordQuery(workloadName, queryType string, seconds float64) {
	queriesTotal.WithLabelValues(workloadName, queryType).Inc()
	queryDuration.WithLabelValues(queryType).Observe(seconds)
}

// Handler returns an HTTP handler for the metrics endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Reset resets all metrics. This is intended for use in tests only.
func Reset() {
	intervalsTotal.Reset()
	maximumDepth.Reset()
	queriesTotal.Reset()
	queryDuration.Reset()
	versionInfo.Reset()
	versionInfo.WithLabelValues(version.Get()).Set(1)
}
