package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	documentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "docstore",
		Name:      "documents_created_total",
		Help:      "Total documents persisted to the relational store",
	})

	documentsIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "docstore",
		Name:      "documents_indexed_total",
		Help:      "Total documents written to the search index",
	})

	indexFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "docstore",
		Name:      "index_failures_total",
		Help:      "Total search index writes that failed",
	})

	searchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "docstore",
		Name:      "searches_total",
		Help:      "Total search requests served",
	})

	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "docstore",
		Name:      "search_duration_seconds",
		Help:      "Search latency including index query and hydration",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})
)

// IncDocumentsCreated increments the created counter.
func IncDocumentsCreated(n int) {
	documentsCreated.Add(float64(n))
}

// IncDocumentsIndexed increments the indexed counter.
func IncDocumentsIndexed(n int) {
	documentsIndexed.Add(float64(n))
}

// IncIndexFailures increments the index failure counter.
func IncIndexFailures(n int) {
	indexFailures.Add(float64(n))
}

// IncSearches increments the search counter.
func IncSearches() {
	searchesTotal.Inc()
}

// ObserveSearchDuration records one search latency sample in seconds.
func ObserveSearchDuration(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	searchDuration.Observe(seconds)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
