package metrics

import "github.com/prometheus/client_golang/prometheus"

// Page index Prometheus metrics.
var (
	PagesIndexedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pagerag",
			Name:      "pages_indexed_total",
			Help:      "Total number of pages written to the search index",
		},
	)

	RetrievalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pagerag",
			Name:      "retrievals_total",
			Help:      "Total number of k-NN retrievals by outcome",
		},
		[]string{"status"}, // "hit" / "empty" / "store_error"
	)

	RetrievalDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pagerag",
			Name:      "retrieval_duration_seconds",
			Help:      "k-NN retrieval duration in seconds, embedding included",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)
)

var indexMetricsRegistered bool

// RegisterIndexMetrics registers Prometheus page index metrics. Must be called once from main.
func RegisterIndexMetrics() {
	if indexMetricsRegistered {
		return
	}
	prometheus.MustRegister(PagesIndexedTotal)
	prometheus.MustRegister(RetrievalsTotal)
	prometheus.MustRegister(RetrievalDuration)
	indexMetricsRegistered = true
}
