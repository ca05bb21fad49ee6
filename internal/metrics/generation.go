package metrics

import "github.com/prometheus/client_golang/prometheus"

// Generation (language model server) Prometheus metrics.
var (
	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pagerag",
			Name:      "generation_requests_total",
			Help:      "Total number of generation requests by endpoint and outcome",
		},
		[]string{"model", "endpoint", "status"},
	)

	GenerationRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pagerag",
			Name:      "generation_request_duration_seconds",
			Help:      "Generation request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"model", "endpoint"},
	)

	GenerationFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pagerag",
			Name:      "generation_fallbacks_total",
			Help:      "Chat attempts that fell through to the completion endpoint",
		},
		[]string{"model", "reason"}, // "not_found" / "bad_body"
	)
)

var genMetricsRegistered bool

// RegisterGenerationMetrics registers Prometheus generation metrics. Must be called once from main.
func RegisterGenerationMetrics() {
	if genMetricsRegistered {
		return
	}
	prometheus.MustRegister(GenerationRequestsTotal)
	prometheus.MustRegister(GenerationRequestDuration)
	prometheus.MustRegister(GenerationFallbacksTotal)
	genMetricsRegistered = true
}
