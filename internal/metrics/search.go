package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search controller Prometheus metrics.
var (
	SearchAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "search_attempts_total",
			Help:      "Total number of backend search attempts",
		},
		[]string{"query_type", "outcome"}, // outcome: ok / timeout / error
	)

	SearchAttemptDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docsearch",
			Name:      "search_attempt_duration_seconds",
			Help:      "Backend search attempt duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"query_type"},
	)

	SearchRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "search_retries_total",
			Help:      "Total number of search attempts retried after a backend timeout",
		},
		[]string{"query_type"},
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "search_requests_total",
			Help:      "Total number of logical search requests by terminal state",
		},
		[]string{"query_type", "terminal"},
	)

	SearchResultCount = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docsearch",
			Name:      "search_result_count",
			Help:      "Number of documents returned by the backend per logical request",
			Buckets:   []float64{0, 1, 5, 10, 20, 40, 100},
		},
		[]string{"query_type"},
	)
)

var registerSearchOnce sync.Once

// RegisterSearchMetrics registers the search controller metrics. Safe to call more than once.
func RegisterSearchMetrics() {
	registerSearchOnce.Do(func() {
		prometheus.MustRegister(SearchAttemptsTotal)
		prometheus.MustRegister(SearchAttemptDuration)
		prometheus.MustRegister(SearchRetriesTotal)
		prometheus.MustRegister(SearchRequestsTotal)
		prometheus.MustRegister(SearchResultCount)
	})
}
