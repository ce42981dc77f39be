package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "itemsearch",
			Name:      "search_requests_total",
			Help:      "Total number of ranking passes",
		},
		[]string{"status"},
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "itemsearch",
			Name:      "search_duration_seconds",
			Help:      "Ranking pass duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		},
	)

	SearchCandidatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "itemsearch",
			Name:      "search_candidates_total",
			Help:      "Total candidates passing the score filter",
		},
	)

	SearchDocumentsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "itemsearch",
			Name:      "search_documents_skipped_total",
			Help:      "Documents skipped as unrankable or unscorable",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchCandidatesTotal)
	prometheus.MustRegister(SearchDocumentsSkipped)
	searchMetricsRegistered = true
}
