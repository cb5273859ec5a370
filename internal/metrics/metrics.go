package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projectsearch_queries_total",
			Help: "Total number of queries handled, by the parser that produced the filter",
		},
		[]string{"parser"},
	)

	ParserFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projectsearch_parser_fallbacks_total",
			Help: "Number of times the model parser was skipped or failed and rule-based parsing was used",
		},
		[]string{"reason"},
	)

	RelaxationSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projectsearch_relaxation_steps_total",
			Help: "Relaxation steps applied to produce a non-empty result",
		},
		[]string{"step"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "projectsearch_query_duration_seconds",
			Help:    "End-to-end query handling latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"parser"},
	)

	ResultCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "projectsearch_result_count",
			Help:    "Number of results returned per query",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20, 50},
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projectsearch_cache_lookups_total",
			Help: "Response cache lookups by outcome (hit, miss, error)",
		},
		[]string{"outcome"},
	)

	DependencyErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projectsearch_dependency_errors_total",
			Help: "Errors from optional dependencies that were degraded silently",
		},
		[]string{"dependency"},
	)
)
