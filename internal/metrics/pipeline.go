package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline Prometheus metrics.
var (
	PipelineStepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "okchat",
			Name:      "pipeline_step_duration_seconds",
			Help:      "Chat pipeline step duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"step"},
	)

	PipelineStepsSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "okchat",
			Name:      "pipeline_steps_skipped_total",
			Help:      "Pipeline steps skipped because their precondition was not met",
		},
		[]string{"step"},
	)

	PipelineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "okchat",
			Name:      "pipeline_requests_total",
			Help:      "Total number of pipeline runs",
		},
		[]string{"query_type", "status"},
	)

	SearchStrategyFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "okchat",
			Name:      "search_strategy_failures_total",
			Help:      "Search strategies that failed and contributed no results",
		},
		[]string{"strategy"},
	)

	SearchStrategyResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "okchat",
			Name:      "search_strategy_results",
			Help:      "Number of results returned per search strategy",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
		},
		[]string{"strategy"},
	)

	ExtractionFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "okchat",
			Name:      "extraction_fallbacks_total",
			Help:      "Query facet extractions and classifications that fell back",
		},
		[]string{"facet"},
	)

	PermissionFilteredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "okchat",
			Name:      "permission_filtered_documents_total",
			Help:      "Documents removed by the permission filter",
		},
		[]string{"reason"}, // "denied" / "oracle_error" / "anonymous"
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(PipelineStepDuration)
	prometheus.MustRegister(PipelineStepsSkippedTotal)
	prometheus.MustRegister(PipelineRequestsTotal)
	prometheus.MustRegister(SearchStrategyFailuresTotal)
	prometheus.MustRegister(SearchStrategyResults)
	prometheus.MustRegister(ExtractionFallbacksTotal)
	prometheus.MustRegister(PermissionFilteredTotal)
	pipelineMetricsRegistered = true
}
