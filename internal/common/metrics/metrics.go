package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_recommendations_total",
			Help: "Recommendations produced, by outcome (parsed, corrected, fallback, failed)",
		},
		[]string{"outcome"},
	)

	ParseStageTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_parse_stage_total",
			Help: "LLM responses successfully parsed, by parse stage",
		},
		[]string{"stage"},
	)

	CatalogMismatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advisor_catalog_mismatches_total",
			Help: "Recommended system names that are missing from the catalog",
		},
	)

	RetrievalFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advisor_retrieval_failures_total",
			Help: "Similarity retrievals that degraded to an empty candidate list",
		},
	)

	OutboundCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "advisor_outbound_call_duration_seconds",
			Help:    "Duration of calls to external services",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_http_requests_total",
			Help: "HTTP requests served, by route pattern and status code",
		},
		[]string{"route", "status"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)
