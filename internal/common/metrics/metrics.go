// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
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

	MatchResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_results_total",
			Help: "Match results served, by source (cache or computed)",
		},
		[]string{"source"},
	)

	MatchCacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_cache_errors_total",
			Help: "Recovered match cache failures by operation",
		},
		[]string{"operation"},
	)

	MatchComputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_compute_duration_seconds",
			Help:    "Time to load snapshots and score a job/candidate pair on a cache miss",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	MatchBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_batch_size",
			Help:    "Number of jobs scored per batch request",
			Buckets: []float64{1, 5, 10, 20, 50, 100},
		},
	)

	MatchBatchOmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "match_batch_omitted_total",
			Help: "Jobs omitted from batch results because scoring failed",
		},
	)
)
