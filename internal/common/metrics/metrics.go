// internal/common/metrics/metrics.go
package metrics

import (
	"time"

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

	DocumentSetsProvisioned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobposting_document_sets_total",
			Help: "Document set provisioning outcomes by form status",
		},
		[]string{"status"},
	)

	TemplateCopies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobposting_template_copies_total",
			Help: "Template file copies by source and result",
		},
		[]string{"source", "result"},
	)

	SharePointRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sharepoint_request_duration_seconds",
			Help:    "SharePoint REST request latency by operation and status class",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 9),
		},
		[]string{"operation", "status"},
	)

	DivisionCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobposting_division_cache_lookups_total",
			Help: "Division cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

// ObserveJob records the outcome of one job. errorCode is empty on success.
func ObserveJob(taskType string, started time.Time, errorCode string) {
	WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(started).Seconds())
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
}

// TrackActive increments the active gauge and returns the matching decrement.
func TrackActive(taskType string) func() {
	g := WorkerJobsActive.WithLabelValues(taskType)
	g.Inc()
	return g.Dec
}
