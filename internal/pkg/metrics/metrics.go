package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ModerationVerdictsTotal 审核结论计数
	ModerationVerdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "touchstone_moderation_verdicts_total",
			Help: "Moderation verdicts by content type and status",
		},
		[]string{"content_type", "status"},
	)

	ModerationDegradedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "touchstone_moderation_degraded_total",
			Help: "Evaluations that fell back to manual review because of an engine fault",
		},
	)

	ModerationEvalDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "touchstone_moderation_eval_duration_seconds",
			Help:    "Duration of a single moderation evaluation",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	ReviewDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "touchstone_review_decisions_total",
			Help: "Manual review outcomes",
		},
		[]string{"decision"},
	)

	// BatchItemsTotal 批处理逐条结果，result 为 updated 或 error
	BatchItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "touchstone_batch_items_total",
			Help: "Items processed by batch engines",
		},
		[]string{"engine", "result"},
	)

	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "touchstone_job_runs_total",
			Help: "Scheduled job executions by outcome",
		},
		[]string{"job", "outcome"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "touchstone_job_duration_seconds",
			Help:    "Duration of scheduled job runs",
			Buckets: prometheus.ExponentialBuckets(0.1, 4, 8),
		},
		[]string{"job"},
	)

	JobRunning = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "touchstone_job_running",
			Help: "1 while a job holds its lease",
		},
		[]string{"job"},
	)
)

// 任务结果
const (
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeSkipped  = "skipped"
	OutcomeCanceled = "canceled"
)

func RecordVerdict(contentType, status string, degraded bool, elapsed time.Duration) {
	ModerationVerdictsTotal.WithLabelValues(contentType, status).Inc()
	ModerationEvalDuration.Observe(elapsed.Seconds())
	if degraded {
		ModerationDegradedTotal.Inc()
	}
}

func RecordBatch(engine string, updated, errors int) {
	BatchItemsTotal.WithLabelValues(engine, "updated").Add(float64(updated))
	BatchItemsTotal.WithLabelValues(engine, "error").Add(float64(errors))
}

func RecordJob(job, outcome string, elapsed time.Duration) {
	JobRunsTotal.WithLabelValues(job, outcome).Inc()
	if outcome != OutcomeSkipped {
		JobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
	}
}
