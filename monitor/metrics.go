package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "iris_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)

	// Status changes committed, by entity and resulting status
	WorkflowTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iris_workflow_transitions_total",
			Help: "Committed status transitions",
		},
		[]string{"entity", "status"},
	)

	// Requests rejected by the workflow, by error code
	WorkflowRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iris_workflow_rejections_total",
			Help: "Operations rejected with a domain error",
		},
		[]string{"code"},
	)

	NotificationDispatch = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iris_notification_dispatch_total",
			Help: "Post-commit notification deliveries",
		},
		[]string{"channel", "result"}, // channel: push, mail
	)

	SchedulerRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iris_scheduler_runs_total",
			Help: "Scheduled job executions",
		},
		[]string{"job", "result"},
	)
)

func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordTransition(entity, status string) {
	WorkflowTransitions.WithLabelValues(entity, status).Inc()
}

func RecordRejection(code string) {
	WorkflowRejections.WithLabelValues(code).Inc()
}

func RecordDispatch(channel string, err error) {
	result := "success"
	if err != nil {
		result = "failed"
	}
	NotificationDispatch.WithLabelValues(channel, result).Inc()
}

func RecordSchedulerRun(job string, err error) {
	result := "success"
	if err != nil {
		result = "failed"
	}
	SchedulerRuns.WithLabelValues(job, result).Inc()
}
