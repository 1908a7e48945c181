package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stagegate_submissions_total",
			Help: "Total number of submission transitions by resulting state",
		},
		[]string{"org_id", "state"},
	)

	ApprovalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stagegate_approvals_total",
			Help: "Total number of recorded step approvals",
		},
		[]string{"org_id"},
	)

	ActivityLogFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stagegate_activity_log_failures_total",
			Help: "Activity log writes that were swallowed after failing",
		},
	)

	NotifyFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stagegate_notify_failures_total",
			Help: "Notification fan-out attempts that failed",
		},
	)

	OutboxPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stagegate_outbox_published_total",
			Help: "Notification events relayed to the broker",
		},
	)

	OutboxFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stagegate_outbox_failed_total",
			Help: "Notification events routed to the DLQ",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stagegate_http_request_duration_seconds",
			Help:    "API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
