package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "equipment_alerts_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "equipment_alerts_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	PanicsRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "equipment_alerts_panics_recovered_total",
			Help: "Total number of panics recovered",
		},
		[]string{"location"},
	)

	// Rule engine metrics
	RuleRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "equipment_alerts_rule_runs_total",
			Help: "Total number of rule evaluations",
		},
		[]string{"rule", "result"}, // result: success, failure
	)

	RuleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "equipment_alerts_rule_duration_seconds",
			Help:    "Time spent evaluating a single rule",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"rule"},
	)

	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "equipment_alerts_notifications_created_total",
			Help: "Total number of notifications created",
		},
		[]string{"kind"},
	)

	RecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "equipment_alerts_records_skipped_total",
			Help: "Records skipped because a stored date failed to parse",
		},
		[]string{"rule"},
	)

	PublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "equipment_alerts_publish_errors_total",
			Help: "Total number of notifications that failed to publish",
		},
		[]string{"kind"},
	)

	// Scheduler metrics
	SchedulerRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "equipment_alerts_scheduler_runs_total",
			Help: "Total number of scheduled engine runs",
		},
		[]string{"trigger"}, // trigger: startup, ticker, manual
	)
)
