package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ErrorsReported tracks records accepted by the error reporter
	ErrorsReported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drivingschool_errors_reported_total",
			Help: "Total number of error records reported",
		},
		[]string{"code", "operational"},
	)

	// ReportsDropped tracks records discarded because the queue was full or closed
	ReportsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drivingschool_error_reports_dropped_total",
			Help: "Total number of error records dropped before reaching a sink",
		},
		[]string{"reason"},
	)

	// SinkFailures tracks sink write errors
	SinkFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drivingschool_error_sink_failures_total",
			Help: "Total number of failed sink writes",
		},
		[]string{"sink"},
	)

	// ExecutorAttempts tracks individual operation attempts
	ExecutorAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drivingschool_executor_attempts_total",
			Help: "Total number of operation attempts made by the resilient executor",
		},
		[]string{"outcome"},
	)

	// ExecutorBackoff tracks time spent sleeping between attempts
	ExecutorBackoff = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "drivingschool_executor_backoff_seconds",
			Help:    "Backoff delay between attempts in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ResultsPresented tracks user-facing results by code
	ResultsPresented = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drivingschool_results_presented_total",
			Help: "Total number of user-facing error results built",
		},
		[]string{"code"},
	)
)

// DBConnectionPoolUsage tracks the percentage of open connections in use
var DBConnectionPoolUsage = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "drivingschool_db_connection_pool_usage_percent",
		Help: "Open database connections as a percentage of the pool limit",
	},
)
