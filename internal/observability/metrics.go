// Package observability provides Prometheus metrics and HTTP middleware for
// monitoring the console server.
package observability

import "github.com/prometheus/client_golang/prometheus"

// ExecutionBuckets covers interactive runs from a few milliseconds up to
// several minutes of package installation.
var ExecutionBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300}

var (
	// RequestsTotal counts HTTP requests by method, route and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pyconsole_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records HTTP request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pyconsole_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: ExecutionBuckets,
		},
		[]string{"method", "route"},
	)

	// ExecutionsTotal counts console executions by result kind.
	ExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pyconsole_executions_total",
			Help: "Console executions",
		},
		[]string{"kind"},
	)

	// ExecutionDuration records console execution latency in seconds.
	ExecutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pyconsole_execution_duration_seconds",
			Help:    "Console execution duration",
			Buckets: ExecutionBuckets,
		},
		[]string{"kind"},
	)

	// ScriptRunsTotal counts headless script runs by status.
	ScriptRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pyconsole_script_runs_total",
			Help: "Headless script runs",
		},
		[]string{"status"},
	)

	// PackageInstallsTotal counts package installations by outcome.
	PackageInstallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pyconsole_package_installs_total",
			Help: "Package installations",
		},
		[]string{"status"},
	)

	// SessionsActive tracks the number of live console sessions.
	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pyconsole_sessions_active",
			Help: "Active console sessions",
		},
	)

	// ReportPublishFailuresTotal counts reports the publisher could not deliver.
	ReportPublishFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pyconsole_report_publish_failures_total",
			Help: "Report publication failures",
		},
		[]string{"report"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		ExecutionsTotal,
		ExecutionDuration,
		ScriptRunsTotal,
		PackageInstallsTotal,
		SessionsActive,
		ReportPublishFailuresTotal,
	)
}
