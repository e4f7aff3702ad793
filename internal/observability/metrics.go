// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Launch metrics
	TokensLaunched  prometheus.Counter
	TokensGraduated prometheus.Counter
	LaunchErrors    *prometheus.CounterVec

	// Trade metrics
	TradesRecorded *prometheus.CounterVec
	TradeVolumeSOL prometheus.Counter

	// Automation metrics
	JobsEnqueued     *prometheus.CounterVec
	JobsCompleted    *prometheus.CounterVec
	JobsFailed       *prometheus.CounterVec
	ClaimedLamports  prometheus.Counter
	CycleDuration    *prometheus.HistogramVec
	ProviderLatency  *prometheus.HistogramVec
	ProviderErrors   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulCycle prometheus.Gauge
	UptimeSeconds       prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_launchpad"
	}

	return &Metrics{
		TokensLaunched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "launch",
			Name:      "tokens_launched_total",
			Help:      "Total number of tokens launched",
		}),
		TokensGraduated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "launch",
			Name:      "tokens_graduated_total",
			Help:      "Total number of tokens graduated to external liquidity",
		}),
		LaunchErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "launch",
			Name:      "errors_total",
			Help:      "Total number of launch failures by reason",
		}, []string{"reason"}),

		TradesRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "recorded_total",
			Help:      "Total number of trade events recorded by side",
		}, []string{"side"}),
		TradeVolumeSOL: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "volume_sol_total",
			Help:      "Total SOL volume recorded across all trades",
		}),

		JobsEnqueued: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "automation",
			Name:      "jobs_enqueued_total",
			Help:      "Total number of automation jobs enqueued by type",
		}, []string{"job_type", "trigger"}),
		JobsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "automation",
			Name:      "jobs_completed_total",
			Help:      "Total number of automation jobs completed by type",
		}, []string{"job_type"}),
		JobsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "automation",
			Name:      "jobs_failed_total",
			Help:      "Total number of automation jobs failed by type",
		}, []string{"job_type"}),
		ClaimedLamports: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "automation",
			Name:      "claimed_lamports_total",
			Help:      "Total lamports claimed across all fee claims",
		}),
		CycleDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "automation",
			Name:      "cycle_duration_seconds",
			Help:      "Automation/graduation cycle duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}, []string{"cycle"}),
		ProviderLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "call_latency_seconds",
			Help:      "Launch provider call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		ProviderErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "errors_total",
			Help:      "Total number of launch provider errors by operation",
		}, []string{"operation"}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by path, method and status",
		}, []string{"path", "method", "status"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		LastSuccessfulCycle: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_cycle_timestamp",
			Help:      "Unix timestamp of the last successful automation cycle",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTokenLaunched increments the tokens launched counter.
func RecordTokenLaunched() {
	DefaultMetrics.TokensLaunched.Inc()
}

// RecordTokenGraduated increments the tokens graduated counter.
func RecordTokenGraduated() {
	DefaultMetrics.TokensGraduated.Inc()
}

// RecordTrade records a trade event.
func RecordTrade(side string, solAmount float64) {
	DefaultMetrics.TradesRecorded.WithLabelValues(side).Inc()
	DefaultMetrics.TradeVolumeSOL.Add(solAmount)
}

// RecordJobEnqueued increments the jobs enqueued counter.
func RecordJobEnqueued(jobType, trigger string) {
	DefaultMetrics.JobsEnqueued.WithLabelValues(jobType, trigger).Inc()
}

// RecordJobCompleted records a completed job and its claimed amount.
func RecordJobCompleted(jobType string, claimedLamports int64) {
	DefaultMetrics.JobsCompleted.WithLabelValues(jobType).Inc()
	if claimedLamports > 0 {
		DefaultMetrics.ClaimedLamports.Add(float64(claimedLamports))
	}
}

// RecordJobFailed increments the jobs failed counter.
func RecordJobFailed(jobType string) {
	DefaultMetrics.JobsFailed.WithLabelValues(jobType).Inc()
}

// RecordCycle records an automation or graduation cycle duration.
func RecordCycle(cycle string, seconds float64) {
	DefaultMetrics.CycleDuration.WithLabelValues(cycle).Observe(seconds)
	DefaultMetrics.LastSuccessfulCycle.SetToCurrentTime()
}

// RecordProviderCall records provider call latency and errors.
func RecordProviderCall(operation string, seconds float64, err error) {
	DefaultMetrics.ProviderLatency.WithLabelValues(operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.ProviderErrors.WithLabelValues(operation).Inc()
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(path, method, status string, seconds float64) {
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(path, method).Observe(seconds)
	DefaultMetrics.HTTPRequestsTotal.WithLabelValues(path, method, status).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
