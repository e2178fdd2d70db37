// Package metrics provides Prometheus metrics for the server. It covers the
// HTTP transport (request totals, latency, in-flight gauge), the MCP tool
// layer (per-tool call counts), the drug database lifecycle (build counts,
// build duration, download volume) and the OpenFDA passthrough client.
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen in last ~5 minutes)",
		},
	)

	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_tool_calls_total",
			Help: "Total MCP tool invocations by tool name and outcome",
		},
		[]string{"tool", "outcome"},
	)

	StoreBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drug_store_builds_total",
			Help: "Total drug database build attempts by outcome",
		},
		[]string{"outcome"},
	)

	StoreBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "drug_store_build_duration_seconds",
			Help:    "Wall time of full download-parse-build cycles",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	DownloadBytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_download_bytes_total",
			Help: "Bytes downloaded from FDA data publications by source file",
		},
		[]string{"source"},
	)

	OpenFDARequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "openfda_requests_total",
			Help: "Total OpenFDA API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)
)

// RecordToolCall counts one MCP tool invocation. outcome is "success" or
// "error".
func RecordToolCall(tool, outcome string) {
	ToolCallsTotal.WithLabelValues(tool, outcome).Inc()
}

// RecordStoreBuild counts one database build attempt and records how long it
// took. outcome is "success" or "failure".
func RecordStoreBuild(outcome string, seconds float64) {
	StoreBuildsTotal.WithLabelValues(outcome).Inc()
	StoreBuildDuration.Observe(seconds)
}

// AddDownloadBytes accumulates downloaded bytes for one source file.
func AddDownloadBytes(source string, bytes float64) {
	DownloadBytesTotal.WithLabelValues(source).Add(bytes)
}

// RecordOpenFDARequest counts one OpenFDA API request.
func RecordOpenFDARequest(endpoint, status string) {
	OpenFDARequestsTotal.WithLabelValues(endpoint, status).Inc()
}

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(ToolCallsTotal)
	prometheus.MustRegister(StoreBuildsTotal)
	prometheus.MustRegister(StoreBuildDuration)
	prometheus.MustRegister(DownloadBytesTotal)
	prometheus.MustRegister(OpenFDARequestsTotal)
}
