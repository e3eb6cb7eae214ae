// Package telemetry holds the Prometheus instrumentation. promauto registers
// everything with the default registry; the server exposes it on /metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AnalysisDuration tracks end-to-end analysis latency, labelled by
	// whether the result came from cache.
	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geopulse_analysis_duration_seconds",
			Help:    "Duration of one website analysis in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"source"}, // cache, fresh
	)

	// AnalysesTotal counts completed analyses by outcome path.
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geopulse_analyses_total",
			Help: "Total number of website analyses",
		},
		[]string{"path"}, // regular, demo, new_domain, error
	)

	// CacheHitsTotal counts analysis cache hits.
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geopulse_analysis_cache_hits_total",
			Help: "Total number of analysis cache hits",
		},
	)

	// CacheMissesTotal counts analysis cache misses.
	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geopulse_analysis_cache_misses_total",
			Help: "Total number of analysis cache misses",
		},
	)

	// ReportsCreatedTotal counts shareable reports created.
	ReportsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geopulse_reports_created_total",
			Help: "Total number of shareable reports created",
		},
	)

	// ReportViewsTotal counts tracked report views by device class.
	ReportViewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geopulse_report_views_total",
			Help: "Total number of tracked report views",
		},
		[]string{"device"},
	)

	// RateLimitedRequestsTotal counts requests rejected by the API rate
	// limiter.
	RateLimitedRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geopulse_rate_limited_requests_total",
			Help: "Total number of rate-limited API requests",
		},
	)

	// HTTPRequestDuration tracks API request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geopulse_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path", "status"},
	)
)

// RecordCacheHit increments the analysis cache hit counter.
func RecordCacheHit() { CacheHitsTotal.Inc() }

// RecordCacheMiss increments the analysis cache miss counter.
func RecordCacheMiss() { CacheMissesTotal.Inc() }

// RecordReportCreated increments the reports-created counter.
func RecordReportCreated() { ReportsCreatedTotal.Inc() }

// RecordReportView increments the view counter for a device class.
func RecordReportView(device string) { ReportViewsTotal.WithLabelValues(device).Inc() }

// RecordRateLimited increments the rate-limited request counter.
func RecordRateLimited() { RateLimitedRequestsTotal.Inc() }
