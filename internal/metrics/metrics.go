// Package metrics holds the prometheus instruments of casedesk.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PasteRowsParsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "casedesk_paste_rows_parsed_total",
			Help: "Total number of pasted rows mapped to test cases",
		},
	)

	PasteRowsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "casedesk_paste_rows_dropped_total",
			Help: "Total number of pasted rows dropped for an empty title",
		},
	)

	PasteHeadersSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "casedesk_paste_headers_skipped_total",
			Help: "Total number of pasted header rows skipped",
		},
	)

	Warnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casedesk_warnings_total",
			Help: "Total number of user-facing warnings by code",
		},
		[]string{"code"},
	)

	TrackerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casedesk_tracker_requests_total",
			Help: "Total number of tracker API requests",
		},
		[]string{"operation", "outcome"},
	)

	TrackerRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "casedesk_tracker_request_duration_seconds",
			Help:    "Time taken by tracker API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casedesk_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"route", "status"},
	)

	ActiveWorkspaces = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "casedesk_active_workspaces",
			Help: "Number of cached user workspaces",
		},
	)
)

// ObservePaste records the outcome of one paste parse.
func ObservePaste(parsed, dropped int, headerSkipped bool) {
	PasteRowsParsed.Add(float64(parsed))
	PasteRowsDropped.Add(float64(dropped))
	if headerSkipped {
		PasteHeadersSkipped.Inc()
	}
}

// ObserveTracker records one tracker call. outcome is "ok" or an error class.
func ObserveTracker(operation, outcome string, elapsed time.Duration) {
	TrackerRequests.WithLabelValues(operation, outcome).Inc()
	TrackerRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
