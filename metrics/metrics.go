// Package metrics provides Prometheus metrics for speclist conversions and the HTTP API.
//
// Conversion metrics:
//   - speclist_records_total: Counter of records written to CSV
//   - speclist_lines_total: Counter of input lines, labelled by kind
//   - speclist_stage_duration_seconds: Histogram of fetch and parse durations
//   - speclist_failures_total: Counter of failed runs, labelled by stage
//   - speclist_last_success_timestamp_seconds: Gauge set after each successful run
//
// HTTP metrics (serve mode):
//   - http_request_total, http_request_duration_seconds, http_request_in_flight
//
// All metrics are registered with the Prometheus default registry during package initialization.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// Stage labels
const (
	StageFetch = "fetch"
	StageParse = "parse"
)

// Line kind labels
const (
	LinePrimary         = "primary"
	LineSecondary       = "secondary"
	LineOrphanSecondary = "orphan_secondary"
	LineSkipped         = "skipped"
)

var (
	RecordsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "speclist_records_total",
			Help: "Total records written to CSV",
		},
	)

	LinesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speclist_lines_total",
			Help: "Total speclist lines read, by kind",
		},
		[]string{"kind"},
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "speclist_stage_duration_seconds",
			Help:    "Duration of the fetch and parse stages",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 300},
		},
		[]string{"stage"},
	)

	FailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speclist_failures_total",
			Help: "Total failed conversions, by stage",
		},
		[]string{"stage"},
	)

	LastSuccessTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "speclist_last_success_timestamp_seconds",
			Help: "Unix time of the last successful conversion",
		},
	)

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
			Help: "Total number of rate limiter buckets",
		},
	)
)

func init() {
	prometheus.MustRegister(RecordsTotal)
	prometheus.MustRegister(LinesTotal)
	prometheus.MustRegister(StageDuration)
	prometheus.MustRegister(FailuresTotal)
	prometheus.MustRegister(LastSuccessTimestamp)
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
}

// WriteTextfile writes the default registry in the text exposition format,
// for the node_exporter textfile collector
func WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create metrics directory %s: %w", dir, err)
		}
	}

	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}
