// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Line outcomes for IngestLinesProcessed. Every received line ends up in
// exactly one of these.
const (
	OutcomeWritten         = "written"
	OutcomeSkippedSentinel = "skipped_sentinel"
	OutcomeDecodeError     = "decode_error"
	OutcomeResolveError    = "resolve_error"
	OutcomeEncodeError     = "encode_error"
	OutcomeWriteError      = "write_error"
)

// Connection close reasons for IngestConnectionsClosed.
const (
	CloseEOF         = "eof"
	CloseReadError   = "read_error"
	CloseLineTooLong = "line_too_long"
	CloseDecodeError = "decode_error"
	CloseWriteError  = "write_error"
	CloseShutdown    = "shutdown"
)

var (
	// Ingest Metrics
	IngestConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_connections_total",
			Help: "Total number of accepted TCP connections",
		},
	)

	IngestActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_active_connections",
			Help: "Current number of connections being handled",
		},
	)

	IngestConnectionsClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_connections_closed_total",
			Help: "Total number of closed connections by reason",
		},
		[]string{"reason"}, // eof, read_error, line_too_long, decode_error, write_error, shutdown
	)

	IngestAdmissionWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_admission_wait_seconds",
			Help:    "Time the accept loop waited for a free connection slot",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
		},
	)

	IngestLinesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_lines_received_total",
			Help: "Total number of complete lines read from connections",
		},
	)

	IngestLinesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_lines_processed_total",
			Help: "Total number of lines by pipeline outcome",
		},
		[]string{"outcome"},
	)

	// GeoIP Metrics
	GeoIPResolveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geoip_resolve_duration_seconds",
			Help:    "Duration of IP to coordinates resolution",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10}, // mmdb lookups are microseconds, HTTP calls are not
		},
		[]string{"provider", "result"},
	)

	GeoIPRateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoip_rate_limited_total",
			Help: "Total number of lookups refused by the client-side rate limiter",
		},
		[]string{"provider"},
	)

	GeoIPCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoip_cache_requests_total",
			Help: "Total number of lookup cache requests by result",
		},
		[]string{"provider", "result"}, // result: "hit", "miss"
	)

	GeoIPCacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "geoip_cache_entries",
			Help: "Number of entries held in the lookup cache after the last cleanup",
		},
		[]string{"provider"},
	)

	GeoIPCacheExpired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoip_cache_expired_total",
			Help: "Total number of expired lookup cache entries removed by cleanup",
		},
		[]string{"provider"},
	)

	// Storage Metrics
	StorageWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_write_duration_seconds",
			Help:    "Duration of single-record writes",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	StorageWriteErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_write_errors_total",
			Help: "Total number of failed writes",
		},
		[]string{"backend"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Operational HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of requests to the operational endpoint",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Operational endpoint request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"method", "path"},
	)
)

// RecordConnectionOpened records an accepted connection.
func RecordConnectionOpened() {
	IngestConnectionsTotal.Inc()
	IngestActiveConnections.Inc()
}

// RecordConnectionClosed records a connection leaving the handler.
func RecordConnectionClosed(reason string) {
	IngestActiveConnections.Dec()
	IngestConnectionsClosed.WithLabelValues(reason).Inc()
}

// RecordAdmissionWait records how long an accepted connection waited for a slot.
func RecordAdmissionWait(d time.Duration) {
	IngestAdmissionWaitDuration.Observe(d.Seconds())
}

// RecordLineReceived counts one framed line.
func RecordLineReceived() {
	IngestLinesReceived.Inc()
}

// RecordLineOutcome counts the terminal outcome of one line.
func RecordLineOutcome(outcome string) {
	IngestLinesProcessed.WithLabelValues(outcome).Inc()
}

// RecordResolve records a GeoIP lookup.
func RecordResolve(provider string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	GeoIPResolveDuration.WithLabelValues(provider, result).Observe(duration.Seconds())
}

// RecordRateLimited counts a lookup refused by the rate limiter.
func RecordRateLimited(provider string) {
	GeoIPRateLimited.WithLabelValues(provider).Inc()
}

// RecordCacheLookup counts a lookup cache hit or miss.
func RecordCacheLookup(provider string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	GeoIPCacheRequests.WithLabelValues(provider, result).Inc()
}

// RecordCacheCleanup records a lookup cache cleanup pass.
func RecordCacheCleanup(provider string, removed, size int) {
	GeoIPCacheExpired.WithLabelValues(provider).Add(float64(removed))
	GeoIPCacheEntries.WithLabelValues(provider).Set(float64(size))
}

// RecordWrite records a storage write.
func RecordWrite(backend string, duration time.Duration, err error) {
	StorageWriteDuration.WithLabelValues(backend).Observe(duration.Seconds())
	if err != nil {
		StorageWriteErrors.WithLabelValues(backend).Inc()
	}
}

// RecordHTTPRequest records a request to the operational endpoint.
func RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
