// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

/*
Package metrics provides Prometheus metrics for the ingestion pipeline.

All collectors are registered on the default registry through promauto and
exposed by the operational HTTP server at /metrics:

	curl http://127.0.0.1:9100/metrics

# Available Metrics

Ingest:
  - ingest_connections_total: accepted connections (counter)
  - ingest_active_connections: connections currently handled (gauge)
  - ingest_connections_closed_total: closed connections (counter)
    Labels: reason (eof, read_error, line_too_long, decode_error, write_error, shutdown)
  - ingest_admission_wait_seconds: time spent waiting for a connection slot (histogram)
  - ingest_lines_received_total: framed lines (counter)
  - ingest_lines_processed_total: lines by outcome (counter)
    Labels: outcome (written, skipped_sentinel, decode_error, resolve_error,
    encode_error, write_error)

GeoIP:
  - geoip_resolve_duration_seconds: lookup latency (histogram)
    Labels: provider, result
  - geoip_rate_limited_total: lookups refused by the client-side limiter (counter)

Storage:
  - storage_write_duration_seconds: write latency (histogram)
    Labels: backend
  - storage_write_errors_total: failed writes (counter)
    Labels: backend

Circuit Breaker:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_requests_total: Labels: name, result (success, failure, rejected)
  - circuit_breaker_consecutive_failures (gauge)
  - circuit_breaker_state_transitions_total: Labels: name, from_state, to_state

Operational HTTP:
  - http_requests_total: Labels: method, path, status_code
  - http_request_duration_seconds: Labels: method, path

# Example Queries

Share of lines that could not be geolocated:

	sum(rate(ingest_lines_processed_total{outcome="resolve_error"}[5m]))
	  / sum(rate(ingest_lines_received_total[5m]))

Connections dropped because the store refused a write:

	increase(ingest_connections_closed_total{reason="write_error"}[1h])
*/
package metrics
