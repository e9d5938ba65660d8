// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

/*
Package api serves geoipline's operational HTTP endpoint.

The endpoint is separate from the ingest port and carries no pipeline
data. It exists for scraping and health checks:

  - GET /metrics: Prometheus exposition of the ingest, geoip, storage and
    circuit breaker metrics
  - GET /health: JSON component status, always 200
  - GET /health/live and /health/ready: Kubernetes-style health checks

Responses use the models.APIResponse envelope:

	{
	  "status": "success",
	  "data": {
	    "status": "healthy",
	    "version": "1.2.0",
	    "geoip_provider": "maxmind",
	    "storage_backend": "influxdb",
	    "storage_connected": true,
	    "listener_bound": true,
	    "active_connections": 3,
	    "uptime_seconds": 8123.4
	  },
	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
	}

Middleware (in order): request ID, panic recovery, Prometheus request
metrics, per-IP rate limiting via go-chi/httprate.
*/
package api
