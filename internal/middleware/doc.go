// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

/*
Package middleware provides the chi middleware used by the operational
HTTP endpoint.

  - RequestID: reuses or generates an X-Request-ID and stores it as the
    logging correlation ID
  - PrometheusMetrics: records http_requests_total and
    http_request_duration_seconds labeled by chi route pattern

Usage:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
