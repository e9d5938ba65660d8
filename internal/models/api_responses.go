// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package models

import "time"

// APIResponse is the envelope for every operational endpoint response
// except /metrics.
//
//	{
//	  "status": "success",
//	  "data": {"status": "healthy", ...},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "request_id": "..."}
//	}
type APIResponse struct {
	Status   string    `json:"status"`
	Data     any       `json:"data,omitempty"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError is a machine-readable error code plus a message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthStatus is the /health payload.
type HealthStatus struct {
	// Status is "healthy", or "degraded" when the storage backend does not
	// answer a ping.
	Status  string `json:"status"`
	Version string `json:"version"`

	GeoIPProvider    string `json:"geoip_provider"`
	StorageBackend   string `json:"storage_backend"`
	StorageConnected bool   `json:"storage_connected"`

	ListenerBound     bool    `json:"listener_bound"`
	ActiveConnections int     `json:"active_connections"`
	Uptime            float64 `json:"uptime_seconds"`
}
