// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package api

import (
	"net/http"

	"github.com/tomtom215/geoipline/internal/models"
)

// Health reports component status. It always answers 200; a storage
// backend that does not answer a ping makes the status "degraded".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	connected := h.storageConnected(r.Context())

	health := models.HealthStatus{
		Status:           "healthy",
		Version:          h.version,
		StorageConnected: connected,
		ListenerBound:    h.listenerBound(),
		Uptime:           h.uptime(),
	}
	if !connected {
		health.Status = "degraded"
	}
	if h.storage != nil {
		health.StorageBackend = h.storage.Name()
	}
	if h.resolver != nil {
		health.GeoIPProvider = h.resolver.Name()
	}
	if h.ingest != nil {
		health.ActiveConnections = h.ingest.ActiveConnections()
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     health,
		Metadata: newMetadata(r),
	})
}

// HealthLive answers 200 while the process is running.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]any{
			"alive":          true,
			"uptime_seconds": h.uptime(),
		},
		Metadata: newMetadata(r),
	})
}

// HealthReady answers 200 when the listener is bound and storage answers a
// ping, 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	bound := h.listenerBound()
	connected := h.storageConnected(r.Context())
	ready := bound && connected

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]any{
			"listener_bound":    bound,
			"storage_connected": connected,
			"ready_to_serve":    ready,
		},
		Metadata: newMetadata(r),
	})
}
