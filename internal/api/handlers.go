// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/geoipline/internal/logging"
	"github.com/tomtom215/geoipline/internal/middleware"
	"github.com/tomtom215/geoipline/internal/models"
)

// DefaultPingTimeout bounds the storage ping done by the health handlers.
const DefaultPingTimeout = 2 * time.Second

// StoragePinger is the part of storage.Writer the health handlers use.
type StoragePinger interface {
	Ping(ctx context.Context) error
	Name() string
}

// ResolverInfo is the part of geoip.Resolver the health handlers use.
type ResolverInfo interface {
	Name() string
}

// IngestStatus is the part of *ingest.Listener the health handlers use.
type IngestStatus interface {
	Addr() net.Addr
	ActiveConnections() int
}

// HandlerConfig wires the components reported by the health endpoints.
type HandlerConfig struct {
	Storage  StoragePinger
	Resolver ResolverInfo
	Ingest   IngestStatus
	Version  string

	// PingTimeout bounds each storage ping. Default: DefaultPingTimeout.
	PingTimeout time.Duration
}

// Handler serves the operational endpoints.
type Handler struct {
	storage     StoragePinger
	resolver    ResolverInfo
	ingest      IngestStatus
	version     string
	pingTimeout time.Duration
	startTime   time.Time
}

// NewHandler creates a Handler. Nil components are reported as absent.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = DefaultPingTimeout
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Handler{
		storage:     cfg.Storage,
		resolver:    cfg.Resolver,
		ingest:      cfg.Ingest,
		version:     cfg.Version,
		pingTimeout: cfg.PingTimeout,
		startTime:   time.Now(),
	}
}

func (h *Handler) uptime() float64 {
	return time.Since(h.startTime).Seconds()
}

// storageConnected pings the storage backend. Nil storage is never connected.
func (h *Handler) storageConnected(ctx context.Context) bool {
	if h.storage == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, h.pingTimeout)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("backend", h.storage.Name()).Msg("Health check storage ping failed")
		return false
	}
	return true
}

func (h *Handler) listenerBound() bool {
	return h.ingest != nil && h.ingest.Addr() != nil
}

func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("Failed to write response")
	}
}

// newMetadata stamps a response with the current time and the request ID
// assigned by middleware.RequestID.
func newMetadata(r *http.Request) models.Metadata {
	return models.Metadata{
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetRequestID(r.Context()),
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: newMetadata(r),
		Error:    &models.APIError{Code: code, Message: message},
	})
}
