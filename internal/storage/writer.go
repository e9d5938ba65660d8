// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/geoipline/internal/config"
	"github.com/tomtom215/geoipline/internal/logging"
	"github.com/tomtom215/geoipline/internal/models"
)

// Writer persists enriched records. Implementations are safe for concurrent
// use by many connection handlers.
type Writer interface {
	// Write persists one record. Failure is a *StorageError.
	Write(ctx context.Context, record models.EnrichedRecord) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Name returns the backend name for logging and metrics.
	Name() string

	// Close releases the backend's resources.
	Close() error
}

// StorageError reports a failed write or backend operation.
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// DefaultPingTimeout bounds the startup connectivity check.
const DefaultPingTimeout = 10 * time.Second

// New builds the writer selected by cfg.Backend and checks that the backend
// is reachable. The returned writer must be closed by the caller.
func New(ctx context.Context, cfg *config.StorageConfig) (Writer, error) {
	var (
		w   Writer
		err error
	)

	switch cfg.Backend {
	case config.BackendInfluxDB:
		w, err = NewInfluxDBWriter(&cfg.InfluxDB, cfg.RetentionPolicy)
	case config.BackendDuckDB:
		w, err = NewDuckDBWriter(ctx, &cfg.DuckDB, cfg.RetentionPolicy)
	case config.BackendClickHouse:
		w, err = NewClickHouseWriter(ctx, &cfg.ClickHouse, cfg.RetentionPolicy)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, DefaultPingTimeout)
	defer cancel()

	if err := w.Ping(pingCtx); err != nil {
		closeQuietly(w)
		return nil, err
	}

	logger := logging.WithComponent("storage")
	logger.Info().
		Str("backend", w.Name()).
		Str("retention_policy", cfg.RetentionPolicy).
		Msg("Storage backend ready")

	return w, nil
}

// closeQuietly closes w and logs any error.
func closeQuietly(w Writer) {
	if err := w.Close(); err != nil {
		logger := logging.WithComponent("storage")
		logger.Warn().Err(err).Str("backend", w.Name()).Msg("Failed to close storage backend")
	}
}
