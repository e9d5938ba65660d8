// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	client "github.com/influxdata/influxdb1-client/v2"

	"github.com/tomtom215/geoipline/internal/config"
	"github.com/tomtom215/geoipline/internal/logging"
	"github.com/tomtom215/geoipline/internal/models"
	"github.com/tomtom215/geoipline/internal/validation"
)

// BackendInfluxDB is the Name() of InfluxDBWriter.
const BackendInfluxDB = "influxdb"

// ErrUnsafeTag is returned for a tag value the line protocol cannot carry.
var ErrUnsafeTag = errors.New("tag value contains control characters or invalid UTF-8")

// InfluxDBWriter writes one point per record through the InfluxDB 1.x HTTP
// write API.
//
// Point layout:
//
//	ssh-auth,<token kind>=<token>,username=<username> ip="<ip>",success=false <time>
type InfluxDBWriter struct {
	client          client.Client
	database        string
	retentionPolicy string
	timeout         time.Duration
	now             func() time.Time
}

// NewInfluxDBWriter creates the HTTP client. It does not contact the server.
func NewInfluxDBWriter(cfg *config.InfluxDBConfig, retentionPolicy string) (*InfluxDBWriter, error) {
	c, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:     cfg.URL,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, &StorageError{Backend: BackendInfluxDB, Op: "connect", Err: err}
	}

	return &InfluxDBWriter{
		client:          c,
		database:        cfg.Database,
		retentionPolicy: retentionPolicy,
		timeout:         cfg.Timeout,
		now:             time.Now,
	}, nil
}

// Name returns the backend name.
func (w *InfluxDBWriter) Name() string {
	return BackendInfluxDB
}

// Write sends record as a single-point batch. The client library has no
// context support; the HTTP client timeout bounds the call instead.
func (w *InfluxDBWriter) Write(_ context.Context, record models.EnrichedRecord) error {
	bp, err := client.NewBatchPoints(client.BatchPointsConfig{
		Database:        w.database,
		RetentionPolicy: w.retentionPolicy,
	})
	if err != nil {
		return &StorageError{Backend: BackendInfluxDB, Op: "write", Err: err}
	}

	pt, err := newPoint(record, w.now)
	if err != nil {
		return &StorageError{Backend: BackendInfluxDB, Op: "write", Err: err}
	}
	bp.AddPoint(pt)

	if err := w.client.Write(bp); err != nil {
		return &StorageError{Backend: BackendInfluxDB, Op: "write", Err: err}
	}
	return nil
}

// newPoint builds the line-protocol point for record.
func newPoint(record models.EnrichedRecord, now func() time.Time) (*client.Point, error) {
	tags := map[string]string{
		"username":       record.Username,
		record.TokenKind: record.Token,
	}
	for key, value := range tags {
		if !validation.TagSafe(value) {
			return nil, fmt.Errorf("%s: %w", key, ErrUnsafeTag)
		}
	}
	fields := map[string]interface{}{
		"success": record.Success,
		"ip":      record.IP,
	}
	return client.NewPoint(models.Measurement, tags, fields, record.Timestamp(now))
}

// Ping checks the /ping endpoint. The deadline of ctx, when earlier than the
// configured timeout, bounds the check.
func (w *InfluxDBWriter) Ping(ctx context.Context) error {
	timeout := w.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}

	rtt, version, err := w.client.Ping(timeout)
	if err != nil {
		return &StorageError{Backend: BackendInfluxDB, Op: "ping", Err: err}
	}

	logging.Debug().Dur("rtt", rtt).Str("version", version).Msg("InfluxDB ping ok")
	return nil
}

// Close releases idle HTTP connections.
func (w *InfluxDBWriter) Close() error {
	return w.client.Close()
}
