// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package storage

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/tomtom215/geoipline/internal/config"
)

// BackendClickHouse is the Name() of the ClickHouse writer.
const BackendClickHouse = "clickhouse"

var clickHouseSchema = []string{
	`CREATE TABLE IF NOT EXISTS ` + tableName + ` (
		time DateTime64(9, 'UTC'),
		token_kind LowCardinality(String),
		token String,
		username String,
		ip String,
		success Bool,
		retention_policy LowCardinality(String)
	) ENGINE = MergeTree()
	ORDER BY (token_kind, token, time)`,
}

// ClickHouseWriter appends records to a MergeTree table over the native
// protocol.
type ClickHouseWriter struct {
	sqlWriter
}

// clickHouseOptions maps cfg to driver options.
func clickHouseOptions(cfg *config.ClickHouseConfig) *clickhouse.Options {
	return &clickhouse.Options{
		Addr: []string{cfg.Address},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: 5 * time.Second,
	}
}

// NewClickHouseWriter connects and creates the table.
func NewClickHouseWriter(ctx context.Context, cfg *config.ClickHouseConfig, retentionPolicy string) (*ClickHouseWriter, error) {
	db := clickhouse.OpenDB(clickHouseOptions(cfg))

	w := &ClickHouseWriter{sqlWriter{
		backend:         BackendClickHouse,
		db:              db,
		retentionPolicy: retentionPolicy,
		now:             time.Now,
		txInsert:        true,
	}}

	if err := w.initialize(ctx, clickHouseSchema); err != nil {
		closeDBQuietly(db)
		return nil, &StorageError{Backend: BackendClickHouse, Op: "open", Err: err}
	}

	return w, nil
}
