// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver

	"github.com/tomtom215/geoipline/internal/config"
)

// BackendDuckDB is the Name() of the DuckDB writer.
const BackendDuckDB = "duckdb"

// duckDBSchema creates the measurement table. TIMESTAMP (not TIMESTAMPTZ)
// keeps the schema free of the ICU extension; times are stored in UTC.
var duckDBSchema = []string{
	`CREATE TABLE IF NOT EXISTS ` + tableName + ` (
		time TIMESTAMP NOT NULL,
		token_kind VARCHAR NOT NULL,
		token VARCHAR NOT NULL,
		username VARCHAR,
		ip VARCHAR NOT NULL,
		success BOOLEAN NOT NULL,
		retention_policy VARCHAR
	)`,
	`CREATE INDEX IF NOT EXISTS idx_` + tableName + `_token ON ` + tableName + ` (token_kind, token)`,
}

// DuckDBWriter appends records to an embedded DuckDB database file.
type DuckDBWriter struct {
	sqlWriter
}

// NewDuckDBWriter opens (creating if needed) the database at cfg.Path and
// creates the table. Path ":memory:" opens a private in-memory database.
func NewDuckDBWriter(ctx context.Context, cfg *config.DuckDBConfig, retentionPolicy string) (*DuckDBWriter, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Ensure parent directory exists for database file
	dbDir := filepath.Dir(cfg.Path)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, &StorageError{Backend: BackendDuckDB, Op: "open",
				Err: fmt.Errorf("failed to create database directory %s: %w", dbDir, err)}
		}
	}

	// Disable auto-install/auto-load so a restricted network never stalls startup
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, cfg.MaxMemory)

	db, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, &StorageError{Backend: BackendDuckDB, Op: "open", Err: err}
	}

	w := &DuckDBWriter{sqlWriter{
		backend:         BackendDuckDB,
		db:              db,
		retentionPolicy: retentionPolicy,
		now:             time.Now,
	}}

	if err := w.initialize(ctx, duckDBSchema); err != nil {
		closeDBQuietly(db)
		return nil, &StorageError{Backend: BackendDuckDB, Op: "open", Err: err}
	}

	return w, nil
}
