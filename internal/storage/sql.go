// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/geoipline/internal/logging"
	"github.com/tomtom215/geoipline/internal/models"
)

// tableName holds the ssh-auth measurement in SQL backends.
const tableName = "ssh_auth"

// insertSQL is shared by the SQL backends; both accept ? placeholders.
const insertSQL = `INSERT INTO ` + tableName + ` (
	time, token_kind, token, username, ip, success, retention_policy
) VALUES (?, ?, ?, ?, ?, ?, ?)`

// sqlWriter is the database/sql write path shared by DuckDB and ClickHouse.
type sqlWriter struct {
	backend         string
	db              *sql.DB
	retentionPolicy string
	now             func() time.Time

	// insertStmt is prepared once when the driver allows plain inserts.
	insertStmt *sql.Stmt

	// txInsert wraps each insert in BeginTx/Prepare/Commit, as the
	// ClickHouse std driver only accepts INSERT in batch mode.
	txInsert bool
}

// initialize runs the schema statements and prepares the insert.
func (w *sqlWriter) initialize(ctx context.Context, schema []string) error {
	for _, q := range schema {
		if _, err := w.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	if w.txInsert {
		return nil
	}

	stmt, err := w.db.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	w.insertStmt = stmt
	return nil
}

// Name returns the backend name.
func (w *sqlWriter) Name() string {
	return w.backend
}

// Write inserts one row.
func (w *sqlWriter) Write(ctx context.Context, record models.EnrichedRecord) error {
	args := []any{
		record.Timestamp(w.now),
		record.TokenKind,
		record.Token,
		record.Username,
		record.IP,
		record.Success,
		w.retentionPolicy,
	}

	var err error
	if w.txInsert {
		err = w.insertInTx(ctx, args)
	} else {
		_, err = w.insertStmt.ExecContext(ctx, args...)
	}
	if err != nil {
		return &StorageError{Backend: w.backend, Op: "write", Err: err}
	}
	return nil
}

func (w *sqlWriter) insertInTx(ctx context.Context, args []any) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, args...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Ping verifies the connection.
func (w *sqlWriter) Ping(ctx context.Context) error {
	if err := w.db.PingContext(ctx); err != nil {
		return &StorageError{Backend: w.backend, Op: "ping", Err: err}
	}
	return nil
}

// Close closes the prepared statement and the pool.
func (w *sqlWriter) Close() error {
	if w.insertStmt != nil {
		if err := w.insertStmt.Close(); err != nil {
			logging.Warn().Err(err).Str("backend", w.backend).Msg("Failed to close insert statement")
		}
	}
	return w.db.Close()
}

// closeDBQuietly closes db on a failed constructor path.
func closeDBQuietly(db *sql.DB) {
	if err := db.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close database connection")
	}
}
