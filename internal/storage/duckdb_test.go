// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/geoipline/internal/config"
)

func newTestDuckDBWriter(t *testing.T, path, retentionPolicy string) *DuckDBWriter {
	t.Helper()

	w, err := NewDuckDBWriter(context.Background(), &config.DuckDBConfig{
		Path:      path,
		MaxMemory: "256MB",
		Threads:   1,
	}, retentionPolicy)
	if err != nil {
		t.Fatalf("NewDuckDBWriter: %v", err)
	}
	w.now = func() time.Time { return testTime }
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestDuckDBWriter_Write(t *testing.T) {
	w := newTestDuckDBWriter(t, ":memory:", "one_week")
	ctx := context.Background()

	if err := w.Write(ctx, testRecord()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var (
		ts              time.Time
		kind, token     string
		username, ip    string
		success         bool
		retentionPolicy string
	)
	row := w.db.QueryRowContext(ctx, `SELECT time, token_kind, token, username, ip, success, retention_policy FROM ssh_auth`)
	if err := row.Scan(&ts, &kind, &token, &username, &ip, &success, &retentionPolicy); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if !ts.Equal(testTime) {
		t.Errorf("time = %v, want %v", ts, testTime)
	}
	if kind != "geohash" || token != "9q8yy" {
		t.Errorf("token = %s/%s, want geohash/9q8yy", kind, token)
	}
	if username != "root" || ip != "203.0.113.7" || success {
		t.Errorf("row = %s %s %v", username, ip, success)
	}
	if retentionPolicy != "one_week" {
		t.Errorf("retention_policy = %q, want one_week", retentionPolicy)
	}
}

func TestDuckDBWriter_ConcurrentWrites(t *testing.T) {
	w := newTestDuckDBWriter(t, ":memory:", "")
	ctx := context.Background()

	const writers, perWriter = 8, 25

	var wg sync.WaitGroup
	errs := make(chan error, writers*perWriter)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				record := testRecord()
				record.Username = fmt.Sprintf("user%d", i)
				if err := w.Write(ctx, record); err != nil {
					errs <- err
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Write: %v", err)
	}

	var count int
	if err := w.db.QueryRowContext(ctx, `SELECT count(*) FROM ssh_auth`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != writers*perWriter {
		t.Errorf("count = %d, want %d", count, writers*perWriter)
	}
}

func TestDuckDBWriter_FileCreatesDirectoryAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "geoipline.duckdb")
	ctx := context.Background()

	w, err := NewDuckDBWriter(ctx, &config.DuckDBConfig{Path: path, MaxMemory: "256MB", Threads: 1}, "")
	if err != nil {
		t.Fatalf("NewDuckDBWriter: %v", err)
	}
	if err := w.Write(ctx, testRecord()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopening must not fail on the existing table.
	w2 := newTestDuckDBWriter(t, path, "")
	var count int
	if err := w2.db.QueryRowContext(ctx, `SELECT count(*) FROM ssh_auth`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("count after reopen = %d, want 1", count)
	}
}

func TestDuckDBWriter_WriteAfterClose(t *testing.T) {
	w, err := NewDuckDBWriter(context.Background(), &config.DuckDBConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 1}, "")
	if err != nil {
		t.Fatalf("NewDuckDBWriter: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	err = w.Write(context.Background(), testRecord())
	var storageErr *StorageError
	if !errors.As(err, &storageErr) || storageErr.Backend != BackendDuckDB {
		t.Errorf("error = %v, want *StorageError from duckdb", err)
	}
}

func TestDuckDBWriter_Ping(t *testing.T) {
	w := newTestDuckDBWriter(t, ":memory:", "")
	if err := w.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
	if w.Name() != "duckdb" {
		t.Errorf("Name() = %q", w.Name())
	}
}
