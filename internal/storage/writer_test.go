// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/geoipline/internal/config"
)

func TestStorageError(t *testing.T) {
	cause := errors.New("connection reset")
	err := error(&StorageError{Backend: BackendClickHouse, Op: "write", Err: cause})

	if !errors.Is(err, cause) {
		t.Error("StorageError should unwrap to the cause")
	}
	if got := err.Error(); got != "clickhouse write failed: connection reset" {
		t.Errorf("Error() = %q", got)
	}
}

func TestNew(t *testing.T) {
	t.Run("influxdb", func(t *testing.T) {
		fake := &fakeInflux{}
		server := httptest.NewServer(http.HandlerFunc(fake.handler))
		defer server.Close()

		w, err := New(context.Background(), &config.StorageConfig{
			Backend:  config.BackendInfluxDB,
			InfluxDB: config.InfluxDBConfig{URL: server.URL, Database: "auth", Timeout: time.Second},
		})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		defer w.Close()
		if w.Name() != BackendInfluxDB {
			t.Errorf("Name() = %q", w.Name())
		}
	})

	t.Run("influxdb unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := New(context.Background(), &config.StorageConfig{
			Backend:  config.BackendInfluxDB,
			InfluxDB: config.InfluxDBConfig{URL: url, Database: "auth", Timeout: time.Second},
		})
		if err == nil || !strings.Contains(err.Error(), "ping") {
			t.Errorf("New error = %v, want ping failure", err)
		}
	})

	t.Run("duckdb", func(t *testing.T) {
		w, err := New(context.Background(), &config.StorageConfig{
			Backend: config.BackendDuckDB,
			DuckDB:  config.DuckDBConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 1},
		})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		defer w.Close()
		if w.Name() != BackendDuckDB {
			t.Errorf("Name() = %q", w.Name())
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		if _, err := New(context.Background(), &config.StorageConfig{Backend: "postgres"}); err == nil {
			t.Fatal("expected error for unknown backend")
		}
	})
}

func TestClickHouseOptions(t *testing.T) {
	opts := clickHouseOptions(&config.ClickHouseConfig{
		Address:  "ch.internal:9000",
		Database: "auth",
		Username: "ingest",
		Password: "p@ss:word",
	})

	if len(opts.Addr) != 1 || opts.Addr[0] != "ch.internal:9000" {
		t.Errorf("Addr = %v", opts.Addr)
	}
	if opts.Auth.Database != "auth" || opts.Auth.Username != "ingest" || opts.Auth.Password != "p@ss:word" {
		t.Errorf("Auth = %+v", opts.Auth)
	}
}
