// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/geoipline/internal/config"
	"github.com/tomtom215/geoipline/internal/models"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testRecord() models.EnrichedRecord {
	return models.EnrichedRecord{
		Token:     "9q8yy",
		TokenKind: "geohash",
		Username:  "root",
		IP:        "203.0.113.7",
	}
}

// fakeInflux records /write requests and answers /ping.
type fakeInflux struct {
	mu          sync.Mutex
	writes      []string
	queries     []map[string]string
	writeStatus int
}

func (f *fakeInflux) handler(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/ping":
		w.Header().Set("X-Influxdb-Version", "1.8.10")
		w.WriteHeader(http.StatusNoContent)
	case "/write":
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.writes = append(f.writes, string(body))
		f.queries = append(f.queries, map[string]string{
			"db": r.URL.Query().Get("db"),
			"rp": r.URL.Query().Get("rp"),
		})
		status := f.writeStatus
		f.mu.Unlock()

		if status == 0 {
			status = http.StatusNoContent
		}
		if status != http.StatusNoContent {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"database not found: \"auth\""}`))
			return
		}
		w.WriteHeader(status)
	default:
		http.NotFound(w, r)
	}
}

// snapshot returns copies of the recorded write bodies and query params.
func (f *fakeInflux) snapshot() ([]string, []map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...), append([]map[string]string(nil), f.queries...)
}

func newTestInfluxWriter(t *testing.T, fake *fakeInflux, retentionPolicy string) *InfluxDBWriter {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(fake.handler))
	t.Cleanup(server.Close)

	w, err := NewInfluxDBWriter(&config.InfluxDBConfig{
		URL:      server.URL,
		Database: "auth",
		Timeout:  2 * time.Second,
	}, retentionPolicy)
	if err != nil {
		t.Fatalf("NewInfluxDBWriter: %v", err)
	}
	w.now = func() time.Time { return testTime }
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestInfluxDBWriter_Write(t *testing.T) {
	fake := &fakeInflux{}
	w := newTestInfluxWriter(t, fake, "one_week")

	if err := w.Write(context.Background(), testRecord()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	writes, queries := fake.snapshot()
	if len(writes) != 1 {
		t.Fatalf("got %d writes, want 1", len(writes))
	}
	if queries[0]["db"] != "auth" || queries[0]["rp"] != "one_week" {
		t.Errorf("query params = %v, want db=auth rp=one_week", queries[0])
	}

	line := strings.TrimSpace(writes[0])
	wants := []string{
		"ssh-auth,",
		"geohash=9q8yy",
		"username=root",
		`ip="203.0.113.7"`,
		"success=false",
		strconv.FormatInt(testTime.UnixNano(), 10),
	}
	for _, want := range wants {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "s2_cell") {
		t.Errorf("line %q has the wrong tag key", line)
	}
}

func TestInfluxDBWriter_WriteS2TagKey(t *testing.T) {
	fake := &fakeInflux{}
	w := newTestInfluxWriter(t, fake, "")

	record := testRecord()
	record.TokenKind = "s2_cell"
	record.Token = "89c25"

	if err := w.Write(context.Background(), record); err != nil {
		t.Fatalf("Write: %v", err)
	}
	writes, queries := fake.snapshot()
	if !strings.Contains(writes[0], "s2_cell=89c25") {
		t.Errorf("line %q missing s2_cell tag", writes[0])
	}
	if queries[0]["rp"] != "" {
		t.Errorf("rp = %q, want empty", queries[0]["rp"])
	}
}

func TestInfluxDBWriter_KeepsPresetTime(t *testing.T) {
	fake := &fakeInflux{}
	w := newTestInfluxWriter(t, fake, "")

	record := testRecord()
	record.Time = testTime.Add(-time.Hour)

	if err := w.Write(context.Background(), record); err != nil {
		t.Fatalf("Write: %v", err)
	}
	writes, _ := fake.snapshot()
	if !strings.HasSuffix(strings.TrimSpace(writes[0]), strconv.FormatInt(record.Time.UnixNano(), 10)) {
		t.Errorf("line %q does not end with the preset timestamp", writes[0])
	}
}

func TestInfluxDBWriter_RejectsUnsafeTags(t *testing.T) {
	tests := []struct {
		name     string
		username string
	}{
		{"newline starts a second point", "ro ot,=x\nnext"},
		{"carriage return", "root\r"},
		{"invalid UTF-8", "bad\xff\xfe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeInflux{}
			w := newTestInfluxWriter(t, fake, "")

			record := testRecord()
			record.Username = tt.username

			err := w.Write(context.Background(), record)
			if !errors.Is(err, ErrUnsafeTag) {
				t.Fatalf("Write() error = %v, want ErrUnsafeTag", err)
			}
			if writes, _ := fake.snapshot(); len(writes) != 0 {
				t.Errorf("server received %q, want no request", writes)
			}
		})
	}
}

func TestInfluxDBWriter_EscapesTagSeparators(t *testing.T) {
	fake := &fakeInflux{}
	w := newTestInfluxWriter(t, fake, "")

	record := testRecord()
	record.Username = "ro ot,=x"

	if err := w.Write(context.Background(), record); err != nil {
		t.Fatalf("Write: %v", err)
	}
	writes, _ := fake.snapshot()
	body := strings.TrimSuffix(writes[0], "\n")
	if strings.Count(body, "\n") != 0 {
		t.Fatalf("body %q holds more than one line", writes[0])
	}
	if !strings.Contains(body, `username=ro\ ot\,\=x`) {
		t.Errorf("line %q missing escaped username", body)
	}
}

func TestInfluxDBWriter_WriteError(t *testing.T) {
	fake := &fakeInflux{writeStatus: http.StatusNotFound}
	w := newTestInfluxWriter(t, fake, "")

	err := w.Write(context.Background(), testRecord())
	if err == nil {
		t.Fatal("expected error")
	}

	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("error type = %T, want *StorageError", err)
	}
	if storageErr.Backend != BackendInfluxDB || storageErr.Op != "write" {
		t.Errorf("StorageError = %+v", storageErr)
	}
}

func TestInfluxDBWriter_Ping(t *testing.T) {
	fake := &fakeInflux{}
	w := newTestInfluxWriter(t, fake, "")

	if err := w.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestInfluxDBWriter_PingUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	w, err := NewInfluxDBWriter(&config.InfluxDBConfig{URL: url, Database: "auth", Timeout: time.Second}, "")
	if err != nil {
		t.Fatalf("NewInfluxDBWriter: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	var storageErr *StorageError
	if err := w.Ping(ctx); !errors.As(err, &storageErr) || storageErr.Op != "ping" {
		t.Errorf("Ping error = %v, want *StorageError op=ping", err)
	}
}

func TestNewInfluxDBWriter_BadURL(t *testing.T) {
	_, err := NewInfluxDBWriter(&config.InfluxDBConfig{URL: "ftp://influx:8086"}, "")
	if err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}
