// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package ingest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/geoipline/internal/geoip"
	"github.com/tomtom215/geoipline/internal/models"
	"github.com/tomtom215/geoipline/internal/spatial"
	"github.com/tomtom215/geoipline/internal/storage"
)

// sanFrancisco encodes to "9q8yy" at geohash precision 5.
var sanFrancisco = models.Coordinates{Latitude: 37.7749, Longitude: -122.4194}

// fakeResolver returns fixed coordinates, or an error for IPs in fail.
type fakeResolver struct {
	coords models.Coordinates
	fail   map[string]bool
	calls  atomic.Int32
}

func (r *fakeResolver) Resolve(_ context.Context, ip string) (models.Coordinates, error) {
	r.calls.Add(1)
	if r.fail[ip] {
		return models.Coordinates{}, &geoip.ResolutionError{Provider: "fake", IP: ip, Err: geoip.ErrNoLocation}
	}
	return r.coords, nil
}

func (r *fakeResolver) Name() string { return "fake" }
func (r *fakeResolver) Close() error { return nil }

// fakeWriter records writes. failAfter >= 0 makes every write after that
// many successes fail.
type fakeWriter struct {
	mu        sync.Mutex
	records   []models.EnrichedRecord
	failAfter int
	attempts  int
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{failAfter: -1}
}

var errWriteFailed = errors.New("backend unavailable")

func (w *fakeWriter) Write(_ context.Context, record models.EnrichedRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.attempts++
	if w.failAfter >= 0 && len(w.records) >= w.failAfter {
		return &storage.StorageError{Backend: "fake", Op: "write", Err: errWriteFailed}
	}
	w.records = append(w.records, record)
	return nil
}

func (w *fakeWriter) Ping(context.Context) error { return nil }
func (w *fakeWriter) Name() string               { return "fake" }
func (w *fakeWriter) Close() error               { return nil }

func (w *fakeWriter) Records() []models.EnrichedRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.EnrichedRecord(nil), w.records...)
}

func (w *fakeWriter) Attempts() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.attempts
}

// waitForRecords polls until w holds n records or the timeout passes.
func waitForRecords(t *testing.T, w *fakeWriter, n int, timeout time.Duration) []models.EnrichedRecord {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		records := w.Records()
		if len(records) >= n {
			return records
		}
		if time.Now().After(deadline) {
			t.Fatalf("got %d records after %v, want %d", len(records), timeout, n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func newTestPipeline(t *testing.T, resolver geoip.Resolver, writer storage.Writer, mutate func(*PipelineConfig)) *Pipeline {
	t.Helper()

	encoder, err := spatial.NewGeohashEncoder(5)
	if err != nil {
		t.Fatal(err)
	}

	cfg := PipelineConfig{
		Resolver: resolver,
		Encoder:  encoder,
		Writer:   writer,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	p, err := NewPipeline(cfg)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}
