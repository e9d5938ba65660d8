// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package ingest

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/geoipline/internal/config"
	"github.com/tomtom215/geoipline/internal/metrics"
)

const (
	goodLine     = `{"username":"root","ip":"203.0.113.7","port":"22"}`
	sentinelLine = `{"username":"root","ip":"**NO MATCH**","port":"22"}`
	failingIP    = "198.51.100.66"
)

var unresolvableLine = `{"username":"root","ip":"` + failingIP + `","port":"22"}`

// runHandler feeds payload to HandleConnection over net.Pipe, then closes the
// client side, and returns the close reason.
func runHandler(t *testing.T, p *Pipeline, payload string) string {
	t.Helper()

	server, client := net.Pipe()
	defer server.Close()

	go func() {
		defer client.Close()
		// Write fails once the handler stops reading and closes its end.
		_, _ = client.Write([]byte(payload))
	}()

	done := make(chan string, 1)
	go func() {
		reason := p.HandleConnection(context.Background(), server)
		server.Close()
		done <- reason
	}()

	select {
	case reason := <-done:
		return reason
	case <-time.After(5 * time.Second):
		t.Fatal("handler did not return")
		return ""
	}
}

func TestHandleConnection(t *testing.T) {
	tests := []struct {
		name         string
		payload      string
		policy       string
		writerFailAt int
		wantReason   string
		wantWrites   int
	}{
		{
			name:         "every resolvable line is written",
			payload:      goodLine + "\n" + goodLine + "\n" + goodLine + "\n",
			writerFailAt: -1,
			wantReason:   metrics.CloseEOF,
			wantWrites:   3,
		},
		{
			name:         "trailing line without newline is processed",
			payload:      goodLine + "\n" + goodLine,
			writerFailAt: -1,
			wantReason:   metrics.CloseEOF,
			wantWrites:   2,
		},
		{
			name:         "CRLF framing",
			payload:      goodLine + "\r\n" + goodLine + "\r\n",
			writerFailAt: -1,
			wantReason:   metrics.CloseEOF,
			wantWrites:   2,
		},
		{
			name:         "sentinel writes nothing",
			payload:      sentinelLine + "\n" + goodLine + "\n",
			writerFailAt: -1,
			wantReason:   metrics.CloseEOF,
			wantWrites:   1,
		},
		{
			name:         "resolver failure keeps the connection open",
			payload:      unresolvableLine + "\n" + goodLine + "\n",
			writerFailAt: -1,
			wantReason:   metrics.CloseEOF,
			wantWrites:   1,
		},
		{
			name:         "decode failure is skipped by default",
			payload:      "not json\n" + goodLine + "\n",
			writerFailAt: -1,
			wantReason:   metrics.CloseEOF,
			wantWrites:   1,
		},
		{
			name:         "decode failure closes under close policy",
			payload:      "not json\n" + goodLine + "\n",
			policy:       config.DecodePolicyClose,
			writerFailAt: -1,
			wantReason:   metrics.CloseDecodeError,
			wantWrites:   0,
		},
		{
			name:         "writer failure closes the connection",
			payload:      goodLine + "\n" + goodLine + "\n" + goodLine + "\n",
			writerFailAt: 1,
			wantReason:   metrics.CloseWriteError,
			wantWrites:   1,
		},
		{
			name:         "empty stream",
			payload:      "",
			writerFailAt: -1,
			wantReason:   metrics.CloseEOF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := newFakeWriter()
			writer.failAfter = tt.writerFailAt
			resolver := &fakeResolver{coords: sanFrancisco, fail: map[string]bool{failingIP: true}}
			p := newTestPipeline(t, resolver, writer, func(cfg *PipelineConfig) {
				cfg.DecodePolicy = tt.policy
			})

			reason := runHandler(t, p, tt.payload)

			if reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", reason, tt.wantReason)
			}
			if got := len(writer.Records()); got != tt.wantWrites {
				t.Errorf("writes = %d, want %d", got, tt.wantWrites)
			}
		})
	}
}

func TestHandleConnection_WriterFailureStopsProcessing(t *testing.T) {
	writer := newFakeWriter()
	writer.failAfter = 0
	p := newTestPipeline(t, &fakeResolver{coords: sanFrancisco}, writer, nil)

	reason := runHandler(t, p, strings.Repeat(goodLine+"\n", 5))

	if reason != metrics.CloseWriteError {
		t.Errorf("reason = %q, want %q", reason, metrics.CloseWriteError)
	}
	if writer.Attempts() != 1 {
		t.Errorf("write attempts = %d, want 1 (no retries, no further lines)", writer.Attempts())
	}
}

func TestHandleConnection_LineTooLong(t *testing.T) {
	writer := newFakeWriter()
	p := newTestPipeline(t, &fakeResolver{coords: sanFrancisco}, writer, func(cfg *PipelineConfig) {
		cfg.MaxLineBytes = 64
	})

	long := `{"username":"` + strings.Repeat("a", 200) + `","ip":"203.0.113.7","port":"22"}`
	reason := runHandler(t, p, goodLine+"\n"+long+"\n"+goodLine+"\n")

	if reason != metrics.CloseLineTooLong {
		t.Errorf("reason = %q, want %q", reason, metrics.CloseLineTooLong)
	}
	if got := len(writer.Records()); got != 1 {
		t.Errorf("writes = %d, want 1 (only the line before the long one)", got)
	}
}

func TestHandleConnection_LineAtLimit(t *testing.T) {
	writer := newFakeWriter()
	p := newTestPipeline(t, &fakeResolver{coords: sanFrancisco}, writer, func(cfg *PipelineConfig) {
		cfg.MaxLineBytes = len(goodLine)
	})

	if reason := runHandler(t, p, goodLine+"\n"); reason != metrics.CloseEOF {
		t.Errorf("reason = %q, want %q", reason, metrics.CloseEOF)
	}
	if got := len(writer.Records()); got != 1 {
		t.Errorf("writes = %d, want 1", got)
	}
}

func TestHandleConnection_ReadTimeout(t *testing.T) {
	p := newTestPipeline(t, &fakeResolver{coords: sanFrancisco}, newFakeWriter(), func(cfg *PipelineConfig) {
		cfg.ReadTimeout = 50 * time.Millisecond
	})

	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	start := time.Now()
	reason := p.HandleConnection(context.Background(), server)

	if reason != metrics.CloseReadError {
		t.Errorf("reason = %q, want %q", reason, metrics.CloseReadError)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("idle connection held for %v", elapsed)
	}
}

func TestHandleConnection_Shutdown(t *testing.T) {
	p := newTestPipeline(t, &fakeResolver{coords: sanFrancisco}, newFakeWriter(), nil)

	server, client := net.Pipe()
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan string, 1)
	go func() {
		done <- p.HandleConnection(ctx, server)
	}()

	// The listener cancels the context and closes the connection.
	cancel()
	server.Close()

	select {
	case reason := <-done:
		if reason != metrics.CloseShutdown {
			t.Errorf("reason = %q, want %q", reason, metrics.CloseShutdown)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not stop on shutdown")
	}
}

func TestHandleConnection_Metrics(t *testing.T) {
	p := newTestPipeline(t, &fakeResolver{coords: sanFrancisco}, newFakeWriter(), nil)

	received := testutil.ToFloat64(metrics.IngestLinesReceived)
	written := testutil.ToFloat64(metrics.IngestLinesProcessed.WithLabelValues(metrics.OutcomeWritten))
	skipped := testutil.ToFloat64(metrics.IngestLinesProcessed.WithLabelValues(metrics.OutcomeSkippedSentinel))

	runHandler(t, p, goodLine+"\n"+sentinelLine+"\n"+goodLine+"\n")

	if got := testutil.ToFloat64(metrics.IngestLinesReceived) - received; got != 3 {
		t.Errorf("lines received delta = %v, want 3", got)
	}
	if got := testutil.ToFloat64(metrics.IngestLinesProcessed.WithLabelValues(metrics.OutcomeWritten)) - written; got != 2 {
		t.Errorf("written delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.IngestLinesProcessed.WithLabelValues(metrics.OutcomeSkippedSentinel)) - skipped; got != 1 {
		t.Errorf("skipped delta = %v, want 1", got)
	}
}
