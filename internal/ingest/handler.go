// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package ingest

import (
	"bufio"
	"context"
	"errors"
	"net"
	"time"

	"github.com/tomtom215/geoipline/internal/config"
	"github.com/tomtom215/geoipline/internal/logging"
	"github.com/tomtom215/geoipline/internal/metrics"
)

// connStats counts what happened on one connection, logged at close.
type connStats struct {
	lines   int
	written int
	skipped int
	failed  int
}

// HandleConnection reads newline-delimited events from conn until EOF, a
// read error, a fatal line or ctx cancellation, and returns the close reason
// (one of the metrics.Close* values). It does not close conn.
//
// Per line:
//   - sentinel: skipped
//   - resolve or encode failure: logged, next line
//   - decode failure: logged, next line, or close under the "close" policy
//   - write failure: logged, close
//
// A final line without a trailing newline is processed before EOF.
func (p *Pipeline) HandleConnection(ctx context.Context, conn net.Conn) string {
	logger := logging.Ctx(ctx)
	started := time.Now()
	var stats connStats

	reason := p.serveLines(ctx, conn, &stats)

	logger.Info().
		Str("reason", reason).
		Int("lines", stats.lines).
		Int("written", stats.written).
		Int("skipped", stats.skipped).
		Int("failed", stats.failed).
		Dur("duration", time.Since(started)).
		Msg("Connection closed")

	return reason
}

func (p *Pipeline) serveLines(ctx context.Context, conn net.Conn, stats *connStats) string {
	logger := logging.Ctx(ctx)

	scanner := bufio.NewScanner(conn)
	// +1 so a line of exactly maxLineBytes still fits with its newline
	scanner.Buffer(make([]byte, 0, min(4096, p.maxLineBytes+1)), p.maxLineBytes+1)

	for {
		if ctx.Err() != nil {
			return metrics.CloseShutdown
		}
		if p.readTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(p.readTimeout)); err != nil {
				logger.Warn().Err(err).Msg("Failed to set read deadline")
				return metrics.CloseReadError
			}
		}

		if !scanner.Scan() {
			return p.scanEndReason(ctx, scanner.Err())
		}

		stats.lines++
		metrics.RecordLineReceived()

		outcome, err := p.ProcessLine(ctx, scanner.Bytes())
		metrics.RecordLineOutcome(outcome)

		switch outcome {
		case metrics.OutcomeWritten:
			stats.written++

		case metrics.OutcomeSkippedSentinel:
			stats.skipped++

		case metrics.OutcomeDecodeError:
			stats.failed++
			logger.Warn().Err(err).Str("policy", p.decodePolicy).Msg("Discarding undecodable line")
			if p.decodePolicy == config.DecodePolicyClose {
				return metrics.CloseDecodeError
			}

		case metrics.OutcomeResolveError, metrics.OutcomeEncodeError:
			stats.failed++
			logger.Warn().Err(err).Str("outcome", outcome).Msg("Skipping line")

		case metrics.OutcomeWriteError:
			stats.failed++
			logger.Error().Err(err).Msg("Write failed, closing connection")
			return metrics.CloseWriteError
		}
	}
}

// scanEndReason classifies why the scanner stopped.
func (p *Pipeline) scanEndReason(ctx context.Context, err error) string {
	switch {
	case ctx.Err() != nil:
		return metrics.CloseShutdown
	case err == nil:
		return metrics.CloseEOF
	case errors.Is(err, bufio.ErrTooLong):
		logging.Ctx(ctx).Warn().Int("max_line_bytes", p.maxLineBytes).Msg("Line too long, closing connection")
		return metrics.CloseLineTooLong
	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			logging.Ctx(ctx).Info().Dur("read_timeout", p.readTimeout).Msg("Connection idle, closing")
		} else {
			logging.Ctx(ctx).Warn().Err(err).Msg("Read failed")
		}
		return metrics.CloseReadError
	}
}
