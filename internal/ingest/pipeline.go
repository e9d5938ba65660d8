// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/tomtom215/geoipline/internal/config"
	"github.com/tomtom215/geoipline/internal/geoip"
	"github.com/tomtom215/geoipline/internal/metrics"
	"github.com/tomtom215/geoipline/internal/models"
	"github.com/tomtom215/geoipline/internal/spatial"
	"github.com/tomtom215/geoipline/internal/storage"
	"github.com/tomtom215/geoipline/internal/validation"
)

// ErrDecode is wrapped by every error for a line that is not a valid event.
var ErrDecode = errors.New("invalid event")

// Pipeline holds everything a connection handler needs. It is built once at
// startup and shared read-only by all handlers.
type Pipeline struct {
	resolver     geoip.Resolver
	encoder      spatial.Encoder
	writer       storage.Writer
	decodePolicy string
	maxLineBytes int
	readTimeout  time.Duration
}

// PipelineConfig configures NewPipeline.
type PipelineConfig struct {
	Resolver geoip.Resolver
	Encoder  spatial.Encoder
	Writer   storage.Writer

	// DecodePolicy is config.DecodePolicySkip (default) or config.DecodePolicyClose.
	DecodePolicy string

	// MaxLineBytes bounds a line, newline excluded. Default: 64 KiB.
	MaxLineBytes int

	// ReadTimeout is the idle deadline per read; zero disables it.
	ReadTimeout time.Duration
}

// DefaultMaxLineBytes is used when PipelineConfig.MaxLineBytes is zero.
const DefaultMaxLineBytes = 64 * 1024

// NewPipeline validates cfg and returns the shared pipeline.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if cfg.Resolver == nil || cfg.Encoder == nil || cfg.Writer == nil {
		return nil, errors.New("pipeline requires a resolver, an encoder and a writer")
	}

	switch cfg.DecodePolicy {
	case "":
		cfg.DecodePolicy = config.DecodePolicySkip
	case config.DecodePolicySkip, config.DecodePolicyClose:
	default:
		return nil, fmt.Errorf("unknown decode policy %q", cfg.DecodePolicy)
	}

	if cfg.MaxLineBytes <= 0 {
		cfg.MaxLineBytes = DefaultMaxLineBytes
	}

	return &Pipeline{
		resolver:     cfg.Resolver,
		encoder:      cfg.Encoder,
		writer:       cfg.Writer,
		decodePolicy: cfg.DecodePolicy,
		maxLineBytes: cfg.MaxLineBytes,
		readTimeout:  cfg.ReadTimeout,
	}, nil
}

// ProcessLine runs one framed line through decode, resolve, encode and
// write. The returned outcome is one of the metrics.Outcome* values; err is
// non-nil for every outcome except written and skipped_sentinel.
func (p *Pipeline) ProcessLine(ctx context.Context, line []byte) (string, error) {
	event, err := decodeEvent(line)
	if err != nil {
		return metrics.OutcomeDecodeError, err
	}

	if event.IsNoMatch() {
		return metrics.OutcomeSkippedSentinel, nil
	}

	start := time.Now()
	coords, err := p.resolver.Resolve(ctx, event.IP)
	metrics.RecordResolve(p.resolver.Name(), time.Since(start), err)
	if err != nil {
		return metrics.OutcomeResolveError, err
	}

	token, err := p.encoder.Encode(coords)
	if err != nil {
		return metrics.OutcomeEncodeError, err
	}

	record := models.NewEnrichedRecord(event, token, p.encoder.Kind())

	start = time.Now()
	err = p.writer.Write(ctx, record)
	metrics.RecordWrite(p.writer.Name(), time.Since(start), err)
	if err != nil {
		return metrics.OutcomeWriteError, err
	}

	return metrics.OutcomeWritten, nil
}

// decodeEvent parses one line. Surrounding whitespace (including a CR from
// CRLF framing) is ignored. Unknown fields are ignored. Usernames with
// control characters are rejected because they become storage tags.
func decodeEvent(line []byte) (*models.InboundEvent, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, fmt.Errorf("%w: empty line", ErrDecode)
	}

	if !utf8.Valid(line) {
		return nil, fmt.Errorf("%w: line is not valid UTF-8", ErrDecode)
	}

	var event models.InboundEvent
	if err := json.Unmarshal(line, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if verr := validation.ValidateStruct(&event); verr != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, verr)
	}

	return &event, nil
}
