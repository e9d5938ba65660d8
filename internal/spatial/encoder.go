// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

// Package spatial turns coordinates into compact spatial tokens.
//
// Two algorithms are available and one is chosen for the whole process:
//
//   - geohash: base-32 string whose length is the precision (1 to 12)
//   - s2: S2 cell token at the given level (0 to 30); the leaf cell holding
//     the point is walked up to its ancestor at that level
//
// Both encoders are pure and safe for concurrent use. Precision is checked
// once by New; per-record failures are limited to invalid coordinates.
package spatial

import (
	"errors"
	"fmt"

	"github.com/tomtom215/geoipline/internal/models"
)

// Algorithm names accepted by New.
const (
	AlgorithmGeohash = "geohash"
	AlgorithmS2      = "s2"
)

// Token kinds. The kind is also the tag key under which the token is stored.
const (
	KindGeohash = "geohash"
	KindS2Cell  = "s2_cell"
)

var (
	// ErrInvalidCoordinates is wrapped by EncodingError for NaN, infinite or
	// out-of-range coordinates.
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrInvalidPrecision is returned by New when the precision is outside
	// the range of the selected algorithm.
	ErrInvalidPrecision = errors.New("invalid precision")

	// ErrUnknownAlgorithm is returned by New for an unrecognised algorithm name.
	ErrUnknownAlgorithm = errors.New("unknown spatial algorithm")
)

// Encoder converts coordinates into a spatial token.
type Encoder interface {
	// Encode returns the token for c, or an *EncodingError.
	Encode(c models.Coordinates) (string, error)

	// Kind returns the token kind ("geohash" or "s2_cell").
	Kind() string

	// Precision returns the configured geohash length or S2 level.
	Precision() int
}

// EncodingError reports a coordinate that could not be encoded.
type EncodingError struct {
	Kind        string
	Coordinates models.Coordinates
	Err         error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s encoding of (%g, %g) failed: %v",
		e.Kind, e.Coordinates.Latitude, e.Coordinates.Longitude, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// New returns the encoder for algorithm at the given precision.
func New(algorithm string, precision int) (Encoder, error) {
	switch algorithm {
	case AlgorithmGeohash:
		return NewGeohashEncoder(precision)
	case AlgorithmS2:
		return NewS2Encoder(precision)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
}

// checkCoordinates returns an *EncodingError if c cannot be encoded.
func checkCoordinates(kind string, c models.Coordinates) error {
	if !c.Valid() {
		return &EncodingError{Kind: kind, Coordinates: c, Err: ErrInvalidCoordinates}
	}
	return nil
}
