// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package spatial

import (
	"fmt"

	"github.com/golang/geo/s2"

	"github.com/tomtom215/geoipline/internal/models"
)

// S2 level bounds. Level 30 is the leaf level.
const (
	MinS2Level = 0
	MaxS2Level = s2.MaxLevel
)

// S2Encoder encodes coordinates as S2 cell tokens at a fixed level.
type S2Encoder struct {
	level int
}

// NewS2Encoder returns an encoder for cells at the given level.
func NewS2Encoder(level int) (*S2Encoder, error) {
	if level < MinS2Level || level > MaxS2Level {
		return nil, fmt.Errorf("%w: s2 level must be between %d and %d, got %d",
			ErrInvalidPrecision, MinS2Level, MaxS2Level, level)
	}
	return &S2Encoder{level: level}, nil
}

// Encode returns the token of the level-N ancestor of the leaf cell
// containing c.
func (e *S2Encoder) Encode(c models.Coordinates) (string, error) {
	if err := checkCoordinates(KindS2Cell, c); err != nil {
		return "", err
	}
	return e.CellID(c).ToToken(), nil
}

// CellID returns the cell at the encoder's level containing c. c must be valid.
func (e *S2Encoder) CellID(c models.Coordinates) s2.CellID {
	leaf := s2.CellIDFromLatLng(s2.LatLngFromDegrees(c.Latitude, c.Longitude))
	if leaf.Level() > e.level {
		return leaf.Parent(e.level)
	}
	return leaf
}

// Kind returns "s2_cell".
func (e *S2Encoder) Kind() string { return KindS2Cell }

// Precision returns the cell level.
func (e *S2Encoder) Precision() int { return e.level }
