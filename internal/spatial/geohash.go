// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package spatial

import (
	"fmt"

	"github.com/mmcloughlin/geohash"

	"github.com/tomtom215/geoipline/internal/models"
)

// Geohash precision bounds. 12 characters is about 3.7cm x 1.9cm and is the
// most a float64 coordinate can meaningfully fill.
const (
	MinGeohashPrecision = 1
	MaxGeohashPrecision = 12
)

// GeohashEncoder encodes coordinates as base-32 geohash strings.
type GeohashEncoder struct {
	precision uint
}

// NewGeohashEncoder returns an encoder producing strings of exactly
// precision characters.
func NewGeohashEncoder(precision int) (*GeohashEncoder, error) {
	if precision < MinGeohashPrecision || precision > MaxGeohashPrecision {
		return nil, fmt.Errorf("%w: geohash precision must be between %d and %d, got %d",
			ErrInvalidPrecision, MinGeohashPrecision, MaxGeohashPrecision, precision)
	}
	return &GeohashEncoder{precision: uint(precision)}, nil
}

// Encode returns the geohash of c.
func (e *GeohashEncoder) Encode(c models.Coordinates) (string, error) {
	if err := checkCoordinates(KindGeohash, c); err != nil {
		return "", err
	}
	return geohash.EncodeWithPrecision(c.Latitude, c.Longitude, e.precision), nil
}

// Kind returns "geohash".
func (e *GeohashEncoder) Kind() string { return KindGeohash }

// Precision returns the output length.
func (e *GeohashEncoder) Precision() int { return int(e.precision) }
