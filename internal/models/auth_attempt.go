// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package models

import (
	"math"
	"time"

	"github.com/paulmach/orb"
)

// NoMatchIP is the value the log shipper puts in the ip field when it could
// not associate the log line with an address.
const NoMatchIP = "**NO MATCH**"

// Measurement is the fixed series name every enriched record is written under.
const Measurement = "ssh-auth"

// InboundEvent is one decoded line of the inbound stream.
//
// Wire format (one object per line):
//
//	{"username":"root","ip":"203.0.113.7","port":"52144"}
type InboundEvent struct {
	Username string `json:"username" validate:"tagsafe"`
	IP       string `json:"ip" validate:"required"`
	Port     string `json:"port"`
}

// IsNoMatch reports whether the event carries the no-match sentinel.
func (e *InboundEvent) IsNoMatch() bool {
	return e.IP == NoMatchIP
}

// Coordinates is a WGS84 position produced by a GeoIP lookup.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// worldBound is the valid longitude/latitude range.
var worldBound = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// Point returns the coordinates as an orb point (longitude first).
func (c Coordinates) Point() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

// Valid reports whether the coordinates are finite and inside the world bound.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) ||
		math.IsInf(c.Latitude, 0) || math.IsInf(c.Longitude, 0) {
		return false
	}
	return worldBound.Contains(c.Point())
}

// EnrichedRecord is the persisted form of an inbound event. Records are
// written once and never updated.
type EnrichedRecord struct {
	// Time is assigned at write time when zero.
	Time time.Time

	// Token is the spatial token and TokenKind names its encoding
	// ("geohash" or "s2_cell"). TokenKind doubles as the tag key.
	Token     string
	TokenKind string

	Username string
	IP       string

	// Success is always false for records produced from the auth-failure
	// stream; it is kept so the series matches existing dashboards.
	Success bool
}

// NewEnrichedRecord builds the record for a resolved and encoded event.
func NewEnrichedRecord(event *InboundEvent, token, tokenKind string) EnrichedRecord {
	return EnrichedRecord{
		Token:     token,
		TokenKind: tokenKind,
		Username:  event.Username,
		IP:        event.IP,
	}
}

// Timestamp returns the record time, or now when unset.
func (r *EnrichedRecord) Timestamp(now func() time.Time) time.Time {
	if r.Time.IsZero() {
		return now().UTC()
	}
	return r.Time
}
