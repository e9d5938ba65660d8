// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package models

import (
	"math"
	"testing"
	"time"
)

func TestInboundEvent_IsNoMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ip   string
		want bool
	}{
		{NoMatchIP, true},
		{"203.0.113.7", false},
		{"", false},
		{"**no match**", false},
	}

	for _, tt := range tests {
		event := InboundEvent{Username: "root", IP: tt.ip, Port: "22"}
		if got := event.IsNoMatch(); got != tt.want {
			t.Errorf("IsNoMatch() for ip %q = %v, want %v", tt.ip, got, tt.want)
		}
	}
}

func TestCoordinates_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		coords Coordinates
		want   bool
	}{
		{"san francisco", Coordinates{37.7749, -122.4194}, true},
		{"origin", Coordinates{0, 0}, true},
		{"north pole", Coordinates{90, 0}, true},
		{"antimeridian", Coordinates{-33.9, 180}, true},
		{"latitude too large", Coordinates{90.0001, 0}, false},
		{"longitude too small", Coordinates{0, -180.5}, false},
		{"nan latitude", Coordinates{math.NaN(), 10}, false},
		{"infinite longitude", Coordinates{10, math.Inf(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.coords.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCoordinates_PointOrder(t *testing.T) {
	t.Parallel()

	p := Coordinates{Latitude: 48.85, Longitude: 2.35}.Point()
	if p.Lon() != 2.35 || p.Lat() != 48.85 {
		t.Errorf("Point() = %v, want lon=2.35 lat=48.85", p)
	}
}

func TestNewEnrichedRecord(t *testing.T) {
	t.Parallel()

	event := &InboundEvent{Username: "admin", IP: "198.51.100.4", Port: "40022"}
	record := NewEnrichedRecord(event, "9q8yy", "geohash")

	if record.Token != "9q8yy" || record.TokenKind != "geohash" {
		t.Errorf("token = %q/%q, want 9q8yy/geohash", record.Token, record.TokenKind)
	}
	if record.Username != "admin" || record.IP != "198.51.100.4" {
		t.Errorf("record = %+v, want username/ip copied from event", record)
	}
	if record.Success {
		t.Error("records from the auth-failure stream should have Success=false")
	}
	if !record.Time.IsZero() {
		t.Error("time should be left for the writer to assign")
	}
}

func TestEnrichedRecord_Timestamp(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return fixed }

	var unset EnrichedRecord
	if got := unset.Timestamp(now); !got.Equal(fixed) {
		t.Errorf("Timestamp() = %v, want %v", got, fixed)
	}

	preset := EnrichedRecord{Time: fixed.Add(-time.Hour)}
	if got := preset.Timestamp(now); !got.Equal(fixed.Add(-time.Hour)) {
		t.Errorf("Timestamp() = %v, want preset time", got)
	}
}
