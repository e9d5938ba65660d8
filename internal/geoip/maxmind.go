// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package geoip

import (
	"context"
	"fmt"
	"strings"

	"github.com/oschwald/maxminddb-golang"

	"github.com/tomtom215/geoipline/internal/logging"
	"github.com/tomtom215/geoipline/internal/models"
)

// ProviderMaxMind is the Name() of MaxMindResolver.
const ProviderMaxMind = "maxmind"

// cityRecord decodes only the location of a City record. Pointers let a
// missing latitude/longitude be told apart from 0.
type cityRecord struct {
	Location struct {
		Latitude  *float64 `maxminddb:"latitude"`
		Longitude *float64 `maxminddb:"longitude"`
	} `maxminddb:"location"`
}

// MaxMindResolver looks addresses up in a local GeoLite2/GeoIP2 City database.
// The file is memory-mapped once; lookups never block on I/O.
type MaxMindResolver struct {
	reader *maxminddb.Reader
	path   string
}

// NewMaxMindResolver opens the .mmdb file at path.
func NewMaxMindResolver(path string) (*MaxMindResolver, error) {
	reader, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MaxMind database %s: %w", path, err)
	}

	logger := logging.WithComponent("geoip")
	meta := reader.Metadata
	if !strings.Contains(meta.DatabaseType, "City") {
		logger.Warn().
			Str("path", path).
			Str("database_type", meta.DatabaseType).
			Msg("MaxMind database is not a City database; lookups may have no location")
	}

	logger.Info().
		Str("path", path).
		Str("database_type", meta.DatabaseType).
		Uint("ip_version", meta.IPVersion).
		Uint("build_epoch", meta.BuildEpoch).
		Msg("MaxMind database opened")

	return &MaxMindResolver{reader: reader, path: path}, nil
}

// Name returns the provider name.
func (r *MaxMindResolver) Name() string {
	return ProviderMaxMind
}

// Resolve looks ip up in the database.
func (r *MaxMindResolver) Resolve(_ context.Context, ip string) (models.Coordinates, error) {
	addr, err := parseAddress(ip)
	if err != nil {
		return models.Coordinates{}, newResolutionError(ProviderMaxMind, ip, err)
	}

	var record cityRecord
	_, ok, err := r.reader.LookupNetwork(addr.AsSlice(), &record)
	if err != nil {
		return models.Coordinates{}, newResolutionError(ProviderMaxMind, ip,
			fmt.Errorf("database lookup: %w", err))
	}
	if !ok || record.Location.Latitude == nil || record.Location.Longitude == nil {
		return models.Coordinates{}, newResolutionError(ProviderMaxMind, ip, ErrNoLocation)
	}

	return models.Coordinates{
		Latitude:  *record.Location.Latitude,
		Longitude: *record.Location.Longitude,
	}, nil
}

// Close unmaps the database file.
func (r *MaxMindResolver) Close() error {
	return r.reader.Close()
}
