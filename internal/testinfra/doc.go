// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

//go:build integration

// Package testinfra provides test infrastructure for integration testing with containers.
//
// This package uses testcontainers-go to run the real storage backends the
// pipeline writes to, so writer tests validate the actual wire protocols
// rather than a fake.
//
// # InfluxDB Container
//
//	func TestInfluxWrite(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    influx, err := testinfra.NewInfluxDBContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, influx)
//
//	    w, err := storage.NewInfluxDBWriter(&config.InfluxDBConfig{
//	        URL:      influx.URL,
//	        Database: influx.Database,
//	    }, "")
//	    // ...
//	}
//
// # ClickHouse Container
//
// NewClickHouseContainer starts a server with a dedicated database and user
// and returns the native protocol address.
//
// # Build Tag
//
// Every file carries the integration build tag:
//
//	go test -tags integration ./internal/storage/...
//
// Tests are skipped gracefully if Docker is unavailable. The first run needs
// network access to pull images.
package testinfra
