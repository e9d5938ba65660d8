// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

//go:build integration

package testinfra

import (
	"context"
	"net/http"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultInfluxDBImage is the last InfluxDB 1.x line, which serves the
	// /write and /query API without tokens.
	DefaultInfluxDBImage = "influxdb:1.8"

	// DefaultInfluxDBPort is the HTTP API port.
	DefaultInfluxDBPort = "8086"

	// DefaultInfluxDBDatabase is created on first start.
	DefaultInfluxDBDatabase = "auth"
)

// InfluxDBContainer represents a running InfluxDB 1.x container.
type InfluxDBContainer struct {
	testcontainers.Container
	URL      string
	Database string
}

// InfluxDBOption configures the InfluxDB container.
type InfluxDBOption func(*influxDBConfig)

type influxDBConfig struct {
	image        string
	database     string
	startTimeout time.Duration
}

// WithInfluxDBDatabase sets the database created at startup.
func WithInfluxDBDatabase(database string) InfluxDBOption {
	return func(c *influxDBConfig) {
		c.database = database
	}
}

// NewInfluxDBContainer creates and starts an InfluxDB container.
//
//	influx, err := testinfra.NewInfluxDBContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer testinfra.CleanupContainer(t, ctx, influx)
func NewInfluxDBContainer(ctx context.Context, opts ...InfluxDBOption) (*InfluxDBContainer, error) {
	cfg := &influxDBConfig{
		image:        DefaultInfluxDBImage,
		database:     DefaultInfluxDBDatabase,
		startTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	container, hostPort, err := startContainer(ctx, containerSpec{
		image: cfg.image,
		port:  DefaultInfluxDBPort,
		env: map[string]string{
			"INFLUXDB_DB":                 cfg.database,
			"INFLUXDB_HTTP_AUTH_ENABLED":  "false",
			"INFLUXDB_REPORTING_DISABLED": "true",
		},
		waitFor: wait.ForHTTP("/ping").
			WithPort(DefaultInfluxDBPort + "/tcp").
			WithStatusCodeMatcher(func(status int) bool { return status == http.StatusNoContent }),
		startTimeout: cfg.startTimeout,
	})
	if err != nil {
		return nil, err
	}

	return &InfluxDBContainer{
		Container: container,
		URL:       "http://" + hostPort,
		Database:  cfg.database,
	}, nil
}
