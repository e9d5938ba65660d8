// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

//go:build integration

package testinfra

import (
	"context"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultClickHouseImage is the ClickHouse server image.
	DefaultClickHouseImage = "clickhouse/clickhouse-server:24.3-alpine"

	// DefaultClickHouseNativePort is the native protocol port.
	DefaultClickHouseNativePort = "9000"

	// clickHouseHTTPPort serves /ping for the readiness check.
	clickHouseHTTPPort = "8123"
)

// ClickHouseContainer represents a running ClickHouse container.
type ClickHouseContainer struct {
	testcontainers.Container
	Address  string // host:port of the native protocol
	Database string
	Username string
	Password string
}

// NewClickHouseContainer creates and starts a ClickHouse container with a
// dedicated database and user.
func NewClickHouseContainer(ctx context.Context) (*ClickHouseContainer, error) {
	const (
		database = "auth"
		username = "ingest"
		password = "ingest-password"
	)

	container, hostPort, err := startContainer(ctx, containerSpec{
		image: DefaultClickHouseImage,
		port:  DefaultClickHouseNativePort,
		env: map[string]string{
			"CLICKHOUSE_DB":       database,
			"CLICKHOUSE_USER":     username,
			"CLICKHOUSE_PASSWORD": password,
		},
		waitFor: wait.ForAll(
			wait.ForListeningPort(DefaultClickHouseNativePort+"/tcp"),
			wait.ForHTTP("/ping").WithPort(clickHouseHTTPPort+"/tcp"),
		),
		startTimeout: 90 * time.Second,
	}, clickHouseHTTPPort+"/tcp")
	if err != nil {
		return nil, err
	}

	return &ClickHouseContainer{
		Container: container,
		Address:   hostPort,
		Database:  database,
		Username:  username,
		Password:  password,
	}, nil
}
