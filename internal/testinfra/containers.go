// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SkipIfNoDocker skips the test if Docker is not available.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	if !IsDockerAvailable() {
		t.Skip("Skipping test: Docker not available")
	}
}

// IsDockerAvailable checks if Docker daemon is running and accessible.
func IsDockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "docker", "info")
	return cmd.Run() == nil
}

// CleanupContainer is a helper for deferred container cleanup that logs errors.
func CleanupContainer(t *testing.T, ctx context.Context, container testcontainers.Container) {
	t.Helper()

	if container != nil {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	}
}

// containerSpec is what each backend container needs to start.
type containerSpec struct {
	image        string
	port         string // container port whose host mapping is returned
	env          map[string]string
	waitFor      wait.Strategy
	startTimeout time.Duration
}

// startContainer starts spec and returns the container and the host:port
// mapped to spec.port.
func startContainer(ctx context.Context, spec containerSpec, extraPorts ...string) (testcontainers.Container, string, error) {
	req := testcontainers.ContainerRequest{
		Image:        spec.image,
		ExposedPorts: append([]string{spec.port + "/tcp"}, extraPorts...),
		Env:          spec.env,
		WaitingFor:   spec.waitFor,
	}
	if spec.startTimeout > 0 {
		req.WaitingFor = wait.ForAll(spec.waitFor).WithStartupTimeout(spec.startTimeout)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("create %s container: %w", spec.image, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, "", fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, spec.port)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, "", fmt.Errorf("get mapped port: %w", err)
	}

	return container, fmt.Sprintf("%s:%s", host, port.Port()), nil
}
