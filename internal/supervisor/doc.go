// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

/*
Package supervisor runs geoipline's long-lived services under a suture v4
supervisor tree.

# Tree Layout

	geoipline (root)
	├── ingest-layer
	│   └── ingest-listener   TCP JSON-lines listener
	└── api-layer
	    └── ops-http          /metrics and /health

Each layer is a child supervisor with its own failure counter, so a
listener stuck in a bind-failure loop does not take /health down with it.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddIngestService(listener)
	tree.AddAPIService(services.NewHTTPServerService(opsServer, 5*time.Second))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor stopped")
	}

# Failure Handling

Suture keeps a failure counter per supervisor that decays over
FailureDecay seconds. Once it exceeds FailureThreshold, restarts are
delayed by FailureBackoff. Supervisor events are logged through
sutureslog and the zerolog slog adapter.

Services return ctx.Err() on requested shutdown and a wrapped error on
failure. A service that does not stop within ShutdownTimeout appears in
UnstoppedServiceReport.

# What Is NOT Supervised

The GeoIP resolver and the storage writer are passive: they are created
before the tree starts, shared by every connection handler, and closed by
main after the tree returns.
*/
package supervisor
