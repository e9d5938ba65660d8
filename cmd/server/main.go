// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/geoipline/internal/api"
	"github.com/tomtom215/geoipline/internal/config"
	"github.com/tomtom215/geoipline/internal/geoip"
	"github.com/tomtom215/geoipline/internal/ingest"
	"github.com/tomtom215/geoipline/internal/logging"
	"github.com/tomtom215/geoipline/internal/spatial"
	"github.com/tomtom215/geoipline/internal/storage"
	"github.com/tomtom215/geoipline/internal/supervisor"
	"github.com/tomtom215/geoipline/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// opsShutdownTimeout bounds draining of in-flight scrapes.
const opsShutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		config.Usage(os.Stdout)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "geoipline: %v\n", err)
		config.Usage(os.Stderr)
		os.Exit(2)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		stop()
		logging.Fatal().Err(err).Msg("geoipline stopped with error")
	}
}

// run builds the pipeline, serves until ctx is canceled and releases the
// shared resolver and writer afterwards.
func run(ctx context.Context, cfg *config.Config) error {
	logging.Info().
		Str("version", version).
		Str("listen", cfg.Ingest.ListenAddress).
		Str("geoip_provider", cfg.GeoIP.Provider).
		Str("spatial_algorithm", cfg.Spatial.Algorithm).
		Int("precision", cfg.Spatial.Precision).
		Str("storage_backend", cfg.Storage.Backend).
		Str("retention_policy", cfg.Storage.RetentionPolicy).
		Msg("Starting geoipline")

	encoder, err := spatial.New(cfg.Spatial.Algorithm, cfg.Spatial.Precision)
	if err != nil {
		return fmt.Errorf("failed to create spatial encoder: %w", err)
	}
	logging.Info().
		Str("kind", encoder.Kind()).
		Int("precision", encoder.Precision()).
		Msg("Spatial encoder ready")

	resolver, err := geoip.New(&cfg.GeoIP)
	if err != nil {
		return fmt.Errorf("failed to create geoip resolver: %w", err)
	}
	defer func() {
		if err := resolver.Close(); err != nil {
			logging.Error().Err(err).Str("provider", resolver.Name()).Msg("Error closing geoip resolver")
		}
	}()

	writer, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			logging.Error().Err(err).Str("backend", writer.Name()).Msg("Error closing storage writer")
		}
	}()

	pipeline, err := ingest.NewPipeline(ingest.PipelineConfig{
		Resolver:     resolver,
		Encoder:      encoder,
		Writer:       writer,
		DecodePolicy: cfg.Ingest.DecodePolicy,
		MaxLineBytes: cfg.Ingest.MaxLineBytes,
		ReadTimeout:  cfg.Ingest.ReadTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	listener := ingest.NewListener(&cfg.Ingest, pipeline)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Ingest.ShutdownTimeout + time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}

	tree.AddIngestService(listener)
	if cached, ok := resolver.(*geoip.CachingResolver); ok {
		tree.AddIngestService(cached)
	}

	if cfg.Metrics.Enabled {
		handler := api.NewHandler(api.HandlerConfig{
			Storage:  writer,
			Resolver: resolver,
			Ingest:   listener,
			Version:  version,
		})
		server := &http.Server{
			Addr:              cfg.Metrics.ListenAddress,
			Handler:           api.NewRouter(handler),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		tree.AddAPIService(services.NewHTTPServerService(server, opsShutdownTimeout))
		logging.Info().Str("addr", server.Addr).Msg("Operational endpoint enabled")
	}

	// Serve returns once every service has stopped or ShutdownTimeout expired.
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
	}
	logging.Info().Msg("Services stopped")

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("geoipline stopped")
	return nil
}
