// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package config

import (
	"fmt"

	"github.com/tomtom215/geoipline/internal/logging"
	"github.com/tomtom215/geoipline/internal/spatial"
	"github.com/tomtom215/geoipline/internal/validation"
)

// Validate checks that required configuration is present and valid.
// Struct tags cover enumerations and simple bounds; the methods below cover
// rules that depend on which provider, algorithm or backend is selected.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a recognized log level", c.Logging.Level)
	}

	if err := c.validateIngest(); err != nil {
		return err
	}

	if err := c.validateGeoIP(); err != nil {
		return err
	}

	if err := c.validateSpatial(); err != nil {
		return err
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	return c.validateMetrics()
}

// validateIngest validates listener timeouts
func (c *Config) validateIngest() error {
	if c.Ingest.ReadTimeout < 0 {
		return fmt.Errorf("INGEST_READ_TIMEOUT must not be negative")
	}
	if c.Ingest.ShutdownTimeout < 0 {
		return fmt.Errorf("INGEST_SHUTDOWN_TIMEOUT must not be negative")
	}
	return nil
}

// validateGeoIP validates the settings of the selected provider
func (c *Config) validateGeoIP() error {
	switch c.GeoIP.Provider {
	case ProviderMaxMind:
		if c.GeoIP.MaxMindDBPath == "" {
			return fmt.Errorf("MAXMIND_DB_PATH is required when GEOIP_PROVIDER=maxmind")
		}
	case ProviderIPStack:
		return c.validateIPStack()
	}
	return nil
}

// validateIPStack validates the remote API client settings
func (c *Config) validateIPStack() error {
	if c.GeoIP.IPStack.AccessKey == "" {
		return fmt.Errorf("IPSTACK_ACCESS_KEY is required when GEOIP_PROVIDER=ipstack")
	}
	if err := validateBaseURL(c.GeoIP.IPStack.BaseURL, "IPSTACK_BASE_URL"); err != nil {
		return err
	}
	if c.GeoIP.IPStack.Timeout <= 0 {
		return fmt.Errorf("IPSTACK_TIMEOUT must be positive")
	}
	if c.GeoIP.IPStack.BreakerTimeout <= 0 {
		return fmt.Errorf("IPSTACK_BREAKER_TIMEOUT must be positive")
	}
	if c.GeoIP.CacheSize > 0 && c.GeoIP.CacheTTL <= 0 {
		return fmt.Errorf("GEOIP_CACHE_TTL must be positive when GEOIP_CACHE_SIZE > 0")
	}
	return nil
}

// validateSpatial validates the precision against the selected algorithm
func (c *Config) validateSpatial() error {
	p := c.Spatial.Precision

	switch c.Spatial.Algorithm {
	case AlgorithmGeohash:
		if p < spatial.MinGeohashPrecision || p > spatial.MaxGeohashPrecision {
			return fmt.Errorf("SPATIAL_PRECISION must be between %d and %d for geohash, got %d",
				spatial.MinGeohashPrecision, spatial.MaxGeohashPrecision, p)
		}
	case AlgorithmS2:
		if p < spatial.MinS2Level || p > spatial.MaxS2Level {
			return fmt.Errorf("SPATIAL_PRECISION must be between %d and %d for s2, got %d",
				spatial.MinS2Level, spatial.MaxS2Level, p)
		}
	}
	return nil
}

// validateStorage validates the settings of the selected backend
func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case BackendInfluxDB:
		return c.validateInfluxDB()
	case BackendDuckDB:
		if c.Storage.DuckDB.Path == "" {
			return fmt.Errorf("DUCKDB_PATH is required when STORAGE_BACKEND=duckdb")
		}
	case BackendClickHouse:
		if c.Storage.ClickHouse.Address == "" {
			return fmt.Errorf("CLICKHOUSE_ADDRESS is required when STORAGE_BACKEND=clickhouse")
		}
		if c.Storage.ClickHouse.Database == "" {
			return fmt.Errorf("CLICKHOUSE_DATABASE is required when STORAGE_BACKEND=clickhouse")
		}
	}
	return nil
}

// validateInfluxDB validates InfluxDB connection settings
func (c *Config) validateInfluxDB() error {
	if c.Storage.InfluxDB.URL == "" {
		return fmt.Errorf("INFLUX_URL is required when STORAGE_BACKEND=influxdb")
	}
	if err := validateBaseURL(c.Storage.InfluxDB.URL, "INFLUX_URL"); err != nil {
		return err
	}
	if c.Storage.InfluxDB.Database == "" {
		return fmt.Errorf("INFLUX_DATABASE is required when STORAGE_BACKEND=influxdb")
	}
	if c.Storage.InfluxDB.Timeout < 0 {
		return fmt.Errorf("INFLUX_TIMEOUT must not be negative")
	}
	return nil
}

// validateMetrics validates the operational endpoint
func (c *Config) validateMetrics() error {
	if c.Metrics.Enabled && c.Metrics.ListenAddress == "" {
		return fmt.Errorf("METRICS_LISTEN_ADDRESS is required when METRICS_ENABLED=true")
	}
	if c.Metrics.Enabled && c.Metrics.ListenAddress == c.Ingest.ListenAddress {
		return fmt.Errorf("METRICS_LISTEN_ADDRESS must differ from LISTEN_ADDRESS")
	}
	return nil
}
