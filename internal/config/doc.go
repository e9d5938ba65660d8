// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

/*
Package config provides centralized configuration management for GeoIPLine.

Configuration is assembled by Koanf v2 from four layers, each overriding the
previous one:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: -config, CONFIG_PATH, ./config.yaml or
    /etc/geoipline/config.yaml
 3. Environment variables listed in the mapping table (envTransformFunc);
    unlisted variables are ignored
 4. Command-line flags that were explicitly passed

# Configuration Structure

  - IngestConfig: TCP listen address, admission limit, line size, decode policy
  - GeoIPConfig: resolver selection (maxmind or ipstack) and its settings
  - SpatialConfig: encoding algorithm (geohash or s2) and precision
  - StorageConfig: backend selection (influxdb, duckdb, clickhouse), retention policy
  - MetricsConfig: operational HTTP endpoint
  - LoggingConfig: zerolog level and format

# Environment Variables

Ingest:
  - LISTEN_ADDRESS (default: 127.0.0.1:7070)
  - INGEST_MAX_CONNECTIONS (default: 1024)
  - INGEST_MAX_LINE_BYTES (default: 65536)
  - INGEST_READ_TIMEOUT (default: 0, disabled)
  - INGEST_DECODE_POLICY: skip or close (default: skip)
  - INGEST_SHUTDOWN_TIMEOUT (default: 10s)

GeoIP:
  - GEOIP_PROVIDER: maxmind or ipstack (default: maxmind)
  - MAXMIND_DB_PATH: required for maxmind
  - IPSTACK_ACCESS_KEY: required for ipstack
  - IPSTACK_BASE_URL, IPSTACK_TIMEOUT, IPSTACK_RATE_LIMIT, IPSTACK_RATE_BURST,
    IPSTACK_BREAKER_TIMEOUT

Spatial:
  - SPATIAL_ALGORITHM: geohash or s2 (default: geohash)
  - SPATIAL_PRECISION: [1,12] for geohash, [0,30] for s2 (default: 3)

Storage:
  - STORAGE_BACKEND: influxdb, duckdb or clickhouse (default: influxdb)
  - RETENTION_POLICY
  - INFLUX_URL, INFLUX_USERNAME, INFLUX_PASSWORD, INFLUX_DATABASE, INFLUX_TIMEOUT
  - DUCKDB_PATH, DUCKDB_MAX_MEMORY, DUCKDB_THREADS
  - CLICKHOUSE_ADDRESS, CLICKHOUSE_DATABASE, CLICKHOUSE_USERNAME, CLICKHOUSE_PASSWORD

Metrics and logging:
  - METRICS_ENABLED, METRICS_LISTEN_ADDRESS
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Command-line Flags

	geoipline -listen 0.0.0.0:7070 -maxmind /var/lib/GeoIP/GeoLite2-City.mmdb \
	    -precision 5 -influx-url http://influx:8086 -influx-database auth

-maxmind selects the maxmind provider and -ipstack-access-key selects the
ipstack provider, so a single flag is enough to switch resolvers.

# Validation

Validate() runs go-playground/validator over the struct tags first, then
checks rules that depend on the selected provider, algorithm or backend.
Errors name the environment variable to fix.
*/
package config
