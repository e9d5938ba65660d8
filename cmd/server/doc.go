// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

/*
Command geoipline geolocates failed SSH authentication attempts.

A log shipper connects over TCP and sends one JSON object per line:

	{"username":"root","ip":"203.0.113.7","port":"52144"}

Each line is resolved to coordinates (MaxMind database or the ipstack API),
encoded as a geohash or S2 cell token and written as one "ssh-auth" point
to InfluxDB, DuckDB or ClickHouse. Lines whose ip is "**NO MATCH**" are
skipped without a lookup.

# Process Layout

	geoipline (root supervisor)
	├── ingest-layer
	│   └── ingest-listener   TCP JSON lines, one goroutine per connection
	└── api-layer
	    └── ops-http          /metrics, /health (when metrics.enabled)

Startup order: configuration, logging, spatial encoder, GeoIP resolver,
storage writer (pinged once), pipeline, supervisor tree. The resolver and
writer are closed after the tree stops.

# Configuration

Koanf v2 layers, highest priority first: command-line flags, environment
variables, YAML config file (-config, CONFIG_PATH, ./config.yaml or
/etc/geoipline/config.yaml), built-in defaults. Run with -h for flags.

	geoipline -listen 0.0.0.0:7070 -maxmind /var/lib/GeoIP/GeoLite2-City.mmdb \
	    -influx-url http://influx:8086 -influx-database auth -precision 5

	IPSTACK_ACCESS_KEY=... STORAGE_BACKEND=duckdb DUCKDB_PATH=/data/auth.duckdb geoipline

# Signal Handling

SIGINT and SIGTERM stop the listener, close active connections, wait up to
ingest.shutdown_timeout for handlers and shut the operational endpoint
down. The exit status is 0 after a clean shutdown, 1 when startup fails and
2 for invalid configuration.
*/
package main
