// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package config

import (
	"time"

	"github.com/tomtom215/geoipline/internal/spatial"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every optional setting
//  2. Config File: Optional YAML file (config.yaml or CONFIG_PATH)
//  3. Environment Variables: explicit mapping table, see envTransformFunc
//  4. Command-line flags: only flags that were actually passed
//
// Example - Load configuration:
//
//	cfg, err := config.Load(os.Args[1:])
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load configuration")
//	}
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Ingest  IngestConfig  `koanf:"ingest"`
	GeoIP   GeoIPConfig   `koanf:"geoip"`
	Spatial SpatialConfig `koanf:"spatial"`
	Storage StorageConfig `koanf:"storage"`
	Metrics MetricsConfig `koanf:"metrics"`
	Logging LoggingConfig `koanf:"logging"`
}

// Decode-failure policies for IngestConfig.DecodePolicy.
const (
	DecodePolicySkip  = "skip"
	DecodePolicyClose = "close"
)

// IngestConfig holds the TCP listener settings.
//
// Environment Variables:
//   - LISTEN_ADDRESS: host:port to accept log shipper connections on (default: 127.0.0.1:7070)
//   - INGEST_MAX_CONNECTIONS: concurrent connection limit (default: 1024)
//   - INGEST_MAX_LINE_BYTES: longest accepted line, newline excluded (default: 65536)
//   - INGEST_READ_TIMEOUT: idle deadline per line, 0 disables (default: 0)
//   - INGEST_DECODE_POLICY: "skip" or "close" on undecodable lines (default: skip)
//   - INGEST_SHUTDOWN_TIMEOUT: how long to wait for handlers on shutdown (default: 10s)
type IngestConfig struct {
	ListenAddress   string        `koanf:"listen_address" validate:"required,hostname_port"`
	MaxConnections  int64         `koanf:"max_connections" validate:"gt=0"`
	MaxLineBytes    int           `koanf:"max_line_bytes" validate:"gte=64"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	DecodePolicy    string        `koanf:"decode_policy" validate:"oneof=skip close"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// GeoIP providers for GeoIPConfig.Provider.
const (
	ProviderMaxMind = "maxmind"
	ProviderIPStack = "ipstack"
)

// GeoIPConfig selects and configures the IP-to-coordinates backend.
//
// Environment Variables:
//   - GEOIP_PROVIDER: "maxmind" or "ipstack" (default: maxmind)
//   - MAXMIND_DB_PATH: path to a GeoLite2/GeoIP2 City .mmdb file
//   - IPSTACK_ACCESS_KEY: ipstack API access key
//   - IPSTACK_BASE_URL: API base URL (default: http://api.ipstack.com)
//   - IPSTACK_TIMEOUT: per-request HTTP timeout (default: 10s)
//   - IPSTACK_RATE_LIMIT: max requests per second, 0 disables (default: 0)
//   - IPSTACK_RATE_BURST: limiter burst (default: 1)
//   - IPSTACK_BREAKER_TIMEOUT: how long the breaker stays open (default: 60s)
//   - GEOIP_CACHE_SIZE: ipstack lookups kept in memory, 0 disables (default: 10000)
//   - GEOIP_CACHE_TTL: how long a cached lookup is reused (default: 1h)
type GeoIPConfig struct {
	Provider      string        `koanf:"provider" validate:"oneof=maxmind ipstack"`
	MaxMindDBPath string        `koanf:"maxmind_db_path"`
	IPStack       IPStackConfig `koanf:"ipstack"`
	CacheSize     int           `koanf:"cache_size" validate:"gte=0"`
	CacheTTL      time.Duration `koanf:"cache_ttl"`
}

// IPStackConfig holds the remote API client settings.
type IPStackConfig struct {
	AccessKey      string        `koanf:"access_key"`
	BaseURL        string        `koanf:"base_url"`
	Timeout        time.Duration `koanf:"timeout"`
	RateLimit      float64       `koanf:"rate_limit" validate:"gte=0"`
	RateBurst      int           `koanf:"rate_burst" validate:"gte=1"`
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

// Spatial algorithms for SpatialConfig.Algorithm. Precision bounds live
// with the encoders in package spatial.
const (
	AlgorithmGeohash = spatial.AlgorithmGeohash
	AlgorithmS2      = spatial.AlgorithmS2
)

// SpatialConfig selects the coordinate encoding.
//
// Environment Variables:
//   - SPATIAL_ALGORITHM: "geohash" or "s2" (default: geohash)
//   - SPATIAL_PRECISION: geohash length [1,12] or S2 level [0,30] (default: 3)
type SpatialConfig struct {
	Algorithm string `koanf:"algorithm" validate:"oneof=geohash s2"`
	Precision int    `koanf:"precision"`
}

// Storage backends for StorageConfig.Backend.
const (
	BackendInfluxDB   = "influxdb"
	BackendDuckDB     = "duckdb"
	BackendClickHouse = "clickhouse"
)

// StorageConfig selects and configures the time-series backend.
//
// Environment Variables:
//   - STORAGE_BACKEND: "influxdb", "duckdb" or "clickhouse" (default: influxdb)
//   - RETENTION_POLICY: retention policy name forwarded with every write (default: none)
//   - INFLUX_URL, INFLUX_USERNAME, INFLUX_PASSWORD, INFLUX_DATABASE, INFLUX_TIMEOUT
//   - DUCKDB_PATH, DUCKDB_MAX_MEMORY, DUCKDB_THREADS
//   - CLICKHOUSE_ADDRESS, CLICKHOUSE_DATABASE, CLICKHOUSE_USERNAME, CLICKHOUSE_PASSWORD
type StorageConfig struct {
	Backend         string           `koanf:"backend" validate:"oneof=influxdb duckdb clickhouse"`
	RetentionPolicy string           `koanf:"retention_policy"`
	InfluxDB        InfluxDBConfig   `koanf:"influxdb"`
	DuckDB          DuckDBConfig     `koanf:"duckdb"`
	ClickHouse      ClickHouseConfig `koanf:"clickhouse"`
}

// InfluxDBConfig holds InfluxDB 1.x HTTP API settings.
type InfluxDBConfig struct {
	URL      string        `koanf:"url"`
	Username string        `koanf:"username"`
	Password string        `koanf:"password"`
	Database string        `koanf:"database"`
	Timeout  time.Duration `koanf:"timeout"`
}

// DuckDBConfig holds embedded DuckDB settings.
type DuckDBConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads" validate:"gte=0"` // 0 = runtime.NumCPU()
}

// ClickHouseConfig holds ClickHouse native protocol settings.
type ClickHouseConfig struct {
	Address  string `koanf:"address"`
	Database string `koanf:"database"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// MetricsConfig controls the operational HTTP endpoint (/metrics, /health).
//
// Environment Variables:
//   - METRICS_ENABLED: serve the endpoint (default: true)
//   - METRICS_LISTEN_ADDRESS: host:port (default: 127.0.0.1:9100)
type MetricsConfig struct {
	Enabled       bool   `koanf:"enabled"`
	ListenAddress string `koanf:"listen_address" validate:"omitempty,hostname_port"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Any name zerolog understands is accepted, case-insensitively.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load reads configuration from defaults, an optional YAML file, the
// environment and the given command-line arguments, then validates it.
//
// See LoadWithKoanf() for the underlying implementation.
func Load(args []string) (*Config, error) {
	return LoadWithKoanf(args)
}
