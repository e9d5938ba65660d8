// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/geoipline/config.yaml",
	"/etc/geoipline/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file, env vars and flags.
func defaultConfig() *Config {
	return &Config{
		Ingest: IngestConfig{
			ListenAddress:   "127.0.0.1:7070",
			MaxConnections:  1024,
			MaxLineBytes:    64 * 1024,
			ReadTimeout:     0, // no idle deadline
			DecodePolicy:    DecodePolicySkip,
			ShutdownTimeout: 10 * time.Second,
		},
		GeoIP: GeoIPConfig{
			Provider:      ProviderMaxMind,
			MaxMindDBPath: "",
			IPStack: IPStackConfig{
				AccessKey:      "",
				BaseURL:        "http://api.ipstack.com",
				Timeout:        10 * time.Second,
				RateLimit:      0, // unlimited
				RateBurst:      1,
				BreakerTimeout: 60 * time.Second,
			},
			CacheSize: 10000,
			CacheTTL:  time.Hour,
		},
		Spatial: SpatialConfig{
			Algorithm: AlgorithmGeohash,
			Precision: 3,
		},
		Storage: StorageConfig{
			Backend:         BackendInfluxDB,
			RetentionPolicy: "",
			InfluxDB: InfluxDBConfig{
				URL:     "http://localhost:8086",
				Timeout: 10 * time.Second,
			},
			DuckDB: DuckDBConfig{
				Path:      "/data/geoipline.duckdb",
				MaxMemory: "512MB",
				Threads:   0,
			},
			ClickHouse: ClickHouseConfig{
				Address:  "localhost:9000",
				Database: "default",
				Username: "default",
			},
		},
		Metrics: MetricsConfig{
			Enabled:       true,
			ListenAddress: "127.0.0.1:9100",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables
//  4. Command-line flags that were explicitly set
//
// Precedence is Flags > ENV > File > Defaults. flag.ErrHelp is returned
// unchanged when -h is passed.
func LoadWithKoanf(args []string) (*Config, error) {
	fs, configFlag := newFlagSet(io.Discard)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath, err := findConfigFile(*configFlag)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables
	// INFLUX_URL -> storage.influxdb.url
	// SPATIAL_PRECISION -> spatial.precision
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Layer 4: Command-line flags (highest priority)
	if err := applyFlags(k, fs); err != nil {
		return nil, fmt.Errorf("failed to apply command-line flags: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the config file to load. An explicit -config path
// must exist; CONFIG_PATH and the default paths are used only if present.
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", nil
}

// cliFlag maps a command-line flag to a koanf path. implies lists extra
// paths set alongside it (e.g. -maxmind also selects the maxmind provider).
type cliFlag struct {
	name    string
	path    string
	usage   string
	implies map[string]string
}

var cliFlags = []cliFlag{
	{name: "listen", path: "ingest.listen_address", usage: "listen address and port for log entries"},
	{name: "precision", path: "spatial.precision", usage: "geohash length or S2 cell level"},
	{name: "algorithm", path: "spatial.algorithm", usage: "spatial encoding: geohash or s2"},
	{name: "retention-policy", path: "storage.retention_policy", usage: "retention policy attached to every write"},
	{
		name:    "maxmind",
		path:    "geoip.maxmind_db_path",
		usage:   "path to the MaxMind city database (selects the maxmind provider)",
		implies: map[string]string{"geoip.provider": ProviderMaxMind},
	},
	{
		name:    "ipstack-access-key",
		path:    "geoip.ipstack.access_key",
		usage:   "ipstack API access key (selects the ipstack provider)",
		implies: map[string]string{"geoip.provider": ProviderIPStack},
	},
	{name: "backend", path: "storage.backend", usage: "storage backend: influxdb, duckdb or clickhouse"},
	{name: "influx-url", path: "storage.influxdb.url", usage: "InfluxDB URL"},
	{name: "influx-username", path: "storage.influxdb.username", usage: "InfluxDB username"},
	{name: "influx-password", path: "storage.influxdb.password", usage: "InfluxDB password or token"},
	{name: "influx-database", path: "storage.influxdb.database", usage: "InfluxDB database"},
	{name: "log-level", path: "logging.level", usage: "log level: trace, debug, info, warn, error"},
}

// newFlagSet builds the command-line flag set. The returned pointer holds
// the -config value, which selects the file layer rather than a koanf key.
func newFlagSet(output io.Writer) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet("geoipline", flag.ContinueOnError)
	fs.SetOutput(output)

	configPath := fs.String("config", "", "path to a YAML config file")
	for _, f := range cliFlags {
		fs.String(f.name, "", f.usage)
	}
	return fs, configPath
}

// Usage writes the command-line help text to w.
func Usage(w io.Writer) {
	fs, _ := newFlagSet(w)
	fmt.Fprintln(w, "Usage: geoipline [flags]")
	fs.PrintDefaults()
}

// applyFlags copies explicitly set flags into k.
func applyFlags(k *koanf.Koanf, fs *flag.FlagSet) error {
	byName := make(map[string]cliFlag, len(cliFlags))
	for _, f := range cliFlags {
		byName[f.name] = f
	}

	var setErr error
	fs.Visit(func(fl *flag.Flag) {
		f, ok := byName[fl.Name]
		if !ok || setErr != nil {
			return
		}
		for path, value := range f.implies {
			if err := k.Set(path, value); err != nil {
				setErr = fmt.Errorf("failed to set %s: %w", path, err)
				return
			}
		}
		if err := k.Set(f.path, fl.Value.String()); err != nil {
			setErr = fmt.Errorf("failed to set %s: %w", f.path, err)
		}
	})
	return setErr
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Only names in the mapping table are loaded; everything else in the
// environment is ignored.
//
// Examples:
//   - LISTEN_ADDRESS -> ingest.listen_address
//   - MAXMIND_DB_PATH -> geoip.maxmind_db_path
//   - INFLUX_DATABASE -> storage.influxdb.database
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Ingest listener
		"listen_address":          "ingest.listen_address",
		"ingest_listen_address":   "ingest.listen_address",
		"ingest_max_connections":  "ingest.max_connections",
		"ingest_max_line_bytes":   "ingest.max_line_bytes",
		"ingest_read_timeout":     "ingest.read_timeout",
		"ingest_decode_policy":    "ingest.decode_policy",
		"ingest_shutdown_timeout": "ingest.shutdown_timeout",

		// GeoIP resolver
		"geoip_provider":          "geoip.provider",
		"maxmind_db_path":         "geoip.maxmind_db_path",
		"ipstack_access_key":      "geoip.ipstack.access_key",
		"ipstack_base_url":        "geoip.ipstack.base_url",
		"ipstack_timeout":         "geoip.ipstack.timeout",
		"ipstack_rate_limit":      "geoip.ipstack.rate_limit",
		"ipstack_rate_burst":      "geoip.ipstack.rate_burst",
		"ipstack_breaker_timeout": "geoip.ipstack.breaker_timeout",
		"geoip_cache_size":        "geoip.cache_size",
		"geoip_cache_ttl":         "geoip.cache_ttl",

		// Spatial encoding
		"spatial_algorithm": "spatial.algorithm",
		"spatial_precision": "spatial.precision",

		// Storage
		"storage_backend":  "storage.backend",
		"retention_policy": "storage.retention_policy",

		"influx_url":      "storage.influxdb.url",
		"influx_username": "storage.influxdb.username",
		"influx_password": "storage.influxdb.password",
		"influx_database": "storage.influxdb.database",
		"influx_timeout":  "storage.influxdb.timeout",

		"duckdb_path":       "storage.duckdb.path",
		"duckdb_max_memory": "storage.duckdb.max_memory",
		"duckdb_threads":    "storage.duckdb.threads",

		"clickhouse_address":  "storage.clickhouse.address",
		"clickhouse_database": "storage.clickhouse.database",
		"clickhouse_username": "storage.clickhouse.username",
		"clickhouse_password": "storage.clickhouse.password",

		// Metrics endpoint
		"metrics_enabled":        "metrics.enabled",
		"metrics_listen_address": "metrics.listen_address",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	return ""
}
