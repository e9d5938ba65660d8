// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package geoip

import (
	"fmt"

	"github.com/tomtom215/geoipline/internal/config"
	"github.com/tomtom215/geoipline/internal/logging"
)

// New builds the resolver selected by cfg.Provider. The ipstack resolver is
// wrapped in a CachingResolver unless cfg.CacheSize is zero; local database
// lookups are not cached.
func New(cfg *config.GeoIPConfig) (Resolver, error) {
	switch cfg.Provider {
	case config.ProviderMaxMind:
		return NewMaxMindResolver(cfg.MaxMindDBPath)
	case config.ProviderIPStack:
		var resolver Resolver = NewIPStackResolver(&cfg.IPStack)
		if cfg.CacheSize > 0 {
			logger := logging.WithComponent("geoip")
			logger.Info().
				Int("size", cfg.CacheSize).
				Dur("ttl", cfg.CacheTTL).
				Msg("GeoIP lookup cache enabled")
			resolver = NewCachingResolver(resolver, cfg.CacheSize, cfg.CacheTTL)
		}
		return resolver, nil
	default:
		return nil, fmt.Errorf("unknown GeoIP provider %q", cfg.Provider)
	}
}
