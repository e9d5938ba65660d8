// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

// Package cache provides a generic TTL-bounded LRU cache.
//
// It backs geoip.CachingResolver, which keeps recent lookups so that an
// address retried by a brute-force client costs one ipstack request per
// TTL instead of one per attempt:
//
//	c := cache.NewLRU[models.Coordinates](10000, time.Hour)
//	c.Add("203.0.113.7", coords)
//	coords, ok := c.Get("203.0.113.7")
package cache
