// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

/*
Package geoip resolves IP addresses to coordinates.

Two providers implement Resolver:

  - MaxMindResolver reads a local GeoLite2/GeoIP2 City database
    (github.com/oschwald/maxminddb-golang). Lookups are in-memory.
  - IPStackResolver calls the ipstack HTTP API. Calls go through a
    client-side rate limiter (golang.org/x/time/rate) and a circuit breaker
    (github.com/sony/gobreaker/v2) so an unavailable API fails fast.

Every failure is returned as a *ResolutionError wrapping one of the
sentinel errors (ErrInvalidIP, ErrNotRoutable, ErrNoLocation,
ErrRateLimited) or the underlying transport error:

	coords, err := resolver.Resolve(ctx, "81.2.69.142")
	if errors.Is(err, geoip.ErrNoLocation) {
		// skip the line
	}

Private, loopback and link-local addresses are rejected before any lookup.
An address given with a port ("192.0.2.1:22", "[2001:db8::1]:22") is
accepted and the port ignored.

Resolvers are safe for concurrent use.
*/
package geoip
