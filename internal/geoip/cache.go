// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package geoip

import (
	"context"
	"time"

	"github.com/tomtom215/geoipline/internal/cache"
	"github.com/tomtom215/geoipline/internal/logging"
	"github.com/tomtom215/geoipline/internal/metrics"
	"github.com/tomtom215/geoipline/internal/models"
)

// DefaultCacheCleanupInterval is how often Serve drops expired entries.
const DefaultCacheCleanupInterval = time.Minute

// cachedLookup is a remembered answer: coordinates, or an address error
// the provider will keep returning for the same input.
type cachedLookup struct {
	coords models.Coordinates
	err    error
}

// CachingResolver remembers lookups of another Resolver for a fixed TTL.
// Successful lookups and address errors (ErrNoLocation, ErrInvalidIP) are
// cached. Transport failures, rate limiting and open-breaker rejections are
// not, so the next attempt goes to the provider again.
//
// Expired entries are dropped lazily on lookup. Serve runs a periodic
// cleanup so addresses that are never seen again do not hold memory until
// they are evicted.
type CachingResolver struct {
	next            Resolver
	cache           *cache.LRU[cachedLookup]
	cleanupInterval time.Duration
}

// NewCachingResolver wraps next with a cache of size entries kept for ttl.
func NewCachingResolver(next Resolver, size int, ttl time.Duration) *CachingResolver {
	return &CachingResolver{
		next:            next,
		cache:           cache.NewLRU[cachedLookup](size, ttl),
		cleanupInterval: DefaultCacheCleanupInterval,
	}
}

// Resolve implements Resolver.
func (r *CachingResolver) Resolve(ctx context.Context, ip string) (models.Coordinates, error) {
	if hit, ok := r.cache.Get(ip); ok {
		metrics.RecordCacheLookup(r.next.Name(), true)
		return hit.coords, hit.err
	}
	metrics.RecordCacheLookup(r.next.Name(), false)

	coords, err := r.next.Resolve(ctx, ip)
	if err == nil || isAddressError(err) {
		r.cache.Add(ip, cachedLookup{coords: coords, err: err})
	}
	return coords, err
}

// Name returns the wrapped provider's name.
func (r *CachingResolver) Name() string {
	return r.next.Name()
}

// Close closes the wrapped resolver.
func (r *CachingResolver) Close() error {
	return r.next.Close()
}

// Serve implements suture.Service. It removes expired entries every
// cleanup interval and publishes the cache size until ctx is canceled.
func (r *CachingResolver) Serve(ctx context.Context) error {
	ticker := time.NewTicker(r.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.cleanup()
		}
	}
}

func (r *CachingResolver) cleanup() {
	removed := r.cache.CleanupExpired()
	hits, misses, size := r.cache.Stats()
	metrics.RecordCacheCleanup(r.next.Name(), removed, size)

	logger := logging.WithComponent("geoip")
	logger.Debug().
		Str("provider", r.next.Name()).
		Int("expired", removed).
		Int("entries", size).
		Int64("hits", hits).
		Int64("misses", misses).
		Msg("Lookup cache cleanup")
}

// String implements fmt.Stringer for supervisor logs.
func (r *CachingResolver) String() string {
	return "geoip-cache"
}
