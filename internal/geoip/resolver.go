// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package geoip

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"github.com/tomtom215/geoipline/internal/models"
)

// Resolver maps an IP address to coordinates.
// Implementations are safe for concurrent use by many connection handlers.
type Resolver interface {
	// Resolve returns the coordinates of ip, or a *ResolutionError.
	Resolve(ctx context.Context, ip string) (models.Coordinates, error)

	// Name returns the provider name for logging and metrics.
	Name() string

	// Close releases the resolver's resources.
	Close() error
}

var (
	// ErrInvalidIP means the input is not an IP address.
	ErrInvalidIP = errors.New("invalid IP address")

	// ErrNotRoutable means the address is private, loopback, link-local or
	// unspecified and cannot have a location.
	ErrNotRoutable = errors.New("address is not publicly routable")

	// ErrNoLocation means the provider has no coordinates for the address.
	ErrNoLocation = errors.New("no location for address")

	// ErrRateLimited means the client-side rate limit refused the lookup.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// ResolutionError reports a failed lookup.
type ResolutionError struct {
	Provider string
	IP       string
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s lookup of %q failed: %v", e.Provider, e.IP, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

func newResolutionError(provider, ip string, err error) *ResolutionError {
	return &ResolutionError{Provider: provider, IP: ip, Err: err}
}

// parseAddress parses ip after stripping an optional port or brackets,
// and rejects addresses that can never be geolocated.
func parseAddress(ip string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(normalizeIPAddress(ip))
	if err != nil {
		return netip.Addr{}, ErrInvalidIP
	}
	addr = addr.Unmap()

	if !IsRoutable(addr) {
		return netip.Addr{}, ErrNotRoutable
	}
	return addr, nil
}

// IsRoutable reports whether addr is a public unicast address.
func IsRoutable(addr netip.Addr) bool {
	switch {
	case !addr.IsValid(),
		addr.IsUnspecified(),
		addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsMulticast():
		return false
	}
	return true
}

// normalizeIPAddress strips port from IP address if present
func normalizeIPAddress(ipAddr string) string {
	ipAddr = strings.TrimSpace(ipAddr)
	if strings.HasPrefix(ipAddr, "[") {
		// [::1]:22 -> ::1
		if idx := strings.LastIndex(ipAddr, "]:"); idx != -1 {
			return ipAddr[1:idx]
		}
		return strings.Trim(ipAddr, "[]")
	}

	// 192.0.2.1:22 -> 192.0.2.1; bare IPv6 has more than one colon
	if strings.Count(ipAddr, ":") == 1 {
		return ipAddr[:strings.IndexByte(ipAddr, ':')]
	}
	return ipAddr
}
