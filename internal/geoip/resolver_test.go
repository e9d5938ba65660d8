// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package geoip

import (
	"errors"
	"net/netip"
	"strings"
	"testing"
)

func TestNormalizeIPAddress(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"IPv4 simple", "81.2.69.142", "81.2.69.142"},
		{"IPv4 with port", "81.2.69.142:22", "81.2.69.142"},
		{"IPv4 surrounding spaces", "  81.2.69.142 ", "81.2.69.142"},
		{"IPv6 loopback", "::1", "::1"},
		{"IPv6 full", "2001:4860:4860::8888", "2001:4860:4860::8888"},
		{"IPv6 bracketed with port", "[2001:4860:4860::8888]:2222", "2001:4860:4860::8888"},
		{"IPv6 bracketed no port", "[2001:db8::1]", "2001:db8::1"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeIPAddress(tt.input); got != tt.expected {
				t.Errorf("normalizeIPAddress(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		ip      string
		want    string
		wantErr error
	}{
		{"public IPv4", "8.8.8.8", "8.8.8.8", nil},
		{"public IPv4 with port", "8.8.8.8:53", "8.8.8.8", nil},
		{"IPv4-mapped IPv6 is unmapped", "::ffff:8.8.8.8", "8.8.8.8", nil},
		{"public IPv6", "2001:4860:4860::8888", "2001:4860:4860::8888", nil},
		{"private 10/8", "10.1.2.3", "", ErrNotRoutable},
		{"private 172.16/12", "172.20.0.1", "", ErrNotRoutable},
		{"private 192.168/16", "192.168.1.1", "", ErrNotRoutable},
		{"loopback", "127.0.0.1", "", ErrNotRoutable},
		{"IPv6 loopback", "::1", "", ErrNotRoutable},
		{"link-local", "169.254.10.10", "", ErrNotRoutable},
		{"IPv6 unique local", "fd00::1", "", ErrNotRoutable},
		{"unspecified", "0.0.0.0", "", ErrNotRoutable},
		{"multicast", "224.0.0.1", "", ErrNotRoutable},
		{"sentinel", "**NO MATCH**", "", ErrInvalidIP},
		{"hostname", "example.com", "", ErrInvalidIP},
		{"empty", "", "", ErrInvalidIP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := parseAddress(tt.ip)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("parseAddress(%q) error = %v, want %v", tt.ip, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAddress(%q) unexpected error: %v", tt.ip, err)
			}
			if addr.String() != tt.want {
				t.Errorf("parseAddress(%q) = %s, want %s", tt.ip, addr, tt.want)
			}
		})
	}
}

func TestIsRoutable_ZeroAddr(t *testing.T) {
	if IsRoutable(netip.Addr{}) {
		t.Error("zero Addr should not be routable")
	}
}

func TestResolutionError(t *testing.T) {
	err := newResolutionError(ProviderIPStack, "203.0.113.9", ErrRateLimited)

	if !errors.Is(err, ErrRateLimited) {
		t.Error("ResolutionError should unwrap to the cause")
	}

	var resErr *ResolutionError
	if !errors.As(error(err), &resErr) || resErr.Provider != ProviderIPStack {
		t.Errorf("errors.As failed or wrong provider: %+v", resErr)
	}

	msg := err.Error()
	for _, want := range []string{"ipstack", "203.0.113.9", "rate limit"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}
