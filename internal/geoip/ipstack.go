// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package geoip

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/geoipline/internal/config"
	"github.com/tomtom215/geoipline/internal/logging"
	"github.com/tomtom215/geoipline/internal/metrics"
	"github.com/tomtom215/geoipline/internal/models"
)

// ProviderIPStack is the Name() of IPStackResolver.
const ProviderIPStack = "ipstack"

// ipstack error codes that describe the queried address, not the account.
const (
	ipstackInvalidIPAddress = 106
)

// ipstackResponse is the subset of the ipstack standard lookup response we
// use. A failed request still answers 200 with success=false and an error
// object.
type ipstackResponse struct {
	Success     *bool         `json:"success,omitempty"`
	Error       *ipstackError `json:"error,omitempty"`
	IP          string        `json:"ip"`
	Type        string        `json:"type"`
	CountryCode string        `json:"country_code"`
	City        string        `json:"city"`
	Latitude    *float64      `json:"latitude"`
	Longitude   *float64      `json:"longitude"`
}

type ipstackError struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Info string `json:"info"`
}

func (e *ipstackError) Error() string {
	return fmt.Sprintf("ipstack error %d (%s): %s", e.Code, e.Type, e.Info)
}

// IPStackResolver looks addresses up through the ipstack HTTP API.
type IPStackResolver struct {
	client    *http.Client
	baseURL   string
	accessKey string
	limiter   *rate.Limiter // nil when unlimited
	breaker   *circuitBreaker
}

// NewIPStackResolver creates an ipstack client from cfg.
func NewIPStackResolver(cfg *config.IPStackConfig) *IPStackResolver {
	r := &IPStackResolver{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		accessKey: cfg.AccessKey,
		breaker:   newCircuitBreaker(breakerName, cfg.BreakerTimeout),
	}
	if cfg.RateLimit > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	return r
}

// Name returns the provider name.
func (r *IPStackResolver) Name() string {
	return ProviderIPStack
}

// Resolve queries ipstack for ip. Lookups over the rate limit fail
// immediately with ErrRateLimited rather than waiting for a token.
func (r *IPStackResolver) Resolve(ctx context.Context, ip string) (models.Coordinates, error) {
	addr, err := parseAddress(ip)
	if err != nil {
		return models.Coordinates{}, newResolutionError(ProviderIPStack, ip, err)
	}

	if r.limiter != nil && !r.limiter.Allow() {
		metrics.RecordRateLimited(ProviderIPStack)
		return models.Coordinates{}, newResolutionError(ProviderIPStack, ip, ErrRateLimited)
	}

	coords, err := r.breaker.execute(func() (models.Coordinates, error) {
		return r.query(ctx, addr.String())
	})
	if err != nil {
		return models.Coordinates{}, newResolutionError(ProviderIPStack, ip, err)
	}
	return coords, nil
}

// query performs one API call.
func (r *IPStackResolver) query(ctx context.Context, ip string) (models.Coordinates, error) {
	reqURL := fmt.Sprintf("%s/%s?access_key=%s", r.baseURL, url.PathEscape(ip), url.QueryEscape(r.accessKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("failed to create request: %w", redactURLError(err))
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("failed to query ipstack: %w", redactURLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.Coordinates{}, fmt.Errorf("ipstack returned status %d", resp.StatusCode)
	}

	var result ipstackResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return models.Coordinates{}, fmt.Errorf("failed to decode ipstack response: %w", err)
	}

	if result.Success != nil && !*result.Success {
		if result.Error == nil {
			return models.Coordinates{}, errors.New("ipstack reported failure without error details")
		}
		if result.Error.Code == ipstackInvalidIPAddress {
			return models.Coordinates{}, fmt.Errorf("%w: %w", ErrInvalidIP, result.Error)
		}
		return models.Coordinates{}, result.Error
	}

	if result.Latitude == nil || result.Longitude == nil {
		return models.Coordinates{}, ErrNoLocation
	}

	logging.Debug().
		Str("ip", ip).
		Str("country", result.CountryCode).
		Dur("elapsed", time.Since(start)).
		Msg("ipstack lookup complete")

	return models.Coordinates{Latitude: *result.Latitude, Longitude: *result.Longitude}, nil
}

// Close releases idle HTTP connections.
func (r *IPStackResolver) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

// redactURLError strips the access key from the URL that net/http embeds in
// its errors.
func redactURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = logging.RedactSecrets(urlErr.URL)
	}
	return err
}
