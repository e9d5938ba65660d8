// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package config

import (
	"fmt"
	"net/url"
)

// validateBaseURL checks an http(s) endpoint that the client appends its own
// path and query to (ipstack lookups, InfluxDB /write). A trailing slash is
// allowed. Credentials have their own settings and are rejected in the URL
// so they never show up in logged request errors.
func validateBaseURL(rawURL, envName string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", envName, err)
	}

	switch {
	case u.Scheme != "http" && u.Scheme != "https":
		return fmt.Errorf("%s scheme must be http or https, got: %q", envName, u.Scheme)
	case u.Host == "":
		return fmt.Errorf("%s host is required", envName)
	case u.User != nil:
		return fmt.Errorf("%s must not embed credentials", envName)
	case u.Path != "" && u.Path != "/":
		return fmt.Errorf("%s should be base URL only, remove path: %s", envName, u.Path)
	case u.RawQuery != "":
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", envName, u.RawQuery)
	}
	return nil
}
