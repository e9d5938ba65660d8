// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package logging

import "strings"

// redactedQueryKeys lists query parameters whose values never reach the logs.
var redactedQueryKeys = []string{"access_key", "api_key", "apikey", "token", "password"}

// RedactSecrets masks credential query parameters in a string, typically an
// error returned by net/http that embeds the request URL.
//
//	RedactSecrets(`Get "http://api.ipstack.com/1.2.3.4?access_key=abc": EOF`)
//	// Get "http://api.ipstack.com/1.2.3.4?access_key=***": EOF
func RedactSecrets(s string) string {
	lower := strings.ToLower(s)
	for _, key := range redactedQueryKeys {
		needle := key + "="
		searchFrom := 0
		for {
			idx := strings.Index(lower[searchFrom:], needle)
			if idx < 0 {
				break
			}
			start := searchFrom + idx + len(needle)
			end := start
			for end < len(s) && !strings.ContainsRune("&\" \t\n", rune(s[end])) {
				end++
			}
			s = s[:start] + "***" + s[end:]
			lower = lower[:start] + "***" + lower[end:]
			searchFrom = start + 3
		}
	}
	return s
}
