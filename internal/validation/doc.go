// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built on first use and shared by the whole
// process; go-playground caches struct metadata per type, so reusing it keeps
// per-line validation cheap on the ingest hot path.
//
// Two kinds of structs are validated:
//
//   - models.InboundEvent after each line is decoded (ip is required)
//   - config.Config after all koanf layers are merged (enumerations,
//     precision bounds, required addresses)
//
// Field names in errors are taken from json tags, then koanf tags, so a
// failure reads "spatial.precision must be at most 30" instead of the Go
// field path.
//
// # Usage
//
//	if verr := validation.ValidateStruct(&cfg); verr != nil {
//	    return fmt.Errorf("invalid configuration: %w", verr)
//	}
//
// ValidateStruct returns a concrete *StructValidationError; compare it with
// nil before converting it to the error interface.
package validation
