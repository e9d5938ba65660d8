// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

/*
Package models defines the data structures that flow through the ingestion
pipeline.

Key Components:

  - InboundEvent: one decoded JSON line from the log shipper
  - Coordinates: latitude/longitude returned by a GeoIP resolver
  - EnrichedRecord: the write-once row stored in the time-series backend

Inbound lines carry the literal IP "**NO MATCH**" (NoMatchIP) when the
shipper could not attach an address. Such events are dropped before any
lookup is attempted.

Every EnrichedRecord is written under the "ssh-auth" measurement with the
username and spatial token as tags and the ip and success flag as fields.
*/
package models
