// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

/*
Package ingest accepts authentication events over TCP and runs each through
the enrichment pipeline.

# Wire Format

One JSON object per line, UTF-8, newline terminated:

	{"username":"root","ip":"203.0.113.7","port":"52144"}

An ip of "**NO MATCH**" marks a log line without an address; it is counted
and dropped. Lines longer than ingest.max_line_bytes end the connection.

# Per-Line Flow

	AwaitingLine -> Decoding -> Resolving -> Encoding -> Writing -> AwaitingLine

Decode failures follow ingest.decode_policy ("skip" or "close"). Resolve and
encode failures skip the line. A write failure closes the connection; there
are no retries. Nothing is ever written back to the peer.

# Concurrency

Listener runs one goroutine per connection, bounded by
ingest.max_connections (golang.org/x/sync/semaphore). All handlers share one
immutable *Pipeline, so the resolver, encoder and writer must be safe for
concurrent use. Lines within a connection are processed in order; there is
no ordering across connections.

On shutdown the listener stops accepting, closes active connections and waits
up to ingest.shutdown_timeout for handlers to return.
*/
package ingest
