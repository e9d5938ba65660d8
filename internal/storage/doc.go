// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

/*
Package storage persists enriched authentication records.

Every record becomes one point of the "ssh-auth" measurement. The backend is
chosen at startup by storage.backend:

  - influxdb: InfluxDB 1.x HTTP write API (github.com/influxdata/influxdb1-client).
    Username and spatial token are tags, keyed by the token kind ("geohash" or
    "s2_cell"); ip and success are fields. The retention policy is set on
    the write request.
  - duckdb: embedded table ssh_auth (github.com/duckdb/duckdb-go/v2).
  - clickhouse: MergeTree table ssh_auth (github.com/ClickHouse/clickhouse-go/v2).

The SQL backends store the retention policy name in a column.

Writes are not batched or retried. A failed write returns *StorageError and
the caller decides what to do with the connection that produced it.

Usage:

	w, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
	    return err
	}
	defer w.Close()

	err = w.Write(ctx, record)
*/
package storage
