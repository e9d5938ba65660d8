// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

/*
Package services adapts blocking servers to suture's Serve(ctx) lifecycle.

HTTPServerService wraps the operational *http.Server: ListenAndServe runs
in a goroutine and ctx cancellation triggers Shutdown with a bounded
timeout. The ingest listener needs no wrapper because ingest.Listener
already implements suture.Service.

Return values follow suture's conventions:
  - ctx.Err() after a requested shutdown
  - a wrapped error when the server fails, which triggers a restart
*/
package services
