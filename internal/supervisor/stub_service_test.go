// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/tomtom215/geoipline/internal/models"
)

var errSimulatedFailure = errors.New("simulated failure")

// stubService is a suture.Service that fails a fixed number of times and
// then runs until its context is canceled.
type stubService struct {
	name       string
	failures   int32
	startCount atomic.Int32
	stopCount  atomic.Int32
	started    chan struct{}
}

func newStubService(name string, failures int32) *stubService {
	return &stubService{
		name:     name,
		failures: failures,
		started:  make(chan struct{}, 1),
	}
}

func (s *stubService) Serve(ctx context.Context) error {
	n := s.startCount.Add(1)
	defer s.stopCount.Add(1)

	if n <= s.failures {
		return errSimulatedFailure
	}

	select {
	case s.started <- struct{}{}:
	default:
	}

	<-ctx.Done()
	return ctx.Err()
}

func (s *stubService) String() string {
	return s.name
}

type fixedResolver struct{}

func (fixedResolver) Resolve(context.Context, string) (models.Coordinates, error) {
	return models.Coordinates{Latitude: 37.7749, Longitude: -122.4194}, nil
}
func (fixedResolver) Name() string { return "fixed" }
func (fixedResolver) Close() error { return nil }

type discardWriter struct{}

func (discardWriter) Write(context.Context, models.EnrichedRecord) error { return nil }
func (discardWriter) Ping(context.Context) error                         { return nil }
func (discardWriter) Name() string                                       { return "discard" }
func (discardWriter) Close() error                                       { return nil }
