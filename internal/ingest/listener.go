// GeoIPLine - Authentication Attempt Geolocation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geoipline

package ingest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/tomtom215/geoipline/internal/config"
	"github.com/tomtom215/geoipline/internal/logging"
	"github.com/tomtom215/geoipline/internal/metrics"
)

// Accept-error backoff bounds, as in net/http.Server.
const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// Listener accepts TCP connections and runs one handler goroutine per
// connection. At most maxConnections handlers run at once; while the limit
// is reached the accept loop waits for a slot.
type Listener struct {
	address         string
	pipeline        *Pipeline
	sem             *semaphore.Weighted
	maxConnections  int64
	shutdownTimeout time.Duration

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	addr  net.Addr
	ready chan struct{}

	wg sync.WaitGroup
}

// NewListener creates a listener for cfg.ListenAddress.
func NewListener(cfg *config.IngestConfig, pipeline *Pipeline) *Listener {
	maxConns := cfg.MaxConnections
	if maxConns <= 0 {
		maxConns = 1024
	}
	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &Listener{
		address:         cfg.ListenAddress,
		pipeline:        pipeline,
		sem:             semaphore.NewWeighted(maxConns),
		maxConnections:  maxConns,
		shutdownTimeout: shutdownTimeout,
		conns:           make(map[net.Conn]struct{}),
		ready:           make(chan struct{}),
	}
}

// Serve binds the listen address and accepts until ctx is canceled.
// It implements suture.Service.
func (l *Listener) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", l.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.address, err)
	}
	return l.ServeListener(ctx, ln)
}

// ServeListener accepts on ln until ctx is canceled, then closes ln and all
// active connections and waits for their handlers. ln is always closed and
// Addr reports nil once it returns.
func (l *Listener) ServeListener(ctx context.Context, ln net.Listener) error {
	l.mu.Lock()
	l.addr = ln.Addr()
	l.mu.Unlock()
	l.signalReady()

	logging.Info().
		Str("address", ln.Addr().String()).
		Int64("max_connections", l.maxConnections).
		Msg("Ingest listener started")

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	err := l.acceptLoop(ctx, ln)
	_ = ln.Close()

	l.closeActive()
	l.waitHandlers()

	l.mu.Lock()
	l.addr = nil
	l.mu.Unlock()

	logging.Info().Str("address", ln.Addr().String()).Msg("Ingest listener stopped")

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (l *Listener) acceptLoop(ctx context.Context, ln net.Listener) error {
	var backoff time.Duration

	for {
		waitStart := time.Now()
		if err := l.sem.Acquire(ctx, 1); err != nil {
			return nil // ctx canceled
		}
		metrics.RecordAdmissionWait(time.Since(waitStart))

		conn, err := ln.Accept()
		if err != nil {
			l.sem.Release(1)

			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}

			if backoff == 0 {
				backoff = minAcceptBackoff
			} else {
				backoff = min(backoff*2, maxAcceptBackoff)
			}
			logging.Warn().Err(err).Dur("retry_in", backoff).Msg("Accept failed")

			select {
			case <-time.After(backoff):
				continue
			case <-ctx.Done():
				return nil
			}
		}
		backoff = 0

		l.track(conn)
		l.wg.Add(1)
		go l.handle(ctx, conn)
	}
}

// handle runs the pipeline for one connection and releases its slot.
func (l *Listener) handle(ctx context.Context, conn net.Conn) {
	defer l.wg.Done()
	defer l.sem.Release(1)
	defer l.untrack(conn)

	connCtx := logging.ConnectionContext(ctx, conn.RemoteAddr().String())

	metrics.RecordConnectionOpened()
	logging.Ctx(connCtx).Info().Msg("Connection accepted")

	reason := l.pipeline.HandleConnection(connCtx, conn)
	metrics.RecordConnectionClosed(reason)

	if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		logging.Ctx(connCtx).Debug().Err(err).Msg("Error closing connection")
	}
}

func (l *Listener) track(conn net.Conn) {
	l.mu.Lock()
	l.conns[conn] = struct{}{}
	l.mu.Unlock()
}

func (l *Listener) untrack(conn net.Conn) {
	l.mu.Lock()
	delete(l.conns, conn)
	l.mu.Unlock()
}

// closeActive closes every tracked connection, unblocking handler reads.
func (l *Listener) closeActive() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.conns) > 0 {
		logging.Info().Int("connections", len(l.conns)).Msg("Closing active connections")
	}
	for conn := range l.conns {
		_ = conn.Close()
	}
}

// waitHandlers waits for handler goroutines, up to shutdownTimeout.
func (l *Listener) waitHandlers() {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(l.shutdownTimeout):
		logging.Warn().Dur("timeout", l.shutdownTimeout).Msg("Timed out waiting for connection handlers")
	}
}

func (l *Listener) signalReady() {
	select {
	case <-l.ready:
	default:
		close(l.ready)
	}
}

// Ready is closed once the listener is bound.
func (l *Listener) Ready() <-chan struct{} {
	return l.ready
}

// Addr returns the bound address, or nil while the listener is not bound.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.addr
}

// ActiveConnections returns the number of connections being handled.
func (l *Listener) ActiveConnections() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.conns)
}

// String implements fmt.Stringer for supervisor logs.
func (l *Listener) String() string {
	return "ingest-listener"
}
