// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/dataconsole/internal/logging"
)

const defaultShutdownTimeout = 10 * time.Second

// HTTPServer is the part of *http.Server the service drives.
type HTTPServer interface {
	Serve(l net.Listener) error
	Shutdown(ctx context.Context) error
}

// HTTPServerService serves an HTTP server on addr under a supervisor. Each
// Serve call opens a fresh listener, so a bind failure is retried with the
// supervisor's backoff.
type HTTPServerService struct {
	name            string
	addr            string
	server          HTTPServer
	shutdownTimeout time.Duration

	mu    sync.Mutex
	bound string
}

// NewHTTPServerService returns a service serving server on addr. An empty
// name becomes "http-server" and a non-positive shutdownTimeout 10s.
func NewHTTPServerService(name, addr string, server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if name == "" {
		name = "http-server"
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	return &HTTPServerService{
		name:            name,
		addr:            addr,
		server:          server,
		shutdownTimeout: shutdownTimeout,
	}
}

// Serve listens, serves until ctx is done and then shuts the server down.
// A server that reports http.ErrServerClosed on its own is not restarted.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("%s listen on %s: %w", h.name, h.addr, err)
	}
	h.setBound(ln.Addr().String())
	defer h.setBound("")

	logging.Info().Str("service", h.name).Str("addr", ln.Addr().String()).Msg("HTTP server listening")

	done := make(chan error, 1)
	go func() { done <- h.server.Serve(ln) }()

	select {
	case err := <-done:
		if errors.Is(err, http.ErrServerClosed) {
			return suture.ErrDoNotRestart
		}
		return fmt.Errorf("%s failed: %w", h.name, err)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s shutdown: %w", h.name, err)
		}
		<-done
		return ctx.Err()
	}
}

// ListenAddr returns the bound address while the service is serving, or "".
func (h *HTTPServerService) ListenAddr() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bound
}

func (h *HTTPServerService) setBound(addr string) {
	h.mu.Lock()
	h.bound = addr
	h.mu.Unlock()
}

// String names the service in supervisor events.
func (h *HTTPServerService) String() string {
	return h.name
}
