// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/dataconsole/internal/models"
)

// maxErrorBody caps how much of a failed response is inspected.
const maxErrorBody = 64 * 1024

// TransportError is a failed backend call: a network error, a rejected
// request, or a non-2xx response.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int

	// Detail is the backend's structured error message, if any.
	Detail string

	Err error
}

// Error returns Detail when the backend supplied one.
func (e *TransportError) Error() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s: unexpected status %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	default:
		return fmt.Sprintf("%s %s failed", e.Method, e.Path)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ClientError reports whether the backend rejected the request itself (4xx).
func (e *TransportError) ClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// Rejected reports whether the circuit breaker refused the call.
func (e *TransportError) Rejected() bool {
	return errors.Is(e.Err, gobreaker.ErrOpenState) || errors.Is(e.Err, gobreaker.ErrTooManyRequests)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

func newStatusError(rc *requestConfig, status int, body []byte) *TransportError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	te := &TransportError{Method: rc.method, Path: rc.path, StatusCode: status}
	var eb models.ErrorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		te.Detail = eb.Message()
	}
	return te
}
