// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/dataconsole/internal/logging"
	"github.com/tomtom215/dataconsole/internal/metrics"
)

// maxResponseBody is the default cap on a response; query results can be
// large.
const maxResponseBody = 32 << 20

// formField is one multipart field. Order is preserved on the wire.
type formField struct {
	name  string
	value string
}

// requestConfig holds configuration for building HTTP requests
type requestConfig struct {
	method   string
	path     string
	endpoint string // route template used as the metrics label
	query    url.Values
	body     any         // JSON body
	form     []formField // multipart body; ignored when body is set
}

type response struct {
	status int
	body   []byte
}

// encode returns the request body and its content type.
func (rc *requestConfig) encode() (io.Reader, string, error) {
	switch {
	case rc.body != nil:
		data, err := json.Marshal(rc.body)
		if err != nil {
			return nil, "", fmt.Errorf("encode body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	case rc.form != nil:
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		for _, f := range rc.form {
			if err := mw.WriteField(f.name, f.value); err != nil {
				return nil, "", fmt.Errorf("encode form field %s: %w", f.name, err)
			}
		}
		if err := mw.Close(); err != nil {
			return nil, "", fmt.Errorf("encode form: %w", err)
		}
		return &buf, mw.FormDataContentType(), nil
	default:
		return http.NoBody, "", nil
	}
}

// do executes rc and decodes a JSON response into result when non-nil.
func (c *Client) do(ctx context.Context, rc requestConfig, result any) error {
	resp, err := c.execute(ctx, &rc)
	if err != nil {
		return err
	}
	if result == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, result); err != nil {
		return &TransportError{
			Method:     rc.method,
			Path:       rc.path,
			StatusCode: resp.status,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}

// execute runs rc through the rate limiter and the circuit breaker.
func (c *Client) execute(ctx context.Context, rc *requestConfig) (*response, error) {
	if err := c.wait(ctx); err != nil {
		return nil, &TransportError{Method: rc.method, Path: rc.path, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	resp, err := c.breaker.Execute(func() (*response, error) {
		return c.roundTrip(ctx, rc)
	})

	result := breakerResult(err)
	metrics.CircuitBreakerRequests.WithLabelValues(c.name, result).Inc()
	if err != nil {
		var te *TransportError
		if !errors.As(err, &te) {
			err = &TransportError{Method: rc.method, Path: rc.path, Err: err}
		}
		event := logging.Ctx(ctx).Warn()
		if result == "client_error" {
			event = logging.Ctx(ctx).Debug()
		}
		event.Err(err).
			Str("method", rc.method).
			Str("endpoint", rc.endpoint).
			Int("status", StatusCode(err)).
			Msg("Backend request failed")
		return nil, err
	}
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, rc *requestConfig) (*response, error) {
	body, contentType, err := rc.encode()
	if err != nil {
		return nil, &TransportError{Method: rc.method, Path: rc.path, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, rc.method, c.baseURL+rc.path, body)
	if err != nil {
		return nil, &TransportError{Method: rc.method, Path: rc.path, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header = c.headerSnapshot()
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(logging.CorrelationHeader, id)
	}
	if len(rc.query) > 0 {
		req.URL.RawQuery = rc.query.Encode()
	}

	metrics.TrackActiveRequest(true)
	defer metrics.TrackActiveRequest(false)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordAPIRequest(rc.method, rc.endpoint, 0, time.Since(start))
		return nil, &TransportError{Method: rc.method, Path: rc.path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	metrics.RecordAPIRequest(rc.method, rc.endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, &TransportError{Method: rc.method, Path: rc.path, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if int64(len(data)) > c.maxBody {
		return nil, &TransportError{Method: rc.method, Path: rc.path, StatusCode: resp.StatusCode, Err: fmt.Errorf("response exceeds %d bytes", c.maxBody)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(rc, resp.StatusCode, data)
	}
	return &response{status: resp.StatusCode, body: data}, nil
}
