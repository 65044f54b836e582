// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/dataconsole/internal/config"
	"github.com/tomtom215/dataconsole/internal/filter"
	"github.com/tomtom215/dataconsole/internal/logging"
	"github.com/tomtom215/dataconsole/internal/metrics"
	"github.com/tomtom215/dataconsole/internal/models"
)

func testConfig(baseURL string) config.APIConfig {
	return config.APIConfig{
		BaseURL:             baseURL,
		Timeout:             5 * time.Second,
		BreakerFailureRatio: 0.6,
		BreakerMinRequests:  5,
		BreakerTimeout:      time.Minute,
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(testConfig(srv.URL), append([]Option{WithBreakerName(t.Name())}, opts...)...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_LoginMultipart(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("Content-Type = %q, want multipart", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm() error = %v", err)
			return
		}
		got := map[string]string{
			"username": r.FormValue("username"),
			"password": r.FormValue("password"),
			"otp":      r.FormValue("otp"),
		}
		want := map[string]string{"username": "ana", "password": "pw", "otp": "123456"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("form mismatch (-want +got):\n%s", diff)
		}
		writeJSON(w, http.StatusOK, map[string]any{"access_token": "tok", "token_type": "bearer", "user_id": "u1"})
	})

	tok, err := c.Login(context.Background(), "ana", "pw", "123456")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if tok.AccessToken != "tok" || tok.UserID != "u1" || tok.OTPRequired {
		t.Errorf("Login() = %+v", tok)
	}
}

func TestClient_LoginOTPRequired(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"otp_required": true})
	})

	tok, err := c.Login(context.Background(), "ana", "pw", "")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !tok.OTPRequired || tok.AccessToken != "" {
		t.Errorf("Login() = %+v, want otp_required only", tok)
	}
}

func TestClient_ErrorDetail(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Invalid credentials"})
	})

	_, err := c.Login(context.Background(), "ana", "bad", "")
	if err == nil {
		t.Fatal("Login() error = nil")
	}
	if err.Error() != "Invalid credentials" {
		t.Errorf("Error() = %q, want backend detail verbatim", err.Error())
	}
	if !IsUnauthorized(err) {
		t.Errorf("IsUnauthorized(%v) = false", err)
	}
	var te *TransportError
	if !errors.As(err, &te) || te.Path != "/auth/login" || te.Method != http.MethodPost {
		t.Errorf("error = %#v, want *TransportError for POST /auth/login", err)
	}
}

func TestTransportError_Error(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	tests := []struct {
		name string
		err  *TransportError
		want string
	}{
		{"detail wins", &TransportError{Method: "GET", Path: "/x", StatusCode: 400, Detail: "bad", Err: cause}, "bad"},
		{"cause", &TransportError{Method: "GET", Path: "/x", Err: cause}, "GET /x: connection refused"},
		{"status", &TransportError{Method: "GET", Path: "/x", StatusCode: 503}, "GET /x: unexpected status 503 Service Unavailable"},
		{"bare", &TransportError{Method: "GET", Path: "/x"}, "GET /x failed"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("%s: Error() = %q, want %q", tt.name, got, tt.want)
		}
	}
	if !errors.Is(tests[1].err, cause) {
		t.Error("TransportError does not unwrap to its cause")
	}
}

func TestClient_Authorization(t *testing.T) {
	t.Parallel()

	var seen atomic.Value
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Get("Authorization"))
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "u1", "username": "ana", "permissions": map[string]bool{}})
	})
	ctx := context.Background()

	if _, err := c.Self(ctx); err != nil {
		t.Fatalf("Self() error = %v", err)
	}
	if got := seen.Load().(string); got != "" {
		t.Errorf("Authorization before SetAuthorization = %q", got)
	}

	c.SetAuthorization("abc")
	if c.Authorization() != "abc" {
		t.Errorf("Authorization() = %q, want abc", c.Authorization())
	}
	if _, err := c.Self(ctx); err != nil {
		t.Fatalf("Self() error = %v", err)
	}
	if got := seen.Load().(string); got != "Bearer abc" {
		t.Errorf("Authorization = %q, want Bearer abc", got)
	}

	c.ClearAuthorization()
	if _, err := c.Self(ctx); err != nil {
		t.Fatalf("Self() error = %v", err)
	}
	if got := seen.Load().(string); got != "" {
		t.Errorf("Authorization after ClearAuthorization = %q", got)
	}
}

func TestClient_CorrelationID(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Request-ID"); got != "corr-1" {
			t.Errorf("X-Request-ID = %q, want corr-1", got)
		}
		w.WriteHeader(http.StatusAccepted)
	})

	ctx := logging.ContextWithCorrelationID(context.Background(), "corr-1")
	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
}

func TestClient_QueryDatasetRaw(t *testing.T) {
	t.Parallel()

	const body = `[{"total":2,"values":[{"state":"VA","count":7}]}]`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dataset/ds 1/query" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var got map[string]any
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}
		want := map[string]any{
			"request":  map[string]any{"$and": []any{map[string]any{"state": map[string]any{"$eq": "VA"}}}},
			"group_by": map[string]any{"fields": []any{"state"}, "aggregators": map[string]any{"count": map[string]any{"field": "id", "function": "count"}}},
			"limit":    float64(10),
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("query body mismatch (-want +got):\n%s", diff)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	})

	req := filter.And(filter.Pred("state", filter.OpEq, "VA"))
	limit := 10
	q := models.DatasetQuery{
		Request: &req,
		GroupBy: &models.GroupBy{
			Fields:      []string{"state"},
			Aggregators: map[string]models.Aggregator{"count": {Field: "id", Function: "count"}},
		},
		Limit: &limit,
	}
	res, err := c.QueryDataset(context.Background(), "ds 1", q)
	if err != nil {
		t.Fatalf("QueryDataset() error = %v", err)
	}
	if string(res.Data) != body {
		t.Errorf("Data = %s, want body verbatim", res.Data)
	}
}

func TestClient_Dataset(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dataset/d1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"id":"d1","is_active":false,"date_field":"visit_date",
			"fields":[{"data_field_name":"state","display_name":"State","data_field_type":"str","is_reference":true}],
			"base_query":{"request":{"$and":[{"state":{"$eq":"VA"}}]}}}`)
	})

	ds, err := c.Dataset(context.Background(), "d1")
	if err != nil {
		t.Fatalf("Dataset() error = %v", err)
	}
	if ds.IsActive || ds.DateField != "visit_date" || len(ds.Fields) != 1 || ds.BaseQuery.Request == nil {
		t.Errorf("Dataset() = %+v", ds)
	}
}

func TestClient_ResponseTooLarge(t *testing.T) {
	t.Parallel()

	body := `{"id":"d1","is_active":true}`
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, body)
	}, WithMaxResponseBody(int64(len(body)-1)))

	_, err := c.Dataset(context.Background(), "d1")
	var te *TransportError
	if !errors.As(err, &te) || te.StatusCode != http.StatusOK {
		t.Fatalf("Dataset() error = %v, want a TransportError", err)
	}
	if want := fmt.Sprintf("response exceeds %d bytes", len(body)-1); !strings.Contains(err.Error(), want) {
		t.Errorf("Dataset() error = %v, want %q", err, want)
	}

	exact := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, body)
	}, WithMaxResponseBody(int64(len(body))))
	if _, err := exact.Dataset(context.Background(), "d1"); err != nil {
		t.Errorf("Dataset() at the limit error = %v", err)
	}
}

func TestClient_GenerateOTP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"raw", "iVBORw0KGgo=\n"},
		{"json string", `"iVBORw0KGgo="`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "image/png")
				_, _ = io.WriteString(w, tt.body)
			})
			got, err := c.GenerateOTP(context.Background())
			if err != nil {
				t.Fatalf("GenerateOTP() error = %v", err)
			}
			if got != "iVBORw0KGgo=" {
				t.Errorf("GenerateOTP() = %q", got)
			}
		})
	}
}

func TestClient_ForgotPassword(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Query().Get("username") != "ana b" {
			t.Errorf("got %s %s", r.Method, r.URL.String())
		}
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	if err := c.ForgotPassword(context.Background(), "ana b"); err != nil {
		t.Fatalf("ForgotPassword() error = %v", err)
	}
}

func TestClient_PasswordBodies(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch r.URL.Path {
		case "/user/self/password":
			if r.Method != http.MethodPut || body["password"] != "n3w" {
				t.Errorf("update password: %s %v", r.Method, body)
			}
		case "/user/reset-password":
			if body["token"] != "t" || body["password"] != "n3w" {
				t.Errorf("reset password: %v", body)
			}
		}
		w.WriteHeader(http.StatusAccepted)
	})
	ctx := context.Background()

	if err := c.UpdatePassword(ctx, "n3w"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}
	if err := c.ResetPassword(ctx, "t", "n3w"); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}
	if err := c.UpdatePassword(ctx, ""); err == nil {
		t.Error("UpdatePassword(\"\") error = nil")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server calls = %d, want 2 (empty password rejected locally)", got)
	}
}

func TestClient_BreakerOpens(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.BreakerMinRequests = 2
	cfg.BreakerFailureRatio = 0.5
	c := New(cfg, WithBreakerName("test-breaker-opens"))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := c.DisableOTP(ctx); StatusCode(err) != http.StatusInternalServerError {
			t.Fatalf("call %d: error = %v, want 500", i, err)
		}
	}
	if c.BreakerState() != "open" {
		t.Fatalf("BreakerState() = %q, want open", c.BreakerState())
	}

	err := c.DisableOTP(ctx)
	var te *TransportError
	if !errors.As(err, &te) || !te.Rejected() {
		t.Fatalf("error = %v, want breaker rejection", err)
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2", hits.Load())
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-breaker-opens")); got != 2 {
		t.Errorf("breaker state gauge = %v, want 2", got)
	}
}

func TestClient_ClientErrorsKeepBreakerClosed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "No user found"})
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.BreakerMinRequests = 1
	c := New(cfg, WithBreakerName("test-breaker-4xx"))

	for i := 0; i < 5; i++ {
		if err := c.Unlock(context.Background(), "nobody"); err == nil || err.Error() != "No user found" {
			t.Fatalf("Unlock() error = %v", err)
		}
	}
	if c.BreakerState() != "closed" {
		t.Errorf("BreakerState() = %q, want closed", c.BreakerState())
	}
}

func TestClient_RequestMetrics(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/auth/otp/disable/{id}", "202")
	before := testutil.ToFloat64(counter)

	if err := c.DisableUserOTP(context.Background(), "u2"); err != nil {
		t.Fatalf("DisableUserOTP() error = %v", err)
	}
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("request counter delta = %v, want 1", got)
	}
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"otp_enabled": true})
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.RateLimit = 0.001
	cfg.RateBurst = 1
	c := New(cfg, WithBreakerName("test-rate-limit"))

	check, err := c.OTPCheck(context.Background())
	if err != nil || !check.OTPEnabled {
		t.Fatalf("OTPCheck() = %+v, %v", check, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.OTPCheck(ctx); err == nil {
		t.Fatal("OTPCheck() beyond the burst should fail on context deadline")
	}
}
