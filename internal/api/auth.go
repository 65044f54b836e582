// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/tomtom215/dataconsole/internal/models"
)

// Login exchanges credentials for a token. otp may be empty; a backend that
// needs one answers with OTPRequired set and no token.
func (c *Client) Login(ctx context.Context, username, password, otp string) (*models.TokenResponse, error) {
	var tok models.TokenResponse
	err := c.do(ctx, requestConfig{
		method:   http.MethodPost,
		path:     "/auth/login",
		endpoint: "/auth/login",
		form: []formField{
			{name: "username", value: username},
			{name: "password", value: password},
			{name: "otp", value: otp},
		},
	}, &tok)
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

// Refresh renews the current token.
func (c *Client) Refresh(ctx context.Context) (*models.TokenResponse, error) {
	var tok models.TokenResponse
	if err := c.do(ctx, requestConfig{
		method:   http.MethodGet,
		path:     "/auth/refresh",
		endpoint: "/auth/refresh",
	}, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Logout revokes the current token.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, requestConfig{
		method:   http.MethodGet,
		path:     "/auth/logout",
		endpoint: "/auth/logout",
	}, nil)
}

// OTPCheck reports whether one-time passwords are enabled for the user.
func (c *Client) OTPCheck(ctx context.Context) (*models.OTPCheck, error) {
	var check models.OTPCheck
	if err := c.do(ctx, requestConfig{
		method:   http.MethodGet,
		path:     "/auth/otp/check",
		endpoint: "/auth/otp/check",
	}, &check); err != nil {
		return nil, err
	}
	return &check, nil
}

// EnableOTP confirms enrollment with a code from the authenticator.
func (c *Client) EnableOTP(ctx context.Context, otp string) error {
	return c.do(ctx, requestConfig{
		method:   http.MethodPost,
		path:     "/auth/otp/enable",
		endpoint: "/auth/otp/enable",
		form:     []formField{{name: "otp", value: otp}},
	}, nil)
}

// DisableOTP turns one-time passwords off for the current user.
func (c *Client) DisableOTP(ctx context.Context) error {
	return c.do(ctx, requestConfig{
		method:   http.MethodGet,
		path:     "/auth/otp/disable",
		endpoint: "/auth/otp/disable",
	}, nil)
}

// DisableUserOTP turns one-time passwords off for another user.
func (c *Client) DisableUserOTP(ctx context.Context, userID string) error {
	return c.do(ctx, requestConfig{
		method:   http.MethodGet,
		path:     "/auth/otp/disable/" + url.PathEscape(userID),
		endpoint: "/auth/otp/disable/{id}",
	}, nil)
}

// GenerateOTP returns the enrollment QR code as base64-encoded PNG.
func (c *Client) GenerateOTP(ctx context.Context) (string, error) {
	resp, err := c.execute(ctx, &requestConfig{
		method:   http.MethodGet,
		path:     "/auth/otp/generate",
		endpoint: "/auth/otp/generate",
	})
	if err != nil {
		return "", err
	}
	body := bytes.TrimSpace(resp.body)
	// Some deployments wrap the payload in a JSON string.
	var s string
	if len(body) > 0 && body[0] == '"' && json.Unmarshal(body, &s) == nil {
		return s, nil
	}
	return string(body), nil
}
