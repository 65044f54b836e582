// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tomtom215/dataconsole/internal/models"
	"github.com/tomtom215/dataconsole/internal/validation"
)

// Self fetches the current user's profile and permissions.
func (c *Client) Self(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, requestConfig{
		method:   http.MethodGet,
		path:     "/user/self",
		endpoint: "/user/self",
	}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdatePassword changes the current user's password.
func (c *Client) UpdatePassword(ctx context.Context, password string) error {
	body := models.PasswordChange{Password: password}
	if err := validation.Struct(&body); err != nil {
		return fmt.Errorf("invalid password change: %w", err)
	}
	return c.do(ctx, requestConfig{
		method:   http.MethodPut,
		path:     "/user/self/password",
		endpoint: "/user/self/password",
		body:     body,
	}, nil)
}

// ResetPassword sets a new password using an emailed reset token.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	body := models.PasswordReset{Token: token, Password: password}
	if err := validation.Struct(&body); err != nil {
		return fmt.Errorf("invalid password reset: %w", err)
	}
	return c.do(ctx, requestConfig{
		method:   http.MethodPost,
		path:     "/user/reset-password",
		endpoint: "/user/reset-password",
		body:     body,
	}, nil)
}

// ForgotPassword asks the backend to email a reset link.
func (c *Client) ForgotPassword(ctx context.Context, username string) error {
	return c.do(ctx, requestConfig{
		method:   http.MethodPost,
		path:     "/user/forgot-password",
		endpoint: "/user/forgot-password",
		query:    url.Values{"username": []string{username}},
	}, nil)
}

// Unlock clears a user's failed-login lockout.
func (c *Client) Unlock(ctx context.Context, userID string) error {
	return c.do(ctx, requestConfig{
		method:   http.MethodGet,
		path:     "/user/unlock/" + url.PathEscape(userID),
		endpoint: "/user/unlock/{id}",
	}, nil)
}
