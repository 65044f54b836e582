// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package models

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// PermissionAdmin grants every permission.
const PermissionAdmin = "admin"

// User is the profile returned by GET /user/self.
type User struct {
	ID                  string          `json:"id"`
	Username            string          `json:"username"`
	FirstName           string          `json:"first_name,omitempty"`
	LastName            string          `json:"last_name,omitempty"`
	Email               string          `json:"email,omitempty"`
	Organization        string          `json:"organization,omitempty"`
	PhoneNumber         string          `json:"phone_number,omitempty"`
	Enabled             bool            `json:"enabled"`
	Roles               map[string]bool `json:"roles,omitempty"`
	Groups              []string        `json:"groups,omitempty"`
	Permissions         map[string]bool `json:"permissions"`
	Created             Timestamp       `json:"created"`
	PasswordLastUpdated *Timestamp      `json:"password_last_updated,omitempty"`
	LastModified        *Timestamp      `json:"last_modified,omitempty"`
}

// HasAny reports whether the user holds admin or any of the named
// permissions. A nil user holds nothing.
func (u *User) HasAny(names ...string) bool {
	if u == nil {
		return false
	}
	if u.Permissions[PermissionAdmin] {
		return true
	}
	for _, name := range names {
		if u.Permissions[name] {
			return true
		}
	}
	return false
}

// PasswordChangedAt returns when the password was last set: the last update
// if there was one, otherwise the account creation time.
func (u *User) PasswordChangedAt() time.Time {
	if u.PasswordLastUpdated != nil && !u.PasswordLastUpdated.IsZero() {
		return u.PasswordLastUpdated.Time
	}
	return u.Created.Time
}

// PasswordExpired reports whether more than maxAge has elapsed since the
// password was last set. The boundary itself is not expired.
func (u *User) PasswordExpired(now time.Time, maxAge time.Duration) bool {
	return now.Sub(u.PasswordChangedAt()) > maxAge
}

// DisplayName returns "First Last" or the username when no name is set.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// TokenResponse is returned by /auth/login and /auth/refresh. A login that
// needs a one-time password returns only OTPRequired.
type TokenResponse struct {
	AccessToken string     `json:"access_token,omitempty"`
	TokenType   string     `json:"token_type,omitempty"`
	Expires     *Timestamp `json:"expires,omitempty"`
	UserID      string     `json:"user_id,omitempty"`
	OTPRequired bool       `json:"otp_required,omitempty"`
}

// OTPCheck is returned by /auth/otp/check.
type OTPCheck struct {
	OTPEnabled bool `json:"otp_enabled"`
}

// PasswordChange is the body of PUT /user/self/password.
type PasswordChange struct {
	Password string `json:"password" validate:"required"`
}

// PasswordReset is the body of POST /user/reset-password.
type PasswordReset struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ErrorBody is the structured error body of a failed request. Detail is a
// string for most errors and a list of field errors for request validation
// failures.
type ErrorBody struct {
	Detail json.RawMessage `json:"detail,omitempty"`
}

// Message returns Detail as text. List details are joined by "; ".
func (b *ErrorBody) Message() string {
	if len(b.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(b.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(b.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return string(b.Detail)
}
