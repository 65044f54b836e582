// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package session

import (
	"errors"
	"time"

	"github.com/tomtom215/dataconsole/internal/models"
)

// Status is the lifecycle state derived from the session fields.
type Status int

const (
	Anonymous Status = iota
	Authenticating
	Authenticated
	OTPPending
	PasswordExpired
)

func (s Status) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case OTPPending:
		return "otp_pending"
	case PasswordExpired:
		return "password_expired"
	default:
		return "anonymous"
	}
}

// State is a snapshot of the session fields.
type State struct {
	IsAuthenticated    bool
	AccessToken        string
	User               *models.User
	OTPRequired        bool
	MustChangePassword bool
}

// InputEvent is a user input observed by the idle tracker.
type InputEvent int

const (
	PointerMove InputEvent = iota + 1
	KeyPress
	// Other inputs are ignored by the idle tracker.
	Other
)

var (
	// ErrOTPRequired is returned by Login when the account needs a one-time
	// password that was not supplied or not accepted.
	ErrOTPRequired = errors.New("OTP Required")

	// ErrAuthExpired wraps every failure to load the user behind a token.
	ErrAuthExpired = errors.New("Unable to update user") //nolint:staticcheck // user-facing message
)

// Config holds the session timings.
type Config struct {
	RefreshInterval time.Duration
	IdleTimeout     time.Duration
	PasswordMaxAge  time.Duration
	StoreKey        string
}

// DefaultConfig returns the standard timings: refresh every 10 minutes,
// log out after 30 idle minutes, passwords expire after 90 days.
func DefaultConfig() Config {
	return Config{
		RefreshInterval: 10 * time.Minute,
		IdleTimeout:     30 * time.Minute,
		PasswordMaxAge:  90 * 24 * time.Hour,
		StoreKey:        "vims.auth",
	}
}

// persisted is the durable subset of State.
type persisted struct {
	IsAuthenticated bool    `json:"isAuthenticated"`
	AccessToken     *string `json:"accessToken"`
}
