// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package session

import (
	"context"

	"github.com/tomtom215/dataconsole/internal/logging"
)

// qrPrefix turns the base64 payload of /auth/otp/generate into a data URI.
const qrPrefix = "data:image/png;base64,"

// Enable2FA enrolls a one-time password and resynchronizes the session.
func (m *Machine) Enable2FA(ctx context.Context, otp string) error {
	if err := m.backend.EnableOTP(ctx, otp); err != nil {
		return err
	}
	m.Refresh(ctx)
	return nil
}

// Disable2FA removes the current user's one-time password. Failures are
// logged and otherwise ignored.
func (m *Machine) Disable2FA(ctx context.Context) {
	if err := m.backend.DisableOTP(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to disable 2FA")
		return
	}
	m.Refresh(ctx)
}

// DisableUser2FA removes another user's one-time password. Failures are
// logged and otherwise ignored.
func (m *Machine) DisableUser2FA(ctx context.Context, userID string) {
	if err := m.backend.DisableUserOTP(ctx, userID); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", logging.SanitizeUserID(userID)).Msg("Failed to disable user 2FA")
	}
}

// GenerateQRCode returns the OTP enrollment QR code as a PNG data URI, or ""
// when it cannot be generated.
func (m *Machine) GenerateQRCode(ctx context.Context) string {
	payload, err := m.backend.GenerateOTP(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to generate OTP QR code")
		return ""
	}
	return qrPrefix + payload
}

// UnlockUser clears a locked-out account. Failures are logged and otherwise
// ignored.
func (m *Machine) UnlockUser(ctx context.Context, userID string) {
	if err := m.backend.Unlock(ctx, userID); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", logging.SanitizeUserID(userID)).Msg("Failed to unlock user")
	}
}

// UpdatePassword changes the current user's password, reloads the user and
// clears MustChangePassword.
func (m *Machine) UpdatePassword(ctx context.Context, password string) error {
	if err := m.backend.UpdatePassword(ctx, password); err != nil {
		return err
	}
	if err := m.update(ctx, m.Snapshot().AccessToken); err != nil {
		return err
	}
	m.mutate(func(s *State) { s.MustChangePassword = false })
	return nil
}

// NewPassword completes a token-based password reset and clears
// MustChangePassword.
func (m *Machine) NewPassword(ctx context.Context, token, password string) error {
	if err := m.backend.ResetPassword(ctx, token, password); err != nil {
		return err
	}
	m.mutate(func(s *State) { s.MustChangePassword = false })
	return nil
}

// SendResetEmail asks the backend to mail a reset link to username.
func (m *Machine) SendResetEmail(ctx context.Context, username string) error {
	return m.backend.ForgotPassword(ctx, username)
}
