// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// SessionEvent represents an authentication lifecycle event.
type SessionEvent struct {
	// Event is the type of event (e.g., "login_success", "logout", "token_refresh").
	Event string
	// UserID is the user's identifier (if known).
	UserID string
	// Username is the user's username (if known).
	Username string
	// Token is the access token involved, logged masked.
	Token string
	// Success indicates if the operation was successful.
	Success bool
	// Error is the error message if the operation failed.
	Error string
	// Details contains additional details, sanitized by key.
	Details map[string]string
}

// SessionLogger logs session lifecycle events with sensitive data masked.
type SessionLogger struct {
	logger zerolog.Logger
}

// NewSessionLogger creates a new session logger on top of the global logger.
func NewSessionLogger() *SessionLogger {
	return &SessionLogger{
		logger: With().Str("component", "session").Logger(),
	}
}

// NewSessionLoggerWithLogger creates a session logger with a custom zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSessionLoggerWithLogger(logger zerolog.Logger) *SessionLogger {
	return &SessionLogger{
		logger: logger.With().Str("component", "session").Logger(),
	}
}

// LogEvent logs a session event with automatic sanitization.
func (l *SessionLogger) LogEvent(event *SessionEvent) {
	e := l.logger.Info()
	if !event.Success {
		e = l.logger.Warn()
	}
	e = e.Str("event", event.Event)

	if event.Success {
		e = e.Str("status", "success")
	} else {
		e = e.Str("status", "failed")
	}

	if event.UserID != "" {
		e = e.Str("user_id", SanitizeUserID(event.UserID))
	}
	if event.Username != "" {
		e = e.Str("username", SanitizeUsername(event.Username))
	}
	if event.Token != "" {
		e = e.Str("token", SanitizeToken(event.Token))
	}
	if event.Error != "" && !event.Success {
		e = e.Str("error", SanitizeError(event.Error))
	}
	for k, v := range event.Details {
		e = e.Str(k, SanitizeValue(k, v))
	}

	e.Msg("")
}

// LogLoginSuccess logs a successful login.
func (l *SessionLogger) LogLoginSuccess(userID, username string) {
	l.LogEvent(&SessionEvent{
		Event:    "login_success",
		UserID:   userID,
		Username: username,
		Success:  true,
	})
}

// LogLoginFailure logs a failed login.
func (l *SessionLogger) LogLoginFailure(username, reason string) {
	l.LogEvent(&SessionEvent{
		Event:    "login_failed",
		Username: username,
		Success:  false,
		Error:    reason,
	})
}

// LogOTPRequired logs a login that stopped at the one-time-password step.
func (l *SessionLogger) LogOTPRequired(username string) {
	l.LogEvent(&SessionEvent{
		Event:    "otp_required",
		Username: username,
		Success:  false,
		Error:    "one-time password required",
	})
}

// LogTokenRefresh logs a silent token refresh attempt.
func (l *SessionLogger) LogTokenRefresh(userID string, success bool, errMsg string) {
	l.LogEvent(&SessionEvent{
		Event:   "token_refresh",
		UserID:  userID,
		Success: success,
		Error:   errMsg,
	})
}

// LogLogout logs a logout. Reason is "user", "idle", "refresh_failed" and so on.
func (l *SessionLogger) LogLogout(userID, reason string) {
	l.LogEvent(&SessionEvent{
		Event:   "logout",
		UserID:  userID,
		Success: true,
		Details: map[string]string{"reason": reason},
	})
}

// LogHydrated logs a session restored from durable storage.
func (l *SessionLogger) LogHydrated(token string, authenticated bool) {
	l.LogEvent(&SessionEvent{
		Event:   "session_hydrated",
		Token:   token,
		Success: authenticated,
		Error:   "stored session not authenticated",
	})
}

// ============================================================
// Sanitization Functions
// ============================================================

// SanitizeToken masks a token, showing only first and last 4 characters.
// Example: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..." -> "eyJh...kpXV"
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeUserID masks a user ID for privacy.
// Example: "user-12345678" -> "user...5678"
func SanitizeUserID(userID string) string {
	if userID == "" {
		return ""
	}
	if len(userID) <= 8 {
		return "***"
	}
	return userID[:4] + "..." + userID[len(userID)-4:]
}

// SanitizeUsername masks a username, keeping first 2 characters.
// Example: "johndoe" -> "jo***"
func SanitizeUsername(username string) string {
	if username == "" {
		return ""
	}
	if len(username) <= 2 {
		return "***"
	}
	return username[:2] + "***"
}

// SanitizeEmail masks an email address.
// Example: "john.doe@example.com" -> "jo***@example.com"
func SanitizeEmail(email string) string {
	if email == "" {
		return ""
	}

	atIndex := strings.Index(email, "@")
	if atIndex <= 0 {
		return "***"
	}

	localPart := email[:atIndex]
	domain := email[atIndex:]

	if len(localPart) <= 2 {
		return "***" + domain
	}
	return localPart[:2] + "***" + domain
}

// SanitizeError removes potentially sensitive information from error messages.
func SanitizeError(err string) string {
	sensitivePatterns := []string{
		"password",
		"secret",
		"token",
		"bearer",
		"authorization",
	}

	lowerErr := strings.ToLower(err)
	for _, pattern := range sensitivePatterns {
		if strings.Contains(lowerErr, pattern) {
			return "authentication error"
		}
	}

	return truncateString(err, 200)
}

// SanitizeValue sanitizes a value based on its key name.
func SanitizeValue(key, value string) string {
	sensitiveKeys := map[string]bool{
		"access_token":  true,
		"token":         true,
		"password":      true,
		"otp":           true,
		"authorization": true,
		"bearer":        true,
	}

	if sensitiveKeys[strings.ToLower(key)] {
		return SanitizeToken(value)
	}

	if strings.Contains(value, "@") && strings.Contains(value, ".") {
		return SanitizeEmail(value)
	}

	return value
}

// truncateString truncates a string to a maximum length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
