// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package mockapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/dataconsole/internal/logging"
	"github.com/tomtom215/dataconsole/internal/models"
)

// qrPNG is a 1x1 PNG returned by /auth/otp/generate.
const qrPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="

const (
	purposeAccess = "access"
	purposeReset  = "reset"
)

type account struct {
	user        models.User
	hash        []byte
	otpEnabled  bool
	attempts    int
	lockedUntil time.Time
}

type tokenClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

type userKey struct{}

// AddUser registers an account and returns its id.
func (s *Server) AddUser(username, password string, permissions map[string]bool) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password for %s: %w", username, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[username]; exists {
		return "", fmt.Errorf("user %s already exists", username)
	}
	id := uuid.NewString()
	perms := make(map[string]bool, len(permissions))
	for k, v := range permissions {
		perms[k] = v
	}
	s.accounts[id] = &account{
		user: models.User{
			ID:          id,
			Username:    username,
			Enabled:     true,
			Permissions: perms,
			Created:     models.Timestamp{Time: s.now().UTC()},
		},
		hash: hash,
	}
	s.byName[username] = id
	return id, nil
}

// UserID returns the id of username.
func (s *Server) UserID(username string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byName[username]
	return id, ok
}

// SetPasswordUpdated backdates a user's last password change.
func (s *Server) SetPasswordUpdated(userID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[userID]; ok {
		a.user.PasswordLastUpdated = &models.Timestamp{Time: at.UTC()}
	}
}

// SetOTPEnabled turns one-time passwords on or off for a user.
func (s *Server) SetOTPEnabled(userID string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[userID]; ok {
		a.otpEnabled = enabled
	}
}

// ResetToken returns the last reset token mailed to username.
func (s *Server) ResetToken(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resetTokens[username]
}

func (s *Server) mint(userID, purpose string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(ttl)
	claims := tokenClaims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

func (s *Server) parse(token, purpose string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.Purpose != purpose {
		return nil, errors.New("token purpose mismatch")
	}
	return claims, nil
}

func (s *Server) issue(w http.ResponseWriter, userID string) {
	token, exp, err := s.mint(userID, purposeAccess, s.cfg.TokenTTL)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Unable to create token")
		return
	}
	writeJSON(w, http.StatusOK, models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Expires:     &models.Timestamp{Time: exp.UTC()},
		UserID:      userID,
	})
}

// authenticate admits requests carrying a valid, unrevoked access token.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		claims, err := s.parse(raw, purposeAccess)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		s.mu.Lock()
		_, exists := s.accounts[claims.Subject]
		revoked := s.revoked[claims.ID]
		s.mu.Unlock()
		if !exists || revoked {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		ctx := context.WithValue(r.Context(), userKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := currentClaims(r)
		s.mu.Lock()
		a := s.accounts[claims.Subject]
		admin := a != nil && a.user.Permissions[models.PermissionAdmin]
		s.mu.Unlock()
		if !admin {
			writeDetail(w, http.StatusForbidden, "Not authorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentClaims(r *http.Request) *tokenClaims {
	c, _ := r.Context().Value(userKey{}).(*tokenClaims)
	return c
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Expected multipart form")
		return
	}
	username := r.FormValue("username")
	password := r.FormValue("password")
	otp := r.FormValue("otp")

	s.mu.Lock()
	id, ok := s.byName[username]
	var a *account
	if ok {
		a = s.accounts[id]
	}
	if a == nil {
		s.mu.Unlock()
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	now := s.now()
	if now.Before(a.lockedUntil) {
		s.mu.Unlock()
		writeDetail(w, http.StatusUnauthorized, "Account locked")
		return
	}
	hash := append([]byte(nil), a.hash...)
	s.mu.Unlock()

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		s.recordFailure(id)
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	s.mu.Lock()
	enabled, otpEnabled := a.user.Enabled, a.otpEnabled
	s.mu.Unlock()
	if !enabled {
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if otpEnabled && otp == "" {
		s.recordFailure(id)
		writeJSON(w, http.StatusOK, models.TokenResponse{OTPRequired: true})
		return
	}
	if otpEnabled && otp != s.cfg.OTPCode {
		s.recordFailure(id)
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	s.mu.Lock()
	a.attempts = 0
	a.lockedUntil = time.Time{}
	s.mu.Unlock()

	s.issue(w, id)
}

func (s *Server) recordFailure(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accounts[userID]
	a.attempts++
	if a.attempts >= MaxLoginAttempts {
		a.lockedUntil = s.now().Add(LockoutDuration)
		componentLog().Info().Str("user_id", logging.SanitizeUserID(userID)).Msg("Account locked")
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.issue(w, currentClaims(r).Subject)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.revoked[currentClaims(r).ID] = true
	s.mu.Unlock()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleOTPCheck(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	enabled := s.accounts[currentClaims(r).Subject].otpEnabled
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, models.OTPCheck{OTPEnabled: enabled})
}

func (s *Server) handleOTPEnable(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Expected multipart form")
		return
	}
	if s.cfg.OTPCode == "" || r.FormValue("otp") != s.cfg.OTPCode {
		writeDetail(w, http.StatusUnauthorized, "Invalid OTP passcode")
		return
	}
	s.SetOTPEnabled(currentClaims(r).Subject, true)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleOTPDisable(w http.ResponseWriter, r *http.Request) {
	s.SetOTPEnabled(currentClaims(r).Subject, false)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleOTPDisableUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	s.mu.Lock()
	a, ok := s.accounts[id]
	if ok {
		a.otpEnabled = false
	}
	s.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "No user found")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleOTPGenerate(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write([]byte(qrPNG))
}

func (s *Server) handleSelf(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	u := s.accounts[currentClaims(r).Subject].user
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var body models.PasswordChange
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "password is required")
		return
	}
	if err := s.setPassword(currentClaims(r).Subject, body.Password); err != nil {
		writeDetail(w, http.StatusInternalServerError, "Unable to update password")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) setPassword(userID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[userID]
	if !ok {
		return errors.New("no such user")
	}
	a.hash = hash
	a.user.PasswordLastUpdated = &models.Timestamp{Time: s.now().UTC()}
	return nil
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	s.mu.Lock()
	id, ok := s.byName[username]
	s.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusBadRequest, "Invalid user")
		return
	}

	token, _, err := s.mint(id, purposeReset, ResetTokenTTL)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Unable to create token")
		return
	}
	s.mu.Lock()
	s.resetTokens[username] = token
	s.mu.Unlock()

	componentLog().Info().Str("username", logging.SanitizeUsername(username)).Msg("Password reset email queued")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var body models.PasswordReset
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Token == "" || body.Password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "token and password are required")
		return
	}
	claims, err := s.parse(body.Token, purposeReset)
	if errors.Is(err, jwt.ErrTokenExpired) {
		writeDetail(w, http.StatusBadRequest, "Token expired")
		return
	}
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid token")
		return
	}
	if err := s.setPassword(claims.Subject, body.Password); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid token")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	s.mu.Lock()
	a, ok := s.accounts[id]
	if ok {
		a.attempts = 0
		a.lockedUntil = time.Time{}
	}
	s.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "No user found")
		return
	}
	w.WriteHeader(http.StatusOK)
}
