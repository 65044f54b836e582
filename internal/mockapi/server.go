// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package mockapi

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/dataconsole/internal/config"
	"github.com/tomtom215/dataconsole/internal/logging"
	"github.com/tomtom215/dataconsole/internal/models"
)

// Lockout policy of the login endpoint.
const (
	MaxLoginAttempts = 5
	LockoutDuration  = 15 * time.Minute
	ResetTokenTTL    = time.Hour
)

// Server is an in-memory stand-in for the analytics backend.
type Server struct {
	cfg        config.MockConfig
	secret     []byte
	bcryptCost int
	now        func() time.Time
	handler    http.Handler
	seedData   bool

	mu          sync.Mutex
	accounts    map[string]*account // by user id
	byName      map[string]string
	datasets    map[string]*dataset
	revoked     map[string]bool // token ids
	resetTokens map[string]string
}

// Option configures a Server.
type Option func(*Server)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Server) { s.bcryptCost = cost }
}

// WithoutSeed starts the server with only the configured user and no
// datasets.
func WithoutSeed() Option {
	return func(s *Server) { s.seedData = false }
}

// New creates a server with the configured user as admin and the demo
// datasets.
func New(cfg config.MockConfig, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:         cfg,
		bcryptCost:  bcrypt.DefaultCost,
		seedData:    true,
		now:         time.Now,
		accounts:    make(map[string]*account),
		byName:      make(map[string]string),
		datasets:    make(map[string]*dataset),
		revoked:     make(map[string]bool),
		resetTokens: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.JWTSecret != "" {
		s.secret = []byte(cfg.JWTSecret)
	} else {
		s.secret = make([]byte, 32)
		if _, err := rand.Read(s.secret); err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
	}
	if s.cfg.TokenTTL <= 0 {
		s.cfg.TokenTTL = 15 * time.Minute
	}

	if _, err := s.AddUser(cfg.Username, cfg.Password, map[string]bool{models.PermissionAdmin: true}); err != nil {
		return nil, err
	}
	if s.seedData {
		if err := s.seed(); err != nil {
			return nil, err
		}
	}

	s.handler = s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if s.cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/refresh", s.handleRefresh)
			r.Get("/logout", s.handleLogout)
			r.Get("/otp/check", s.handleOTPCheck)
			r.Post("/otp/enable", s.handleOTPEnable)
			r.Get("/otp/disable", s.handleOTPDisable)
			r.Get("/otp/generate", s.handleOTPGenerate)
			r.With(s.requireAdmin).Get("/otp/disable/{userID}", s.handleOTPDisableUser)
		})
	})

	r.Route("/user", func(r chi.Router) {
		r.Post("/forgot-password", s.handleForgotPassword)
		r.Post("/reset-password", s.handleResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/self", s.handleSelf)
			r.Put("/self/password", s.handleUpdatePassword)
			r.With(s.requireAdmin).Get("/unlock/{userID}", s.handleUnlock)
		})
	})

	r.Route("/dataset/{datasetID}", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/", s.handleDataset)
		r.Post("/query", s.handleQuery)
	})

	return r
}

// requestLogger logs each request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		componentLog().Debug().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request served")
	})
}

func componentLog() *zerolog.Logger {
	l := logging.WithComponent("mockapi")
	return &l
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		componentLog().Warn().Err(err).Msg("Failed to write response")
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
