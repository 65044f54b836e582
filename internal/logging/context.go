// Dataconsole - Dataset Query and Session Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataconsole

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey int

const (
	correlationKey ctxKey = iota
	loggerKey
)

// CorrelationHeader carries the correlation ID on backend requests.
const CorrelationHeader = "X-Request-ID"

// GenerateCorrelationID returns a short random ID. Eight hex characters are
// enough to tie together the requests of one command.
func GenerateCorrelationID() string {
	return uuid.NewString()[:8]
}

// ContextWithCorrelationID attaches id to ctx.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey, id)
}

// ContextWithNewCorrelationID attaches a freshly generated ID to ctx.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, GenerateCorrelationID())
}

// CorrelationIDFromContext returns the ID attached to ctx, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey).(string)
	return id
}

// ContextWithLogger makes l the logger Ctx returns for ctx.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// LoggerFromContext returns the logger stored in ctx, falling back to the
// package logger.
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return l
	}
	return Logger()
}

// Ctx returns the context's logger with its correlation ID attached.
//
//	logging.Ctx(ctx).Debug().Str("dataset_id", id).Msg("Dataset inactive")
func Ctx(ctx context.Context) *zerolog.Logger {
	l := LoggerFromContext(ctx)
	if id := CorrelationIDFromContext(ctx); id != "" {
		l = l.With().Str("correlation_id", id).Logger()
	}
	return &l
}
