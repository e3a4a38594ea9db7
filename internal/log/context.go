// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package log provides structured logging utilities.
package log

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// scope carries the identifiers that follow a request through the engine.
// It is stored by value; every With* call copies it.
type scope struct {
	requestID     string
	coordinatorID string
	agentID       string
}

type scopeKey struct{}

func scopeFrom(ctx context.Context) scope {
	if ctx == nil {
		return scope{}
	}
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

func withScope(ctx context.Context, mutate func(*scope)) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	s := scopeFrom(ctx)
	mutate(&s)
	return context.WithValue(ctx, scopeKey{}, s)
}

// ContextWithRequestID tags ctx with the inbound request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return withScope(ctx, func(s *scope) { s.requestID = id })
}

// ContextWithCoordinatorID tags ctx with the coordinator a call acts for.
func ContextWithCoordinatorID(ctx context.Context, id string) context.Context {
	return withScope(ctx, func(s *scope) { s.coordinatorID = id })
}

// ContextWithAgentID tags ctx with the agent under evaluation.
func ContextWithAgentID(ctx context.Context, id string) context.Context {
	return withScope(ctx, func(s *scope) { s.agentID = id })
}

func RequestIDFromContext(ctx context.Context) string     { return scopeFrom(ctx).requestID }
func CoordinatorIDFromContext(ctx context.Context) string { return scopeFrom(ctx).coordinatorID }
func AgentIDFromContext(ctx context.Context) string       { return scopeFrom(ctx).agentID }

// WithContext adds the scope identifiers and the active trace/span IDs of ctx
// to logger. Empty identifiers are omitted.
func WithContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	if ctx == nil {
		return logger
	}
	s := scopeFrom(ctx)
	sc := trace.SpanContextFromContext(ctx)
	if s == (scope{}) && !sc.IsValid() {
		return logger
	}

	b := logger.With()
	for _, f := range [...]struct{ key, val string }{
		{FieldRequestID, s.requestID},
		{FieldCoordinatorID, s.coordinatorID},
		{FieldAgentID, s.agentID},
	} {
		if f.val != "" {
			b = b.Str(f.key, f.val)
		}
	}
	if sc.IsValid() {
		b = b.Str(FieldTraceID, sc.TraceID().String()).Str(FieldSpanID, sc.SpanID().String())
	}
	return b.Logger()
}

// WithComponentFromContext is WithContext over the named component logger.
func WithComponentFromContext(ctx context.Context, component string) zerolog.Logger {
	return WithContext(ctx, WithComponent(component))
}
