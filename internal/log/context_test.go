package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestContextIDs(t *testing.T) {
	tests := []struct {
		name string
		set  func(context.Context, string) context.Context
		get  func(context.Context) string
	}{
		{"request", ContextWithRequestID, RequestIDFromContext},
		{"coordinator", ContextWithCoordinatorID, CoordinatorIDFromContext},
		{"agent", ContextWithAgentID, AgentIDFromContext},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			//nolint:staticcheck // nil context is part of the contract
			assert.Equal(t, "id-1", tt.get(tt.set(nil, "id-1")))
			assert.Equal(t, "id-2", tt.get(tt.set(context.Background(), "id-2")))
			assert.Empty(t, tt.get(context.Background()))
			assert.Empty(t, tt.get(nil)) //nolint:staticcheck
		})
	}
}

func TestContextIDs_Independent(t *testing.T) {
	base := ContextWithRequestID(context.Background(), "req-1")
	withAgent := ContextWithAgentID(base, "A-1")

	assert.Equal(t, "req-1", RequestIDFromContext(withAgent))
	assert.Equal(t, "A-1", AgentIDFromContext(withAgent))
	// The parent context is not modified.
	assert.Empty(t, AgentIDFromContext(base))
}

func captureEntry(t *testing.T, ctx context.Context) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	l := WithContext(ctx, zerolog.New(&buf))
	l.Info().Msg("probe")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestWithContext_Fields(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-123")
	ctx = ContextWithCoordinatorID(ctx, "ADM-9")

	entry := captureEntry(t, ctx)
	assert.Equal(t, "req-123", entry[FieldRequestID])
	assert.Equal(t, "ADM-9", entry[FieldCoordinatorID])
	assert.NotContains(t, entry, FieldAgentID)
	assert.NotContains(t, entry, FieldTraceID)
}

func TestWithContext_TraceIDs(t *testing.T) {
	// A noop span carries no valid context.
	ctx, span := noop.NewTracerProvider().Tracer("test").Start(context.Background(), "noop")
	defer span.End()
	assert.NotContains(t, captureEntry(t, ctx), FieldTraceID)

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})

	entry := captureEntry(t, trace.ContextWithSpanContext(context.Background(), sc))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry[FieldTraceID])
	assert.Equal(t, "00f067aa0ba902b7", entry[FieldSpanID])
}

func TestWithContext_EmptyKeepsLogger(t *testing.T) {
	var buf bytes.Buffer
	l := WithContext(context.Background(), zerolog.New(&buf))
	l.Info().Msg("x")
	assert.NotContains(t, buf.String(), FieldRequestID)
}

func TestWithComponentFromContext(t *testing.T) {
	var buf bytes.Buffer
	Reset(Config{Output: &buf})
	t.Cleanup(func() { Reset(Config{}) })

	l := WithComponentFromContext(ContextWithRequestID(context.Background(), "r-1"), "api")
	l.Info().Msg("x")
	assert.Contains(t, buf.String(), `"component":"api"`)
	assert.Contains(t, buf.String(), `"request_id":"r-1"`)
}
