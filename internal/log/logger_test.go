package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReset_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	Reset(Config{Level: "debug", Output: &buf, Service: "svc", Version: "v1.2.3"})
	t.Cleanup(func() { Reset(Config{}) })

	l := WithComponent("lifecycle")
	l.Info().Str(FieldEvent, EventLifecycleTransition).Str(FieldAgentID, "A-1").Msg("transition")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "svc", entry["service"])
	assert.Equal(t, "v1.2.3", entry["version"])
	assert.Equal(t, "lifecycle", entry[FieldComponent])
	assert.Equal(t, EventLifecycleTransition, entry[FieldEvent])
	assert.Equal(t, "A-1", entry[FieldAgentID])
}

func TestReset_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	Reset(Config{Format: "console", Output: &buf})
	t.Cleanup(func() { Reset(Config{}) })

	l := Base()
	l.Info().Msg("hello")
	assert.True(t, strings.Contains(buf.String(), "hello"))
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	require.NoError(t, SetLevel("warn"))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	assert.Error(t, SetLevel("loud"))
}

func TestResolveLevel(t *testing.T) {
	t.Setenv(EnvLevel, "")
	assert.Equal(t, zerolog.InfoLevel, resolveLevel(""))
	assert.Equal(t, zerolog.DebugLevel, resolveLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, resolveLevel("loud"))

	t.Setenv(EnvLevel, "error")
	assert.Equal(t, zerolog.ErrorLevel, resolveLevel(""))
	assert.Equal(t, zerolog.WarnLevel, resolveLevel("warn"), "explicit level wins over env")
}

func TestWithComponent_FollowsReset(t *testing.T) {
	var first, second bytes.Buffer
	Reset(Config{Output: &first})
	t.Cleanup(func() { Reset(Config{}) })
	before := WithComponent("api")

	Reset(Config{Output: &second})
	after := WithComponent("api")
	before.Info().Msg("old")
	after.Info().Msg("new")

	assert.Contains(t, first.String(), "old")
	assert.Contains(t, second.String(), "new")
	assert.NotContains(t, second.String(), "old")
}
