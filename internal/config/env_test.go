package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestEnvReader_Bool(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"true", true}, {"1", true}, {"YES", true},
		{"false", false}, {"0", false}, {"No", false},
		{"maybe", true}, // invalid keeps the current value
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r := newEnvReader(envMap(map[string]string{"K": tt.in}), zerolog.Nop())
			got := true
			r.Bool("K", &got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnvReader_Typed(t *testing.T) {
	r := newEnvReader(envMap(map[string]string{
		"I": " 42 ", "F": "0.5", "D": "90s", "L": "x, y ,,z", "S": "value", "BLANK": "   ",
	}), zerolog.Nop())

	var (
		i int
		f float64
		d time.Duration
		l []string
		s = "default"
		b = "default"
	)
	r.Int("I", &i)
	r.Float("F", &f)
	r.Duration("D", &d)
	r.List("L", &l)
	r.String("BLANK", &b)
	r.String("S", &s)

	assert.Equal(t, 42, i)
	assert.InDelta(t, 0.5, f, 1e-9)
	assert.Equal(t, 90*time.Second, d)
	assert.Equal(t, []string{"x", "y", "z"}, l)
	assert.Equal(t, "value", s)
	assert.Equal(t, "default", b)
	assert.Len(t, r.consumed, 6)
}

func TestEnvReader_MasksSecrets(t *testing.T) {
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	r := newEnvReader(envMap(map[string]string{EnvRedisPassword: "hunter2", EnvRedisAddr: "redis:6379"}), logger)

	var pw, addr string
	r.String(EnvRedisPassword, &pw)
	r.String(EnvRedisAddr, &addr)

	assert.Equal(t, "hunter2", pw)
	assert.NotContains(t, buf.String(), "hunter2")
	assert.Contains(t, buf.String(), `"sensitive":true`)
	assert.Contains(t, buf.String(), "redis:6379")
}

func TestEnvReader_InvalidWarns(t *testing.T) {
	var buf bytes.Buffer
	r := newEnvReader(envMap(map[string]string{"N": "ten"}), zerolog.New(&buf))
	n := 10
	r.Int("N", &n)
	assert.Equal(t, 10, n)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "invalid integer")
}
