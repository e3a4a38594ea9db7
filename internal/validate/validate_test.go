package validate

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_ListenAddr(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{"port only", ":8080", false},
		{"host and port", "127.0.0.1:8080", false},
		{"ephemeral", ":0", false},
		{"missing port", "localhost", true},
		{"bad port", ":http", true},
		{"port too large", ":70000", true},
		{"host with slash", "a/b:80", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.ListenAddr("api.listenAddr", tt.addr)
			assert.Equal(t, tt.wantErr, !v.IsValid(), "err=%v", v.Err())
		})
	}
}

func TestValidator_Endpoints(t *testing.T) {
	v := New()
	v.Endpoints("dispatch.brokers", []string{"kafka:9092", ":9092", "nohost"})
	var ve ValidationError
	require.True(t, errors.As(v.Err(), &ve))
	assert.Equal(t, []string{"dispatch.brokers[1]", "dispatch.brokers[2]"}, ve.Fields())
}

func TestNumericChecks(t *testing.T) {
	v := New()
	Between(v, "r", 5, 1, 5)
	v.Unit("u", 1)
	v.Unit("u0", 0)
	Positive(v, "p", 1)
	Positive(v, "ttl", time.Second)
	NonNegative(v, "n", 0)
	assert.True(t, v.IsValid())

	Between(v, "r", 6, 1, 5)
	v.Unit("u", 1.01)
	v.Unit("nan", math.NaN())
	Positive(v, "p", 0)
	Positive(v, "ttl", time.Duration(0))
	NonNegative(v, "n", -1.5)
	assert.Len(t, v.Errors(), 6)
	assert.Equal(t, "value must be positive, got 0s", v.Errors()[4].Message)
}

func TestStringChecks(t *testing.T) {
	type format string

	v := New()
	v.NotEmpty("a", "  ")
	OneOf(v, "b", format("xml"), "json", "console")
	OneOf(v, "c", "json", "json", "console")
	require.Len(t, v.Errors(), 2)
	assert.Contains(t, v.Errors()[1].Message, `"xml"`)
	assert.Equal(t, format("xml"), v.Errors()[1].Value)
}

func TestValidationError_Aggregates(t *testing.T) {
	v := New()
	assert.NoError(t, v.Err())

	v.Custom("engine.thresholds", nil, errors.New("dormant must exceed at-risk"))
	v.Custom("ignored", nil, nil)
	err := v.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, "validation failed for engine.thresholds: dormant must exceed at-risk", err.Error())

	v.Fail("second", 1, "broken %d", 2)
	assert.Equal(t,
		"validation failed for engine.thresholds: dormant must exceed at-risk; validation failed for second: broken 2",
		v.Err().Error())
}

func TestValidator_ErrIsSnapshot(t *testing.T) {
	var v Validator
	v.Fail("a", nil, "x")
	err := v.Err()
	v.Fail("b", nil, "y")

	var ve ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve, 1)
}
