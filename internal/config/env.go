// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EnvPrefix is shared by every environment variable the loader reads.
const EnvPrefix = "FIELDPULSE_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// envReader reads typed values and logs where each one came from. Invalid
// values keep the current setting and are logged at warn level.
type envReader struct {
	lookup   LookupFunc
	logger   zerolog.Logger
	consumed map[string]struct{}
}

func newEnvReader(lookup LookupFunc, logger zerolog.Logger) *envReader {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &envReader{lookup: lookup, logger: logger, consumed: make(map[string]struct{})}
}

func (r *envReader) raw(key string) (string, bool) {
	r.consumed[key] = struct{}{}
	v, ok := r.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (r *envReader) used(key string, value any) {
	lowerKey := strings.ToLower(key)
	if strings.Contains(lowerKey, "password") || strings.Contains(lowerKey, "token") {
		r.logger.Debug().Str("key", key).Str("source", "environment").Bool("sensitive", true).Msg("using environment variable")
		return
	}
	r.logger.Debug().Str("key", key).Interface("value", value).Str("source", "environment").Msg("using environment variable")
}

func (r *envReader) invalid(key, value, kind string) {
	r.logger.Warn().Str("key", key).Str("value", value).Msgf("invalid %s in environment variable, keeping configured value", kind)
}

func (r *envReader) String(key string, dst *string) {
	if v, ok := r.raw(key); ok {
		*dst = v
		r.used(key, v)
	}
}

func (r *envReader) Int(key string, dst *int) {
	v, ok := r.raw(key)
	if !ok {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		r.invalid(key, v, "integer")
		return
	}
	*dst = i
	r.used(key, i)
}

func (r *envReader) Float(key string, dst *float64) {
	v, ok := r.raw(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.invalid(key, v, "float")
		return
	}
	*dst = f
	r.used(key, f)
}

// Bool accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func (r *envReader) Bool(key string, dst *bool) {
	v, ok := r.raw(key)
	if !ok {
		return
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		*dst = true
	case "false", "0", "no":
		*dst = false
	default:
		r.invalid(key, v, "boolean")
		return
	}
	r.used(key, *dst)
}

// Duration reads Go duration syntax, e.g. "5s".
func (r *envReader) Duration(key string, dst *time.Duration) {
	v, ok := r.raw(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.invalid(key, v, "duration")
		return
	}
	*dst = d
	r.used(key, d)
}

// List reads a comma-separated list, dropping empty items.
func (r *envReader) List(key string, dst *[]string) {
	v, ok := r.raw(key)
	if !ok {
		return
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
	r.used(key, out)
}
