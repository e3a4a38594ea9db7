// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "errors"

var (
	// ErrUnknownConfigField marks a key that does not exist in AppConfig.
	// Strict decoding turns typos into this error instead of ignoring them.
	ErrUnknownConfigField = errors.New("unknown config field")

	// ErrUnsupportedFormat rejects config files that are not .yaml or .yml.
	ErrUnsupportedFormat = errors.New("unsupported config format")
)
