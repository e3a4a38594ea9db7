// Package config loads fieldpulse configuration.
//
// Precedence is ENV > file > defaults. The file is strict YAML: unknown keys
// and trailing documents are rejected. The final AppConfig is validated as a
// whole and every problem is reported in one error.
package config
