// Package validate accumulates field-level validation errors so a caller can
// report every problem in a configuration at once.
package validate

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"net"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalid matches every ValidationError via errors.Is.
var ErrInvalid = errors.New("validation failed")

// FieldError is one rejected field.
type FieldError struct {
	Field   string
	Value   any
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// ValidationError is the aggregate returned by Validator.Err.
type ValidationError []FieldError

func (e ValidationError) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

func (e ValidationError) Is(target error) bool { return target == ErrInvalid }

// Fields lists the failing field names in report order.
func (e ValidationError) Fields() []string {
	out := make([]string, len(e))
	for i, fe := range e {
		out[i] = fe.Field
	}
	return out
}

// Validator collects FieldErrors. The zero value is ready to use.
type Validator struct {
	errs []FieldError
}

func New() *Validator { return &Validator{} }

// Fail records a failure for field.
func (v *Validator) Fail(field string, value any, format string, args ...any) {
	v.errs = append(v.errs, FieldError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// Check records a failure for field unless ok holds.
func (v *Validator) Check(ok bool, field string, value any, format string, args ...any) {
	if !ok {
		v.Fail(field, value, format, args...)
	}
}

// Custom records err, if any, against field.
func (v *Validator) Custom(field string, value any, err error) {
	if err != nil {
		v.Fail(field, value, "%s", err.Error())
	}
}

func (v *Validator) IsValid() bool         { return len(v.errs) == 0 }
func (v *Validator) Errors() []FieldError { return v.errs }

// Err returns a snapshot of the failures so far, or nil.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return ValidationError(slices.Clone(v.errs))
}

func (v *Validator) NotEmpty(field, value string) {
	v.Check(strings.TrimSpace(value) != "", field, value, "value cannot be empty")
}

// Unit accepts ratios in [0, 1]; NaN is rejected.
func (v *Validator) Unit(field string, value float64) {
	v.Check(!math.IsNaN(value) && value >= 0 && value <= 1, field, value, "value must be between 0 and 1, got %v", value)
}

// ListenAddr accepts host:port with an optional host.
func (v *Validator) ListenAddr(field, addr string) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		v.Fail(field, addr, "invalid listen address: %v", err)
		return
	}
	if strings.ContainsAny(host, " /") {
		v.Fail(field, addr, "invalid host %q", host)
		return
	}
	n, err := strconv.Atoi(port)
	v.Check(err == nil && n >= 0 && n <= 65535, field, addr, "port must be between 0 and 65535, got %q", port)
}

// Endpoints requires every entry to be host:port with a concrete host.
func (v *Validator) Endpoints(field string, addrs []string) {
	for i, addr := range addrs {
		host, port, err := net.SplitHostPort(addr)
		v.Check(err == nil && host != "" && port != "", fmt.Sprintf("%s[%d]", field, i), addr, "expected host:port, got %q", addr)
	}
}

// OneOf requires value to be among allowed.
func OneOf[T comparable](v *Validator, field string, value T, allowed ...T) {
	v.Check(slices.Contains(allowed, value), field, value, "value must be one of %v, got %q", allowed, fmt.Sprint(value))
}

// Between requires lo <= value <= hi.
func Between[T cmp.Ordered](v *Validator, field string, value, lo, hi T) {
	v.Check(value >= lo && value <= hi, field, value, "value must be between %v and %v, got %v", lo, hi, value)
}

type number interface {
	~int | ~int64 | ~float64
}

// Positive requires value > 0. Durations qualify.
func Positive[T number](v *Validator, field string, value T) {
	v.Check(value > 0, field, value, "value must be positive, got %v", value)
}

func NonNegative[T number](v *Validator, field string, value T) {
	v.Check(value >= 0, field, value, "value cannot be negative, got %v", value)
}
