package condition

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownField classifies leaves referencing a field outside the schema.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnsupportedOperator classifies leaves using an operator outside the whitelist.
	ErrUnsupportedOperator = errors.New("unsupported operator")
	// ErrTypeMismatch classifies operator/value combinations the field type cannot satisfy.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrMalformedCondition classifies structurally invalid trees.
	ErrMalformedCondition = errors.New("malformed condition")
	// ErrMissingFact is returned when a referenced fact is absent from the snapshot.
	// It is a runtime condition, not a configuration defect.
	ErrMissingFact = errors.New("missing fact")
)

// Error carries the failing node of an evaluation or validation.
// Use errors.Is against the sentinels above to classify it.
type Error struct {
	Err    error
	Path   string
	Field  string
	Op     Operator
	Detail string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("condition %s: %v", e.Path, e.Err)
	if e.Field != "" {
		msg += fmt.Sprintf(" (field %q", e.Field)
		if e.Op != "" {
			msg += fmt.Sprintf(", op %q", e.Op)
		}
		msg += ")"
	} else if e.Op != "" {
		msg += fmt.Sprintf(" (op %q)", e.Op)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(sentinel error, path string, c Condition, detail string) *Error {
	return &Error{Err: sentinel, Path: path, Field: c.Field, Op: c.Op, Detail: detail}
}

// IsConfigError reports whether err is an authoring defect of the condition
// or schema, as opposed to a missing runtime fact.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrUnknownField) ||
		errors.Is(err, ErrUnsupportedOperator) ||
		errors.Is(err, ErrTypeMismatch) ||
		errors.Is(err, ErrMalformedCondition)
}

// ErrorCode returns a stable label for err, suitable for metrics.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrUnknownField):
		return "unknown_field"
	case errors.Is(err, ErrUnsupportedOperator):
		return "unsupported_operator"
	case errors.Is(err, ErrTypeMismatch):
		return "type_mismatch"
	case errors.Is(err, ErrMalformedCondition):
		return "malformed"
	case errors.Is(err, ErrMissingFact):
		return "missing_fact"
	default:
		return "other"
	}
}
