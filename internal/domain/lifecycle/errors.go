package lifecycle

import (
	"errors"
	"fmt"

	"github.com/ManuGH/fieldpulse/internal/domain/model"
	"github.com/ManuGH/fieldpulse/internal/domain/taxonomy"
)

var (
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
	ErrMissingActivity   = errors.New("snapshot has neither contact nor sale recency")
	ErrInvalidThresholds = errors.New("invalid lifecycle thresholds")

	// ErrUnknownReasonCode aliases the taxonomy sentinel so callers need one import.
	ErrUnknownReasonCode = taxonomy.ErrUnknownReasonCode
)

// TransitionError reports an event that is not legal from a state.
type TransitionError struct {
	From   model.LifecycleState
	Event  EventType
	Detail string
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("%s: %s + %s", ErrInvalidTransition, e.From, e.Event)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

func illegal(from model.LifecycleState, ev Event, detail string) error {
	return &TransitionError{From: from, Event: ev.Type, Detail: detail}
}
