package lifecycle

import "github.com/ManuGH/fieldpulse/internal/domain/model"

// EventType is a domain event in the agent lifecycle.
type EventType string

const (
	EvInactivity EventType = "inactivity"
	EvContact    EventType = "contact"
	EvSale       EventType = "sale"
	EvClassify   EventType = "classify"
	EvTerminate  EventType = "terminate"
)

// EventTypes returns every event type.
func EventTypes() []EventType {
	return []EventType{EvInactivity, EvContact, EvSale, EvClassify, EvTerminate}
}

// Event carries the inputs of one transition.
type Event struct {
	Type EventType `json:"type" yaml:"type"`
	// Days of inactivity (inactivity).
	Days int `json:"days,omitempty" yaml:"days,omitempty"`
	// Outcome of the outreach (contact).
	Outcome model.ContactOutcome `json:"outcome,omitempty" yaml:"outcome,omitempty"`
	// Streak counts consecutive positive contacts including this one (contact).
	Streak int `json:"streak,omitempty" yaml:"streak,omitempty"`
	// ReasonCode is the classifier signal (classify, and any edge into dormant).
	ReasonCode model.DormancyCode `json:"reason_code,omitempty" yaml:"reason_code,omitempty"`
}

func Inactivity(days int) Event { return Event{Type: EvInactivity, Days: days} }

func Contact(outcome model.ContactOutcome, streak int) Event {
	return Event{Type: EvContact, Outcome: outcome, Streak: streak}
}

func Sale() Event { return Event{Type: EvSale} }

func Classify(code model.DormancyCode) Event { return Event{Type: EvClassify, ReasonCode: code} }

func Terminate() Event { return Event{Type: EvTerminate} }

// WithReason attaches a classifier signal to the event.
func (e Event) WithReason(code model.DormancyCode) Event {
	e.ReasonCode = code
	return e
}

// edge is the table column an event resolves to.
type edge string

const (
	edgeInactivity      edge = "inactivity"
	edgeContactPositive edge = "contact_positive"
	edgeContactNegative edge = "contact_negative"
	edgeContactNeutral  edge = "contact_neutral"
	edgeSale            edge = "sale"
	edgeClassify        edge = "classify"
	edgeTerminate       edge = "terminate"
)

func (e Event) edge() (edge, bool) {
	switch e.Type {
	case EvInactivity:
		return edgeInactivity, e.Days >= 0
	case EvContact:
		switch {
		case !e.Outcome.Valid():
			return "", false
		case e.Outcome.IsPositive():
			return edgeContactPositive, true
		case e.Outcome.IsNegative():
			return edgeContactNegative, true
		default:
			return edgeContactNeutral, true
		}
	case EvSale:
		return edgeSale, true
	case EvClassify:
		return edgeClassify, true
	case EvTerminate:
		return edgeTerminate, true
	}
	return "", false
}
