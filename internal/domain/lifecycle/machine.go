// Package lifecycle is the agent engagement state machine. It is pure: the
// caller persists the returned state and reason code.
package lifecycle

import (
	"fmt"

	"github.com/ManuGH/fieldpulse/internal/domain/agent"
	"github.com/ManuGH/fieldpulse/internal/domain/model"
	"github.com/ManuGH/fieldpulse/internal/domain/taxonomy"
)

// Thresholds are the day and streak limits that drive guarded edges.
type Thresholds struct {
	CoolingAfterDays       int `yaml:"coolingAfterDays" json:"cooling_after_days"`
	AtRiskAfterDays        int `yaml:"atRiskAfterDays" json:"at_risk_after_days"`
	DormantAfterDays       int `yaml:"dormantAfterDays" json:"dormant_after_days"`
	SustainedContactStreak int `yaml:"sustainedContactStreak" json:"sustained_contact_streak"`
}

// DefaultThresholds returns the shipped policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CoolingAfterDays:       14,
		AtRiskAfterDays:        28,
		DormantAfterDays:       40,
		SustainedContactStreak: 3,
	}
}

// Validate requires strictly increasing positive day limits.
func (th Thresholds) Validate() error {
	if th.CoolingAfterDays <= 0 {
		return fmt.Errorf("%w: cooling after %d days", ErrInvalidThresholds, th.CoolingAfterDays)
	}
	if th.AtRiskAfterDays <= th.CoolingAfterDays {
		return fmt.Errorf("%w: at-risk (%d) must exceed cooling (%d)", ErrInvalidThresholds, th.AtRiskAfterDays, th.CoolingAfterDays)
	}
	if th.DormantAfterDays <= th.AtRiskAfterDays {
		return fmt.Errorf("%w: dormant (%d) must exceed at-risk (%d)", ErrInvalidThresholds, th.DormantAfterDays, th.AtRiskAfterDays)
	}
	if th.SustainedContactStreak < 1 {
		return fmt.Errorf("%w: contact streak %d", ErrInvalidThresholds, th.SustainedContactStreak)
	}
	return nil
}

// Transition is the result of applying one event.
type Transition struct {
	From  model.LifecycleState `json:"from"`
	To    model.LifecycleState `json:"to"`
	Event EventType            `json:"event"`
	// ReasonCode is set when the edge assigns a dormancy reason.
	ReasonCode model.DormancyCode `json:"reason_code,omitempty"`
	Changed    bool               `json:"changed"`
	// Path lists the intermediate states crossed by Advance.
	Path []model.LifecycleState `json:"path,omitempty"`
}

// Machine applies events under a fixed set of thresholds.
type Machine struct {
	th Thresholds
}

// NewMachine validates th and returns a machine.
func NewMachine(th Thresholds) (*Machine, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	return &Machine{th: th}, nil
}

// Default returns a machine with DefaultThresholds.
func Default() *Machine {
	return &Machine{th: DefaultThresholds()}
}

// Thresholds returns the machine's limits.
func (m *Machine) Thresholds() Thresholds { return m.th }

// Apply takes exactly one edge of the table.
func (m *Machine) Apply(from model.LifecycleState, ev Event) (Transition, error) {
	if !from.Valid() {
		return Transition{}, illegal(from, ev, "unknown state")
	}
	if from.IsTerminal() {
		return Transition{}, illegal(from, ev, "state is terminal")
	}
	e, ok := ev.edge()
	if !ok {
		return Transition{}, illegal(from, ev, describeBadEvent(ev))
	}
	r, ok := transitionsTable[from][e]
	if !ok {
		return Transition{}, illegal(from, ev, "")
	}

	tr := Transition{From: from, To: from, Event: ev.Type}
	if r.To != "" && (r.Guard == nil || r.Guard(m.th, ev)) {
		tr.To = r.To
	}

	if tr.To == model.StateDormant && (from != model.StateDormant || e == edgeClassify) {
		code, err := reasonFor(from, ev, e)
		if err != nil {
			return Transition{}, err
		}
		tr.ReasonCode = code
	}
	tr.Changed = tr.To != tr.From
	return tr, nil
}

// Advance applies ev and, for inactivity, keeps applying it until the state
// is stable. An active agent idle for 45 days lands in dormant in one call.
func (m *Machine) Advance(from model.LifecycleState, ev Event) (Transition, error) {
	tr, err := m.Apply(from, ev)
	if err != nil || ev.Type != EvInactivity {
		return tr, err
	}
	out := tr
	// Each step moves strictly forward, so the number of states bounds the loop.
	for i := 0; tr.Changed && i < len(model.LifecycleStates()); i++ {
		next, err := m.Apply(tr.To, ev)
		if err != nil {
			return Transition{}, err
		}
		if !next.Changed {
			break
		}
		out.Path = append(out.Path, tr.To)
		out.To = next.To
		if next.ReasonCode != "" {
			out.ReasonCode = next.ReasonCode
		}
		tr = next
	}
	out.Changed = out.To != out.From
	return out, nil
}

// InactivityDays is the fresher of sale and contact recency: any activity
// resets the clock.
func InactivityDays(s agent.Snapshot) (int, error) {
	contact, hasContact := s.ContactRecency()
	sale, hasSale := s.SaleRecency()
	switch {
	case hasContact && hasSale:
		return min(contact, sale), nil
	case hasContact:
		return contact, nil
	case hasSale:
		return sale, nil
	}
	return 0, ErrMissingActivity
}

// InactivityEvent builds the inactivity event for s, carrying its reason code.
func InactivityEvent(s agent.Snapshot) (Event, error) {
	days, err := InactivityDays(s)
	if err != nil {
		return Event{}, err
	}
	return Inactivity(days).WithReason(s.ReasonCode), nil
}

func reasonFor(from model.LifecycleState, ev Event, e edge) (model.DormancyCode, error) {
	if ev.ReasonCode == "" {
		if e == edgeClassify {
			return "", illegal(from, ev, "classify requires a reason code")
		}
		return taxonomy.DefaultCode, nil
	}
	if !taxonomy.Known(ev.ReasonCode) {
		return "", fmt.Errorf("%w: %q", ErrUnknownReasonCode, ev.ReasonCode)
	}
	return ev.ReasonCode, nil
}

func describeBadEvent(ev Event) string {
	switch ev.Type {
	case EvInactivity:
		return fmt.Sprintf("negative inactivity %d", ev.Days)
	case EvContact:
		return fmt.Sprintf("unknown contact outcome %q", ev.Outcome)
	}
	return fmt.Sprintf("unknown event type %q", ev.Type)
}
