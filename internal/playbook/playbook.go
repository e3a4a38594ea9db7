// Package playbook selects and executes data-defined intervention playbooks.
// Playbooks are trigger conditions plus ordered steps; the engine has no
// per-playbook control flow.
package playbook

import (
	"maps"
	"strings"

	"github.com/ManuGH/fieldpulse/internal/condition"
)

// ActionType is the kind of intervention a step emits. Keep these stable.
type ActionType string

const (
	ActionSendMessage          ActionType = "send_message"
	ActionScheduleCall         ActionType = "schedule_call"
	ActionAssignTraining       ActionType = "assign_training"
	ActionEscalateToHuman      ActionType = "escalate_to_human"
	ActionUpdateLifecycleState ActionType = "update_lifecycle_state"
)

// Valid reports whether a is a known action type.
func (a ActionType) Valid() bool {
	switch a {
	case ActionSendMessage, ActionScheduleCall, ActionAssignTraining, ActionEscalateToHuman, ActionUpdateLifecycleState:
		return true
	}
	return false
}

// Playbook is a named trigger plus an ordered intervention sequence.
type Playbook struct {
	ID          string              `json:"id" yaml:"id"`
	Name        string              `json:"name" yaml:"name"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Trigger     condition.Condition `json:"trigger" yaml:"trigger"`
	Steps       []Step              `json:"steps" yaml:"steps"`
}

// Step is one intervention. Params values are primitives; strings of the form
// "@field" are fact references resolved at execution, "@?field" references
// are optional and dropped when the fact is absent.
type Step struct {
	Action ActionType           `json:"action" yaml:"action"`
	Params map[string]any       `json:"params,omitempty" yaml:"params,omitempty"`
	Guard  *condition.Condition `json:"guard,omitempty" yaml:"guard,omitempty"`
}

// Action is a resolved step ready for dispatch.
type Action struct {
	PlaybookID string         `json:"playbook_id"`
	Step       int            `json:"step"`
	Type       ActionType     `json:"type"`
	Params     map[string]any `json:"params"`
}

// ActionPlan is the outcome of selecting and executing the catalog for one agent.
type ActionPlan struct {
	AgentID   string   `json:"agent_id"`
	Playbooks []string `json:"playbooks"`
	Actions   []Action `json:"actions"`
	// Excluded lists playbooks skipped because a trigger fact was missing.
	Excluded []string `json:"excluded,omitempty"`
}

// First returns the first action of the plan.
func (p ActionPlan) First() (Action, bool) {
	if len(p.Actions) == 0 {
		return Action{}, false
	}
	return p.Actions[0], true
}

func (p Playbook) clone() Playbook {
	out := p
	out.Steps = make([]Step, len(p.Steps))
	for i, s := range p.Steps {
		s.Params = maps.Clone(s.Params)
		out.Steps[i] = s
	}
	return out
}

// factRef parses "@field" and "@?field" parameter values.
func factRef(v any) (field string, optional, ok bool) {
	s, isString := v.(string)
	if !isString || !strings.HasPrefix(s, "@") {
		return "", false, false
	}
	s = s[1:]
	if strings.HasPrefix(s, "?") {
		return s[1:], true, true
	}
	return s, false, true
}
