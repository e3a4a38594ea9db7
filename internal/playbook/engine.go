package playbook

import (
	"errors"
	"fmt"

	"github.com/ManuGH/fieldpulse/internal/condition"
	"github.com/ManuGH/fieldpulse/internal/domain/agent"
)

// ParamAgentID is added to every resolved action.
const ParamAgentID = "agent_id"

// Select returns the playbooks whose trigger holds, in catalog order.
// A trigger that needs a missing fact does not apply; any other evaluation
// error is a catalog defect and aborts selection.
func (c *Catalog) Select(facts condition.Facts) ([]Playbook, error) {
	selected, _, err := c.selectDetailed(facts)
	return selected, err
}

func (c *Catalog) selectDetailed(facts condition.Facts) (selected []Playbook, excluded []string, err error) {
	for _, pb := range c.playbooks {
		ok, err := condition.Evaluate(pb.Trigger, facts, c.schema)
		switch {
		case errors.Is(err, condition.ErrMissingFact):
			excluded = append(excluded, pb.ID)
			continue
		case err != nil:
			return nil, nil, fmt.Errorf("playbook %q trigger: %w", pb.ID, err)
		}
		if ok {
			selected = append(selected, pb.clone())
		}
	}
	return selected, excluded, nil
}

// Execute resolves the steps of pb against facts, in order. A step is skipped
// when its guard is false, its guard needs a missing fact, or a required fact
// reference cannot be resolved.
func (c *Catalog) Execute(pb Playbook, facts condition.Facts) ([]Action, error) {
	agentID, hasAgent := facts.Fact(agent.FieldAgentID)

	actions := make([]Action, 0, len(pb.Steps))
	for i, step := range pb.Steps {
		if step.Guard != nil {
			ok, err := condition.Evaluate(*step.Guard, facts, c.schema)
			if errors.Is(err, condition.ErrMissingFact) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("playbook %q step %d guard: %w", pb.ID, i, err)
			}
			if !ok {
				continue
			}
		}

		params, ok := resolveParams(step.Params, facts)
		if !ok {
			continue
		}
		if hasAgent {
			params[ParamAgentID] = agentID
		}
		actions = append(actions, Action{
			PlaybookID: pb.ID,
			Step:       i,
			Type:       step.Action,
			Params:     params,
		})
	}
	return actions, nil
}

// Plan selects and executes every triggered playbook for one agent.
func (c *Catalog) Plan(facts condition.Facts) (ActionPlan, error) {
	selected, excluded, err := c.selectDetailed(facts)
	if err != nil {
		return ActionPlan{}, err
	}
	plan := ActionPlan{
		Playbooks: make([]string, 0, len(selected)),
		Actions:   []Action{},
		Excluded:  excluded,
	}
	if id, ok := facts.Fact(agent.FieldAgentID); ok {
		plan.AgentID = fmt.Sprint(id)
	}
	for _, pb := range selected {
		actions, err := c.Execute(pb, facts)
		if err != nil {
			return ActionPlan{}, err
		}
		plan.Playbooks = append(plan.Playbooks, pb.ID)
		plan.Actions = append(plan.Actions, actions...)
	}
	return plan, nil
}

func resolveParams(in map[string]any, facts condition.Facts) (map[string]any, bool) {
	out := make(map[string]any, len(in)+1)
	for key, v := range in {
		field, optional, isRef := factRef(v)
		if !isRef {
			out[key] = v
			continue
		}
		resolved, ok := facts.Fact(field)
		if !ok {
			if optional {
				continue
			}
			return nil, false
		}
		out[key] = resolved
	}
	return out, true
}
