package playbook

import (
	"sync"

	"github.com/ManuGH/fieldpulse/internal/condition"
	"github.com/ManuGH/fieldpulse/internal/domain/agent"
	"github.com/ManuGH/fieldpulse/internal/domain/model"
)

// Default playbook IDs.
const (
	IDNewAgentWelcome         = "new_agent_welcome"
	IDEarlyDisengagement      = "early_disengagement"
	IDTrainingGap             = "training_gap"
	IDPostSaleFollowUp        = "post_sale_follow_up"
	IDLongDormantReengagement = "long_dormant_reengagement"
	IDComplaintEscalation     = "complaint_escalation"
)

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := NewCatalog(agent.FactSchema(), DefaultPlaybooks()...)
	if err != nil {
		panic(err)
	}
	return c
})

// Default returns the built-in catalog, validated once per process.
func Default() *Catalog {
	return defaultCatalog()
}

func guard(c condition.Condition) *condition.Condition { return &c }

var (
	coolingOrAtRisk    = condition.In(agent.FieldLifecycleState, string(model.StateCooling), string(model.StateAtRisk))
	lacksProductBasics = condition.Not(condition.Contains(agent.FieldCompletedTrainings, string(model.TrainingProductBasics)))
)

// DefaultPlaybooks returns fresh copies of the six shipped playbooks.
func DefaultPlaybooks() []Playbook {
	return []Playbook{
		{
			ID:          IDNewAgentWelcome,
			Name:        "New agent welcome",
			Description: "Welcome agents in their first month and get product basics done.",
			Trigger: condition.And(
				condition.Eq(agent.FieldLifecycleState, string(model.StateActive)),
				condition.Lte(agent.FieldDaysSinceOnboarding, 30),
			),
			Steps: []Step{
				{Action: ActionSendMessage, Params: map[string]any{
					"template": "welcome_new_agent",
					"channel":  "@?" + agent.FieldPreferredChannel,
				}},
				{Action: ActionAssignTraining, Params: map[string]any{
					"topic": string(model.TrainingProductBasics),
				}, Guard: guard(lacksProductBasics)},
				{Action: ActionScheduleCall, Params: map[string]any{
					"purpose":     "onboarding_check_in",
					"within_days": 7,
				}},
			},
		},
		{
			ID:          IDEarlyDisengagement,
			Name:        "Early disengagement",
			Description: "Reach out before a slipping agent goes dormant.",
			Trigger:     coolingOrAtRisk,
			Steps: []Step{
				{Action: ActionSendMessage, Params: map[string]any{
					"template":      "check_in",
					"state":         "@" + agent.FieldLifecycleState,
					"days_inactive": "@?" + agent.FieldDaysSinceLastContact,
					"channel":       "@?" + agent.FieldPreferredChannel,
				}},
				{Action: ActionScheduleCall, Params: map[string]any{
					"purpose":     "engagement_review",
					"within_days": 3,
				}, Guard: guard(condition.Eq(agent.FieldLifecycleState, string(model.StateAtRisk)))},
			},
		},
		{
			ID:          IDTrainingGap,
			Name:        "Training gap",
			Description: "Close knowledge gaps behind dormancy or disengagement.",
			Trigger: condition.Or(
				condition.And(coolingOrAtRisk, lacksProductBasics),
				condition.Eq(agent.FieldCategory, string(model.CategoryTrainingGap)),
			),
			Steps: []Step{
				{Action: ActionAssignTraining, Params: map[string]any{
					"topic": string(model.TrainingProductBasics),
				}, Guard: guard(lacksProductBasics)},
				{Action: ActionAssignTraining, Params: map[string]any{
					"topic": string(model.TrainingSalesSkills),
				}, Guard: guard(condition.Eq(agent.FieldReasonCode, string(model.CodeSalesSkills)))},
				{Action: ActionAssignTraining, Params: map[string]any{
					"topic": string(model.TrainingDigitalTools),
				}, Guard: guard(condition.Eq(agent.FieldReasonCode, string(model.CodeDigitalTools)))},
				{Action: ActionSendMessage, Params: map[string]any{
					"template": "training_invite",
					"channel":  "@?" + agent.FieldPreferredChannel,
				}},
			},
		},
		{
			ID:          IDPostSaleFollowUp,
			Name:        "Post-sale follow-up",
			Description: "Reinforce momentum right after a sale.",
			Trigger: condition.And(
				condition.In(agent.FieldLifecycleState, string(model.StateActive), string(model.StateReactivating)),
				condition.Lte(agent.FieldDaysSinceLastSale, 7),
			),
			Steps: []Step{
				{Action: ActionSendMessage, Params: map[string]any{
					"template": "sale_congratulations",
					"product":  "@?" + agent.FieldLastSaleProduct,
				}},
				{Action: ActionScheduleCall, Params: map[string]any{
					"purpose":     "cross_sell_coaching",
					"within_days": 14,
				}, Guard: guard(condition.Gte(agent.FieldPoliciesSold30d, 3))},
			},
		},
		{
			ID:          IDLongDormantReengagement,
			Name:        "Long-dormant re-engagement",
			Description: "Win back agents who have been silent for a month or more.",
			Trigger: condition.And(
				condition.Eq(agent.FieldLifecycleState, string(model.StateDormant)),
				condition.Gte(agent.FieldDaysSinceLastContact, 30),
			),
			Steps: []Step{
				{Action: ActionSendMessage, Params: map[string]any{
					"template":      "reengage_dormant",
					"reason_code":   "@?" + agent.FieldReasonCode,
					"days_inactive": "@" + agent.FieldDaysSinceLastContact,
					"channel":       "@?" + agent.FieldPreferredChannel,
				}},
				{Action: ActionScheduleCall, Params: map[string]any{
					"purpose":     "reengagement",
					"within_days": 2,
				}},
				{Action: ActionAssignTraining, Params: map[string]any{
					"topic": string(model.TrainingProductBasics),
				}, Guard: guard(condition.Eq(agent.FieldCategory, string(model.CategoryTrainingGap)))},
				{Action: ActionEscalateToHuman, Params: map[string]any{
					"reason":   "long_dormant",
					"priority": "high",
				}, Guard: guard(condition.Gte(agent.FieldDaysSinceLastContact, 90))},
			},
		},
		{
			ID:          IDComplaintEscalation,
			Name:        "Complaint escalation",
			Description: "Hand unresolved complaints to a human after three days.",
			Trigger: condition.And(
				condition.Gt(agent.FieldUnresolvedComplaints, 0),
				condition.DaysSinceGte(agent.FieldLastComplaintAt, 3),
			),
			Steps: []Step{
				{Action: ActionEscalateToHuman, Params: map[string]any{
					"reason":     "unresolved_complaint",
					"complaints": "@" + agent.FieldUnresolvedComplaints,
					"priority":   "high",
				}},
				{Action: ActionSendMessage, Params: map[string]any{
					"template": "complaint_acknowledgement",
					"channel":  "@?" + agent.FieldPreferredChannel,
				}},
				{Action: ActionUpdateLifecycleState, Params: map[string]any{
					"event":   "contact",
					"outcome": string(model.OutcomeComplaint),
				}, Guard: guard(condition.Eq(agent.FieldLifecycleState, string(model.StateReactivating)))},
			},
		},
	}
}
