package agent

import (
	"sync"

	"github.com/ManuGH/fieldpulse/internal/condition"
	"github.com/ManuGH/fieldpulse/internal/domain/model"
	"github.com/ManuGH/fieldpulse/internal/domain/taxonomy"
)

// Whitelisted fact names. Playbooks reference these; keep them stable.
const (
	FieldAgentID              = "agent_id"
	FieldLifecycleState       = "lifecycle_state"
	FieldReasonCode           = "dormancy_reason_code"
	FieldCategory             = "dormancy_category"
	FieldDaysSinceLastContact = "days_since_last_contact"
	FieldDaysSinceLastSale    = "days_since_last_sale"
	FieldDaysSinceOnboarding  = "days_since_onboarding"
	FieldUnresolvedComplaints = "unresolved_complaints"
	FieldPoliciesSold30d      = "policies_sold_30d"
	FieldLastOutcome          = "last_contact_outcome"
	FieldLastSentiment        = "last_sentiment"
	FieldPreferredChannel     = "preferred_channel"
	FieldLastSaleProduct      = "last_sale_product"
	FieldLastContactAt        = "last_contact_at"
	FieldLastSaleAt           = "last_sale_at"
	FieldOnboardedAt          = "onboarded_at"
	FieldLastComplaintAt      = "last_complaint_at"
	FieldCompletedTrainings   = "completed_trainings"
)

var factSchema = sync.OnceValue(func() condition.Schema {
	return condition.MustSchema(
		condition.FieldDef{Name: FieldAgentID, Type: condition.TypeString, Description: "Agent identifier"},
		condition.FieldDef{Name: FieldLifecycleState, Type: condition.TypeString, Allowed: names(model.LifecycleStates()...),
			Description: "Current lifecycle state"},
		condition.FieldDef{Name: FieldReasonCode, Type: condition.TypeString, Allowed: names(taxonomy.Codes()...),
			Description: "Dormancy reason code"},
		condition.FieldDef{Name: FieldCategory, Type: condition.TypeString, Allowed: names(taxonomy.Categories()...),
			Description: "Category of the dormancy reason code"},
		condition.FieldDef{Name: FieldDaysSinceLastContact, Type: condition.TypeNumber, Description: "Whole days since last contact"},
		condition.FieldDef{Name: FieldDaysSinceLastSale, Type: condition.TypeNumber, Description: "Whole days since last sale"},
		condition.FieldDef{Name: FieldDaysSinceOnboarding, Type: condition.TypeNumber, Description: "Whole days since onboarding"},
		condition.FieldDef{Name: FieldUnresolvedComplaints, Type: condition.TypeNumber, Description: "Open complaints raised by the agent"},
		condition.FieldDef{Name: FieldPoliciesSold30d, Type: condition.TypeNumber, Description: "Policies sold in the trailing 30 days"},
		condition.FieldDef{Name: FieldLastOutcome, Type: condition.TypeString, Allowed: names(
			model.OutcomeInterested, model.OutcomeCommitted, model.OutcomeCallbackRequested, model.OutcomeNoAnswer,
			model.OutcomeWrongNumber, model.OutcomeNotInterested, model.OutcomeComplaint,
		), Description: "Outcome of the last outreach"},
		condition.FieldDef{Name: FieldLastSentiment, Type: condition.TypeString, Allowed: names(
			model.SentimentPositive, model.SentimentNeutral, model.SentimentNegative, model.SentimentFrustrated,
		), Description: "Sentiment of the last agent message"},
		condition.FieldDef{Name: FieldPreferredChannel, Type: condition.TypeString, Allowed: names(
			model.ChannelWhatsApp, model.ChannelTelegram, model.ChannelSMS, model.ChannelVoice, model.ChannelInPerson,
		), Description: "Preferred outreach channel"},
		condition.FieldDef{Name: FieldLastSaleProduct, Type: condition.TypeString, Allowed: names(
			model.ProductTermLife, model.ProductEndowment, model.ProductULIP, model.ProductHealth, model.ProductMotor, model.ProductPension,
		), Description: "Product line of the last sale"},
		condition.FieldDef{Name: FieldLastContactAt, Type: condition.TypeDate, Description: "Time of last contact"},
		condition.FieldDef{Name: FieldLastSaleAt, Type: condition.TypeDate, Description: "Time of last sale"},
		condition.FieldDef{Name: FieldOnboardedAt, Type: condition.TypeDate, Description: "Onboarding date"},
		condition.FieldDef{Name: FieldLastComplaintAt, Type: condition.TypeDate, Description: "Time the latest open complaint was raised"},
		condition.FieldDef{Name: FieldCompletedTrainings, Type: condition.TypeSet, Allowed: names(
			model.TrainingProductBasics, model.TrainingUnderwriting, model.TrainingDigitalTools,
			model.TrainingSalesSkills, model.TrainingCompliance, model.TrainingClaimsProcess,
		), Description: "Completed training modules"},
	)
})

// FactSchema returns the whitelist of facts conditions may reference.
func FactSchema() condition.Schema {
	return factSchema()
}

func names[T ~string](vs ...T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}
