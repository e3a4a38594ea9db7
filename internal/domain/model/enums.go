package model

// LifecycleState is the engagement lifecycle of a field agent.
// Values are persisted and transmitted by callers. Keep these stable.
type LifecycleState string

const (
	StateActive       LifecycleState = "active"
	StateCooling      LifecycleState = "cooling"
	StateAtRisk       LifecycleState = "at_risk"
	StateDormant      LifecycleState = "dormant"
	StateReactivating LifecycleState = "reactivating"
	StateTerminated   LifecycleState = "terminated"
)

// IsTerminal returns true if the state has no outgoing transitions.
func (s LifecycleState) IsTerminal() bool {
	return s == StateTerminated
}

// Valid reports whether s is a known lifecycle state.
func (s LifecycleState) Valid() bool {
	switch s {
	case StateActive, StateCooling, StateAtRisk, StateDormant, StateReactivating, StateTerminated:
		return true
	}
	return false
}

// LifecycleStates returns all states in lifecycle order.
func LifecycleStates() []LifecycleState {
	return []LifecycleState{
		StateActive,
		StateCooling,
		StateAtRisk,
		StateDormant,
		StateReactivating,
		StateTerminated,
	}
}

// DormancyCategory groups dormancy reason codes for analytics and prioritisation.
type DormancyCategory string

const (
	CategoryCompensation        DormancyCategory = "compensation"
	CategoryTrainingGap         DormancyCategory = "training_gap"
	CategoryProductConfusion    DormancyCategory = "product_confusion"
	CategoryPersonal            DormancyCategory = "personal"
	CategoryCompetitivePoaching DormancyCategory = "competitive_poaching"
	CategoryAdministrative      DormancyCategory = "administrative"
	CategoryUnknown             DormancyCategory = "unknown"
)

// Valid reports whether c is a known category.
func (c DormancyCategory) Valid() bool {
	switch c {
	case CategoryCompensation, CategoryTrainingGap, CategoryProductConfusion, CategoryPersonal,
		CategoryCompetitivePoaching, CategoryAdministrative, CategoryUnknown:
		return true
	}
	return false
}

// DormancyCode is a compact reason signal attached to a dormant agent.
// Codes are referenced by historical analytics: never rename or recategorise one.
type DormancyCode string

const (
	CodeLowCommission      DormancyCode = "COMP_LOW_COMMISSION"
	CodeDelayedPayout      DormancyCode = "COMP_DELAYED_PAYOUT"
	CodeClawbackDispute    DormancyCode = "COMP_CLAWBACK_DISPUTE"
	CodeIncentiveMissed    DormancyCode = "COMP_INCENTIVE_MISSED"
	CodeExpensesUncovered  DormancyCode = "COMP_EXPENSES_UNCOVERED"
	CodeNoOnboarding       DormancyCode = "TRN_NO_ONBOARDING"
	CodeSalesSkills        DormancyCode = "TRN_SALES_SKILLS"
	CodeDigitalTools       DormancyCode = "TRN_DIGITAL_TOOLS"
	CodeCertificationDue   DormancyCode = "TRN_CERTIFICATION_PENDING"
	CodeFeaturesUnclear    DormancyCode = "PRD_FEATURES_UNCLEAR"
	CodePremiumCalculation DormancyCode = "PRD_PREMIUM_CALCULATION"
	CodeUnderwritingReject DormancyCode = "PRD_UNDERWRITING_REJECTIONS"
	CodePortfolioChange    DormancyCode = "PRD_PORTFOLIO_CHANGE"
	CodeHealth             DormancyCode = "PER_HEALTH"
	CodeFamily             DormancyCode = "PER_FAMILY"
	CodeRelocation         DormancyCode = "PER_RELOCATION"
	CodeOtherEmployment    DormancyCode = "PER_OTHER_EMPLOYMENT"
	CodeStudies            DormancyCode = "PER_STUDIES"
	CodeHigherCommission   DormancyCode = "CMP_HIGHER_COMMISSION_OFFER"
	CodeJoinedCompetitor   DormancyCode = "CMP_JOINED_COMPETITOR"
	CodeBetterSupport      DormancyCode = "CMP_BETTER_SUPPORT_ELSEWHERE"
	CodeLicenseExpired     DormancyCode = "ADM_LICENSE_EXPIRED"
	CodeKYCPending         DormancyCode = "ADM_KYC_PENDING"
	CodeSystemAccess       DormancyCode = "ADM_SYSTEM_ACCESS"
	CodeCoordinatorSilent  DormancyCode = "ADM_COORDINATOR_UNRESPONSIVE"
	CodeUnclassified       DormancyCode = "UNK_UNCLASSIFIED"
	CodeNoResponse         DormancyCode = "UNK_NO_RESPONSE"
)

// ContactOutcome is the result of the last outreach attempt.
type ContactOutcome string

const (
	OutcomeInterested        ContactOutcome = "interested"
	OutcomeCommitted         ContactOutcome = "committed"
	OutcomeCallbackRequested ContactOutcome = "callback_requested"
	OutcomeNoAnswer          ContactOutcome = "no_answer"
	OutcomeWrongNumber       ContactOutcome = "wrong_number"
	OutcomeNotInterested     ContactOutcome = "not_interested"
	OutcomeComplaint         ContactOutcome = "complaint"
)

// Valid reports whether o is a known outcome.
func (o ContactOutcome) Valid() bool {
	switch o {
	case OutcomeInterested, OutcomeCommitted, OutcomeCallbackRequested, OutcomeNoAnswer,
		OutcomeWrongNumber, OutcomeNotInterested, OutcomeComplaint:
		return true
	}
	return false
}

// IsPositive reports outcomes that count as successful outreach.
func (o ContactOutcome) IsPositive() bool {
	switch o {
	case OutcomeInterested, OutcomeCommitted, OutcomeCallbackRequested:
		return true
	}
	return false
}

// IsNegative reports outcomes that push an agent further from activity.
func (o ContactOutcome) IsNegative() bool {
	return o == OutcomeNotInterested || o == OutcomeComplaint
}

// SentimentLabel is the classified tone of the agent's last message.
type SentimentLabel string

const (
	SentimentPositive   SentimentLabel = "positive"
	SentimentNeutral    SentimentLabel = "neutral"
	SentimentNegative   SentimentLabel = "negative"
	SentimentFrustrated SentimentLabel = "frustrated"
)

// ChannelType is the agent's preferred outreach channel.
type ChannelType string

const (
	ChannelWhatsApp ChannelType = "whatsapp"
	ChannelTelegram ChannelType = "telegram"
	ChannelSMS      ChannelType = "sms"
	ChannelVoice    ChannelType = "voice"
	ChannelInPerson ChannelType = "in_person"
)

// TrainingTopic identifies a training module an agent can complete.
type TrainingTopic string

const (
	TrainingProductBasics TrainingTopic = "product_basics"
	TrainingUnderwriting  TrainingTopic = "underwriting"
	TrainingDigitalTools  TrainingTopic = "digital_tools"
	TrainingSalesSkills   TrainingTopic = "sales_skills"
	TrainingCompliance    TrainingTopic = "compliance"
	TrainingClaimsProcess TrainingTopic = "claims_process"
)

// ProductCategory identifies an insurance product line.
type ProductCategory string

const (
	ProductTermLife  ProductCategory = "term_life"
	ProductEndowment ProductCategory = "endowment"
	ProductULIP      ProductCategory = "ulip"
	ProductHealth    ProductCategory = "health"
	ProductMotor     ProductCategory = "motor"
	ProductPension   ProductCategory = "pension"
)

// Locale selects the language of display labels.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleHindi   Locale = "hi"

	DefaultLocale = LocaleEnglish
)
