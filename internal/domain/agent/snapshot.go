// Package agent holds the per-agent fact snapshot that lifecycle, playbook and
// ADM logic evaluate against.
package agent

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ManuGH/fieldpulse/internal/domain/model"
	"github.com/ManuGH/fieldpulse/internal/domain/taxonomy"
)

// ErrInvalidSnapshot is returned by Validate.
var ErrInvalidSnapshot = errors.New("invalid agent snapshot")

// Snapshot is the read-only view of one agent at AsOf.
// Zero values and nil pointers mean the fact is unknown.
type Snapshot struct {
	AgentID       string               `json:"agent_id" yaml:"agent_id"`
	CoordinatorID string               `json:"coordinator_id,omitempty" yaml:"coordinator_id,omitempty"`
	State         model.LifecycleState `json:"lifecycle_state" yaml:"lifecycle_state"`
	ReasonCode    model.DormancyCode   `json:"dormancy_reason_code,omitempty" yaml:"dormancy_reason_code,omitempty"`

	DaysSinceLastContact *int `json:"days_since_last_contact,omitempty" yaml:"days_since_last_contact,omitempty"`
	DaysSinceLastSale    *int `json:"days_since_last_sale,omitempty" yaml:"days_since_last_sale,omitempty"`
	DaysSinceOnboarding  *int `json:"days_since_onboarding,omitempty" yaml:"days_since_onboarding,omitempty"`
	UnresolvedComplaints *int `json:"unresolved_complaints,omitempty" yaml:"unresolved_complaints,omitempty"`
	PoliciesSold30d      *int `json:"policies_sold_30d,omitempty" yaml:"policies_sold_30d,omitempty"`

	LastOutcome      model.ContactOutcome  `json:"last_contact_outcome,omitempty" yaml:"last_contact_outcome,omitempty"`
	LastSentiment    model.SentimentLabel  `json:"last_sentiment,omitempty" yaml:"last_sentiment,omitempty"`
	PreferredChannel model.ChannelType     `json:"preferred_channel,omitempty" yaml:"preferred_channel,omitempty"`
	LastSaleProduct  model.ProductCategory `json:"last_sale_product,omitempty" yaml:"last_sale_product,omitempty"`

	LastContactAt   *time.Time `json:"last_contact_at,omitempty" yaml:"last_contact_at,omitempty"`
	LastSaleAt      *time.Time `json:"last_sale_at,omitempty" yaml:"last_sale_at,omitempty"`
	OnboardedAt     *time.Time `json:"onboarded_at,omitempty" yaml:"onboarded_at,omitempty"`
	LastComplaintAt *time.Time `json:"last_complaint_at,omitempty" yaml:"last_complaint_at,omitempty"`

	CompletedTrainings []model.TrainingTopic `json:"completed_trainings,omitempty" yaml:"completed_trainings,omitempty"`

	// Facts carries custom facts; they are referenceable once declared in the schema.
	Facts map[string]any `json:"facts,omitempty" yaml:"facts,omitempty"`

	// AsOf is the reference instant for day counts and temporal operators.
	AsOf time.Time `json:"as_of" yaml:"as_of"`
}

// Fact implements condition.Facts.
func (s Snapshot) Fact(name string) (any, bool) {
	switch name {
	case FieldAgentID:
		return nonEmpty(s.AgentID)
	case FieldLifecycleState:
		return nonEmpty(s.State)
	case FieldReasonCode:
		return nonEmpty(s.ReasonCode)
	case FieldCategory:
		c, ok := s.Category()
		if !ok {
			return nil, false
		}
		return c, true
	case FieldDaysSinceLastContact:
		return intFact(s.ContactRecency())
	case FieldDaysSinceLastSale:
		return intFact(s.SaleRecency())
	case FieldDaysSinceOnboarding:
		return intFact(s.recency(s.DaysSinceOnboarding, s.OnboardedAt))
	case FieldUnresolvedComplaints:
		return derefInt(s.UnresolvedComplaints)
	case FieldPoliciesSold30d:
		return derefInt(s.PoliciesSold30d)
	case FieldLastOutcome:
		return nonEmpty(s.LastOutcome)
	case FieldLastSentiment:
		return nonEmpty(s.LastSentiment)
	case FieldPreferredChannel:
		return nonEmpty(s.PreferredChannel)
	case FieldLastSaleProduct:
		return nonEmpty(s.LastSaleProduct)
	case FieldLastContactAt:
		return derefTime(s.LastContactAt)
	case FieldLastSaleAt:
		return derefTime(s.LastSaleAt)
	case FieldOnboardedAt:
		return derefTime(s.OnboardedAt)
	case FieldLastComplaintAt:
		return derefTime(s.LastComplaintAt)
	case FieldCompletedTrainings:
		// A nil list is unknown; an empty list is "completed nothing".
		if s.CompletedTrainings == nil {
			return nil, false
		}
		return s.CompletedTrainings, true
	}
	v, ok := s.Facts[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// ReferenceTime implements condition.Facts.
func (s Snapshot) ReferenceTime() time.Time { return s.AsOf }

// Category derives the dormancy category from ReasonCode.
func (s Snapshot) Category() (model.DormancyCategory, bool) {
	if s.ReasonCode == "" {
		return "", false
	}
	c, err := taxonomy.CategoryOf(s.ReasonCode)
	if err != nil {
		return "", false
	}
	return c, true
}

// ContactRecency returns whole days since the last contact. An explicit
// counter wins over a value derived from LastContactAt and AsOf.
func (s Snapshot) ContactRecency() (int, bool) {
	return s.recency(s.DaysSinceLastContact, s.LastContactAt)
}

// SaleRecency returns whole days since the last sale.
func (s Snapshot) SaleRecency() (int, bool) {
	return s.recency(s.DaysSinceLastSale, s.LastSaleAt)
}

// HasCompleted reports whether topic is among the completed trainings.
func (s Snapshot) HasCompleted(topic model.TrainingTopic) bool {
	for _, t := range s.CompletedTrainings {
		if t == topic {
			return true
		}
	}
	return false
}

func (s Snapshot) recency(explicit *int, at *time.Time) (int, bool) {
	if explicit != nil {
		return *explicit, true
	}
	if at == nil || s.AsOf.IsZero() {
		return 0, false
	}
	return DaysBetween(*at, s.AsOf), true
}

// Validate rejects snapshots no evaluation should run against.
func (s Snapshot) Validate() error {
	var errs []error
	if s.AgentID == "" {
		errs = append(errs, errors.New("agent_id is required"))
	}
	if !s.State.Valid() {
		errs = append(errs, fmt.Errorf("lifecycle_state %q is not a known state", s.State))
	}
	if s.ReasonCode != "" && !taxonomy.Known(s.ReasonCode) {
		errs = append(errs, fmt.Errorf("dormancy_reason_code %q is not in the taxonomy", s.ReasonCode))
	}
	if s.LastOutcome != "" && !s.LastOutcome.Valid() {
		errs = append(errs, fmt.Errorf("last_contact_outcome %q is not a known outcome", s.LastOutcome))
	}
	for name, p := range map[string]*int{
		FieldDaysSinceLastContact: s.DaysSinceLastContact,
		FieldDaysSinceLastSale:    s.DaysSinceLastSale,
		FieldDaysSinceOnboarding:  s.DaysSinceOnboarding,
		FieldUnresolvedComplaints: s.UnresolvedComplaints,
		FieldPoliciesSold30d:      s.PoliciesSold30d,
	} {
		if p != nil && *p < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidSnapshot, errors.Join(errs...))
}

// DaysBetween returns the whole days elapsed from since to ref, floored.
// A since after ref yields zero.
func DaysBetween(since, ref time.Time) int {
	d := ref.Sub(since)
	if d <= 0 {
		return 0
	}
	return int(math.Floor(d.Hours() / 24))
}

// Int returns a pointer to v, for building snapshots in literals.
func Int(v int) *int { return &v }

// Time returns a pointer to t.
func Time(t time.Time) *time.Time { return &t }

func nonEmpty[T ~string](v T) (any, bool) {
	if v == "" {
		return nil, false
	}
	return v, true
}

func intFact(v int, ok bool) (any, bool) {
	if !ok {
		return nil, false
	}
	return v, true
}

func derefInt(p *int) (any, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}

func derefTime(p *time.Time) (any, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}
