package adm

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ManuGH/fieldpulse/internal/condition"
	"github.com/ManuGH/fieldpulse/internal/domain/agent"
	"github.com/ManuGH/fieldpulse/internal/domain/lifecycle"
	"github.com/ManuGH/fieldpulse/internal/domain/model"
)

// MaxPriorityAgents caps every ranking. Policies may lower it, never raise it.
const MaxPriorityAgents = 5

// Factor names, in the order they appear on a PriorityScore.
const (
	FactorDuration        = "dormancy_duration"
	FactorSeverity        = "category_severity"
	FactorCoordinatorTier = "coordinator_tier"
	FactorNegativeRecency = "negative_recency"
)

var ErrInvalidPolicy = errors.New("invalid ranking policy")

type Weights struct {
	Duration        float64 `json:"duration" yaml:"duration"`
	Severity        float64 `json:"severity" yaml:"severity"`
	CoordinatorTier float64 `json:"coordinator_tier" yaml:"coordinatorTier"`
	NegativeRecency float64 `json:"negative_recency" yaml:"negativeRecency"`
}

// Policy holds every constant the ranking depends on.
type Policy struct {
	Weights            Weights                            `json:"weights" yaml:"weights"`
	DurationCapDays    int                                `json:"duration_cap_days" yaml:"durationCapDays"`
	NegativeWindowDays int                                `json:"negative_window_days" yaml:"negativeWindowDays"`
	Severity           map[model.DormancyCategory]float64 `json:"severity" yaml:"severity"`
	TierFactor         map[Tier]float64                   `json:"tier_factor" yaml:"tierFactor"`
	Limit              int                                `json:"limit" yaml:"limit"`
}

func DefaultPolicy() Policy {
	return Policy{
		Weights:            Weights{Duration: 0.40, Severity: 0.25, CoordinatorTier: 0.15, NegativeRecency: 0.20},
		DurationCapDays:    180,
		NegativeWindowDays: 30,
		Severity: map[model.DormancyCategory]float64{
			model.CategoryCompetitivePoaching: 1.0,
			model.CategoryCompensation:        0.9,
			model.CategoryAdministrative:      0.8,
			model.CategoryTrainingGap:         0.7,
			model.CategoryProductConfusion:    0.6,
			model.CategoryUnknown:             0.5,
			model.CategoryPersonal:            0.3,
		},
		TierFactor: map[Tier]float64{
			TierNeedsSupport: 1.0,
			TierDeveloping:   0.67,
			TierEffective:    0.33,
			TierExemplary:    0.0,
		},
		Limit: MaxPriorityAgents,
	}
}

// unratedTierFactor applies to candidates whose coordinator has no tier yet.
const unratedTierFactor = 0.5

func (p Policy) Validate() error {
	w := p.Weights
	for name, v := range map[string]float64{
		"duration": w.Duration, "severity": w.Severity, "coordinator_tier": w.CoordinatorTier, "negative_recency": w.NegativeRecency,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: weight %s is %v", ErrInvalidPolicy, name, v)
		}
	}
	if p.DurationCapDays <= 0 || p.NegativeWindowDays <= 0 {
		return fmt.Errorf("%w: duration cap and negative window must be positive", ErrInvalidPolicy)
	}
	for c, v := range p.Severity {
		if !c.Valid() || !(v >= 0 && v <= 1) {
			return fmt.Errorf("%w: severity %s=%v", ErrInvalidPolicy, c, v)
		}
	}
	for t, v := range p.TierFactor {
		if !t.Valid() || !(v >= 0 && v <= 1) {
			return fmt.Errorf("%w: tier factor %s=%v", ErrInvalidPolicy, t, v)
		}
	}
	if p.Limit < 0 {
		return fmt.Errorf("%w: negative limit", ErrInvalidPolicy)
	}
	return nil
}

// orDefault returns p, or DefaultPolicy when p does not validate.
func (p Policy) orDefault() Policy {
	if p.Validate() != nil {
		return DefaultPolicy()
	}
	return p
}

func (p Policy) limit() int {
	if p.Limit <= 0 || p.Limit > MaxPriorityAgents {
		return MaxPriorityAgents
	}
	return p.Limit
}

// Candidate is one dormant or at-risk agent competing for coordinator attention.
type Candidate struct {
	AgentID         string                 `json:"agent_id"`
	CoordinatorID   string                 `json:"coordinator_id,omitempty"`
	DormantDays     int                    `json:"dormant_days"`
	Category        model.DormancyCategory `json:"category,omitempty"`
	ReasonCode      model.DormancyCode     `json:"reason_code,omitempty"`
	CoordinatorTier Tier                   `json:"coordinator_tier,omitempty"`
	// DaysSinceNegative is nil when the agent has no negative interaction on record.
	DaysSinceNegative *int `json:"days_since_negative,omitempty"`

	// Facts feed the briefing advisor; ranking ignores them.
	Facts condition.Facts `json:"-"`
}

// CandidateFromSnapshot derives a candidate from s. Dormancy duration is the
// snapshot's inactivity; the latest of a negative contact outcome and an open
// complaint counts as the last negative interaction.
func CandidateFromSnapshot(s agent.Snapshot, tier Tier) (Candidate, error) {
	days, err := lifecycle.InactivityDays(s)
	if err != nil {
		return Candidate{}, fmt.Errorf("agent %s: %w", s.AgentID, err)
	}
	c := Candidate{
		AgentID:         s.AgentID,
		CoordinatorID:   s.CoordinatorID,
		DormantDays:     days,
		Category:        model.CategoryUnknown,
		ReasonCode:      s.ReasonCode,
		CoordinatorTier: tier,
		Facts:           s,
	}
	if cat, ok := s.Category(); ok {
		c.Category = cat
	}

	var negative []int
	if s.LastOutcome.IsNegative() {
		if d, ok := s.ContactRecency(); ok {
			negative = append(negative, d)
		}
	}
	if s.UnresolvedComplaints != nil && *s.UnresolvedComplaints > 0 && s.LastComplaintAt != nil && !s.AsOf.IsZero() {
		negative = append(negative, agent.DaysBetween(*s.LastComplaintAt, s.AsOf))
	}
	if len(negative) > 0 {
		freshest := negative[0]
		for _, d := range negative[1:] {
			freshest = min(freshest, d)
		}
		c.DaysSinceNegative = &freshest
	}
	return c, nil
}

// Factor explains one term of a score.
type Factor struct {
	Name         string  `json:"name"`
	Raw          float64 `json:"raw"`
	Normalized   float64 `json:"normalized"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// PriorityScore is a ranked candidate with its explanation.
type PriorityScore struct {
	Rank      int       `json:"rank"`
	Candidate Candidate `json:"candidate"`
	Score     float64   `json:"score"`
	Factors   []Factor  `json:"factors"`
	// TieBreak renders the full sort key: score desc, dormant days desc, agent ID asc.
	TieBreak string `json:"tie_break"`
}

// Score computes the weighted, rounded score of c. A policy that fails
// Validate is replaced by DefaultPolicy.
func Score(c Candidate, p Policy) (float64, []Factor) {
	return score(c, p.orDefault())
}

func score(c Candidate, p Policy) (float64, []Factor) {
	days := float64(max(c.DormantDays, 0))
	severity, ok := p.Severity[c.Category]
	if !ok {
		severity = p.Severity[model.CategoryUnknown]
	}
	tier, ok := p.TierFactor[c.CoordinatorTier]
	if !ok {
		tier = unratedTierFactor
	}
	var negRaw, neg float64
	if c.DaysSinceNegative != nil {
		negRaw = float64(max(*c.DaysSinceNegative, 0))
		neg = clip01(1 - negRaw/float64(p.NegativeWindowDays))
	}

	factors := []Factor{
		factor(FactorDuration, days, clip01(days/float64(p.DurationCapDays)), p.Weights.Duration),
		factor(FactorSeverity, severity, severity, p.Weights.Severity),
		factor(FactorCoordinatorTier, tier, tier, p.Weights.CoordinatorTier),
		factor(FactorNegativeRecency, negRaw, neg, p.Weights.NegativeRecency),
	}
	var total float64
	for _, f := range factors {
		total += f.Contribution
	}
	return round6(total), factors
}

// Rank scores candidates and returns at most the policy limit, best first.
// Candidates beyond the cap are dropped. Like Score, it falls back to
// DefaultPolicy when p is invalid.
func Rank(candidates []Candidate, p Policy) []PriorityScore {
	p = p.orDefault()
	scored := make([]PriorityScore, 0, len(candidates))
	for _, c := range candidates {
		total, factors := score(c, p)
		scored = append(scored, PriorityScore{Candidate: c, Score: total, Factors: factors})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Candidate.DormantDays != b.Candidate.DormantDays {
			return a.Candidate.DormantDays > b.Candidate.DormantDays
		}
		return a.Candidate.AgentID < b.Candidate.AgentID
	})

	if n := p.limit(); len(scored) > n {
		scored = scored[:n]
	}
	for i := range scored {
		scored[i].Rank = i + 1
		scored[i].TieBreak = fmt.Sprintf("score=%.6f dormant_days=%d agent_id=%s",
			scored[i].Score, scored[i].Candidate.DormantDays, scored[i].Candidate.AgentID)
	}
	return scored
}

func factor(name string, raw, normalized, weight float64) Factor {
	return Factor{
		Name:         name,
		Raw:          raw,
		Normalized:   round6(normalized),
		Weight:       weight,
		Contribution: round6(weight * normalized),
	}
}

// clip01 clamps v to [0, 1]; NaN becomes 0.
func clip01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
