// Package adm ranks agents for a coordinator (ADM) and assembles the daily
// briefing. Everything here is pure over its inputs.
package adm

import (
	"errors"
	"fmt"
	"math"
)

type Tier string

const (
	TierExemplary    Tier = "exemplary"
	TierEffective    Tier = "effective"
	TierDeveloping   Tier = "developing"
	TierNeedsSupport Tier = "needs_support"
)

func (t Tier) Valid() bool {
	switch t {
	case TierExemplary, TierEffective, TierDeveloping, TierNeedsSupport:
		return true
	}
	return false
}

// Tiers returns the tiers best first.
func Tiers() []Tier {
	return []Tier{TierExemplary, TierEffective, TierDeveloping, TierNeedsSupport}
}

var ErrInvalidMetrics = errors.New("invalid coordinator metrics")

// Metrics summarise a coordinator's outreach over a reporting window.
type Metrics struct {
	ResponseRate     float64 `json:"response_rate" yaml:"responseRate"`
	ReactivationRate float64 `json:"reactivation_rate" yaml:"reactivationRate"`
	AvgResponseHours float64 `json:"avg_response_hours" yaml:"avgResponseHours"`
}

func (m Metrics) Validate() error {
	for name, rate := range map[string]float64{"response_rate": m.ResponseRate, "reactivation_rate": m.ReactivationRate} {
		if math.IsNaN(rate) || rate < 0 || rate > 1 {
			return fmt.Errorf("%w: %s %v outside [0,1]", ErrInvalidMetrics, name, rate)
		}
	}
	if math.IsNaN(m.AvgResponseHours) || m.AvgResponseHours < 0 {
		return fmt.Errorf("%w: avg_response_hours %v", ErrInvalidMetrics, m.AvgResponseHours)
	}
	return nil
}

// Band is the minimum bar for a tier. All bounds are inclusive.
type Band struct {
	Tier                Tier    `json:"tier" yaml:"tier"`
	MinResponseRate     float64 `json:"min_response_rate" yaml:"minResponseRate"`
	MinReactivationRate float64 `json:"min_reactivation_rate" yaml:"minReactivationRate"`
	MaxResponseHours    float64 `json:"max_response_hours" yaml:"maxResponseHours"`
}

func (b Band) admits(m Metrics) bool {
	return m.ResponseRate >= b.MinResponseRate &&
		m.ReactivationRate >= b.MinReactivationRate &&
		m.AvgResponseHours <= b.MaxResponseHours
}

// Bands are ordered best tier first; metrics below every band need support.
type Bands []Band

func DefaultBands() Bands {
	return Bands{
		{Tier: TierExemplary, MinResponseRate: 0.90, MinReactivationRate: 0.40, MaxResponseHours: 4},
		{Tier: TierEffective, MinResponseRate: 0.75, MinReactivationRate: 0.25, MaxResponseHours: 12},
		{Tier: TierDeveloping, MinResponseRate: 0.50, MinReactivationRate: 0.10, MaxResponseHours: 24},
	}
}

// Validate requires bands to be monotonically looser from best to worst.
func (bs Bands) Validate() error {
	for i, b := range bs {
		if !b.Tier.Valid() || b.Tier == TierNeedsSupport {
			return fmt.Errorf("band %d: invalid tier %q", i, b.Tier)
		}
		if i == 0 {
			continue
		}
		prev := bs[i-1]
		if b.MinResponseRate > prev.MinResponseRate || b.MinReactivationRate > prev.MinReactivationRate ||
			b.MaxResponseHours < prev.MaxResponseHours {
			return fmt.Errorf("band %d (%s) is stricter than %s", i, b.Tier, prev.Tier)
		}
	}
	return nil
}

// ClassifyEffectiveness returns the best tier whose band admits m. A value
// exactly on a threshold reaches the higher tier.
func ClassifyEffectiveness(m Metrics, bands Bands) Tier {
	for _, b := range bands {
		if b.admits(m) {
			return b.Tier
		}
	}
	return TierNeedsSupport
}
