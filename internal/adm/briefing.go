package adm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/fieldpulse/internal/domain/model"
	"github.com/ManuGH/fieldpulse/internal/domain/taxonomy"
	"github.com/ManuGH/fieldpulse/internal/playbook"
	"github.com/google/uuid"
)

var ErrInvalidBriefing = errors.New("invalid briefing input")

// briefingNamespace scopes briefing IDs.
var briefingNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/ManuGH/fieldpulse/briefing"))

// Recommendation is the next action suggested for an agent.
type Recommendation struct {
	PlaybookID string              `json:"playbook_id"`
	Action     playbook.ActionType `json:"action"`
	Params     map[string]any      `json:"params,omitempty"`
}

// Advisor recommends the next action for a ranked agent. A nil
// recommendation means nothing applies.
type Advisor interface {
	Recommend(score PriorityScore) (*Recommendation, error)
}

// AdvisorFunc adapts a function to Advisor.
type AdvisorFunc func(PriorityScore) (*Recommendation, error)

func (f AdvisorFunc) Recommend(score PriorityScore) (*Recommendation, error) { return f(score) }

// PlaybookAdvisor recommends the first action of the playbook plan for the
// candidate's facts.
type PlaybookAdvisor struct {
	Catalog *playbook.Catalog
}

// FactFields names the facts the catalog's conditions can read.
func (a PlaybookAdvisor) FactFields() []string {
	fields := a.Catalog.Schema().Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

func (a PlaybookAdvisor) Recommend(score PriorityScore) (*Recommendation, error) {
	if score.Candidate.Facts == nil {
		return nil, nil
	}
	plan, err := a.Catalog.Plan(score.Candidate.Facts)
	if err != nil {
		return nil, err
	}
	first, ok := plan.First()
	if !ok {
		return nil, nil
	}
	return &Recommendation{PlaybookID: first.PlaybookID, Action: first.Type, Params: first.Params}, nil
}

// BriefingEntry is one agent line of a briefing.
type BriefingEntry struct {
	Rank           int             `json:"rank"`
	AgentID        string          `json:"agent_id"`
	Score          float64         `json:"score"`
	DormantDays    int             `json:"dormant_days"`
	Reason         taxonomy.Reason `json:"reason"`
	CategoryLabel  taxonomy.Labels `json:"category_label"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
	Factors        []Factor        `json:"factors"`
}

// Briefing is the coordinator's daily priority list, ready for rendering.
type Briefing struct {
	ID            string          `json:"id"`
	CoordinatorID string          `json:"coordinator_id"`
	Date          string          `json:"date"`
	Entries       []BriefingEntry `json:"entries"`
}

// BuildBriefing composes ranked scores into a briefing. It evaluates nothing
// itself; recommendations come from advisor, which may be nil.
// The ID is BriefingID over the same inputs.
func BuildBriefing(coordinatorID string, ranked []PriorityScore, date time.Time, advisor Advisor) (Briefing, error) {
	if coordinatorID == "" {
		return Briefing{}, fmt.Errorf("%w: coordinator id is required", ErrInvalidBriefing)
	}
	if date.IsZero() {
		return Briefing{}, fmt.Errorf("%w: date is required", ErrInvalidBriefing)
	}
	if len(ranked) > MaxPriorityAgents {
		ranked = ranked[:MaxPriorityAgents]
	}

	b := Briefing{
		CoordinatorID: coordinatorID,
		Date:          date.Format(time.DateOnly),
		Entries:       make([]BriefingEntry, 0, len(ranked)),
	}
	for i, score := range ranked {
		code := score.Candidate.ReasonCode
		if code == "" {
			code = taxonomy.DefaultCode
		}
		reason, err := taxonomy.ReasonByCode(code)
		if err != nil {
			return Briefing{}, fmt.Errorf("agent %s: %w", score.Candidate.AgentID, err)
		}

		entry := BriefingEntry{
			Rank:        i + 1,
			AgentID:     score.Candidate.AgentID,
			Score:       score.Score,
			DormantDays: score.Candidate.DormantDays,
			Reason:      reason,
			CategoryLabel: taxonomy.Labels{
				EN: taxonomy.CategoryLabel(reason.Category, model.LocaleEnglish),
				HI: taxonomy.CategoryLabel(reason.Category, model.LocaleHindi),
			},
			Factors: score.Factors,
		}
		if advisor != nil {
			rec, err := advisor.Recommend(score)
			if err != nil {
				return Briefing{}, fmt.Errorf("recommend for agent %s: %w", score.Candidate.AgentID, err)
			}
			entry.Recommendation = rec
		}
		b.Entries = append(b.Entries, entry)
	}

	b.ID = BriefingID(coordinatorID, ranked, date, factFields(advisor)...)
	return b, nil
}

func factFields(advisor Advisor) []string {
	if f, ok := advisor.(interface{ FactFields() []string }); ok {
		return f.FactFields()
	}
	return nil
}

// BriefingID returns the ID BuildBriefing would assign, without resolving
// reasons or recommendations. Callers use it as a cache key. Besides
// coordinator and day it covers every ranked input that shapes an entry:
// agent, dormancy, reason, category, tier, negative recency, score factors,
// and the named facts the advisor reads.
func BriefingID(coordinatorID string, ranked []PriorityScore, date time.Time, fields ...string) string {
	if len(ranked) > MaxPriorityAgents {
		ranked = ranked[:MaxPriorityAgents]
	}
	var name strings.Builder
	name.WriteString(coordinatorID)
	name.WriteString("|")
	name.WriteString(date.Format(time.DateOnly))
	for _, score := range ranked {
		c := score.Candidate
		neg := "-"
		if c.DaysSinceNegative != nil {
			neg = strconv.Itoa(*c.DaysSinceNegative)
		}
		fmt.Fprintf(&name, "|%s:%d:%s:%s:%s:%s:%v:%v",
			c.AgentID, c.DormantDays, c.ReasonCode, c.Category, c.CoordinatorTier, neg, score.Score, score.Factors)
		if c.Facts == nil {
			continue
		}
		fmt.Fprintf(&name, ":%s", c.Facts.ReferenceTime().UTC().Format(time.RFC3339Nano))
		for _, field := range fields {
			if v, ok := c.Facts.Fact(field); ok {
				fmt.Fprintf(&name, ";%s=%v", field, v)
			}
		}
	}
	return uuid.NewSHA1(briefingNamespace, []byte(name.String())).String()
}
