package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ManuGH/fieldpulse/internal/adm"
	"github.com/ManuGH/fieldpulse/internal/cache"
	"github.com/ManuGH/fieldpulse/internal/config"
	"github.com/ManuGH/fieldpulse/internal/domain/agent"
	"github.com/ManuGH/fieldpulse/internal/domain/lifecycle"
	"github.com/ManuGH/fieldpulse/internal/domain/model"
	"github.com/ManuGH/fieldpulse/internal/domain/taxonomy"
	xglog "github.com/ManuGH/fieldpulse/internal/log"
	"github.com/ManuGH/fieldpulse/internal/playbook"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var asOf = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu        sync.Mutex
	plans     []playbook.ActionPlan
	briefings []adm.Briefing
	err       error
}

func (p *recordingPublisher) PublishPlan(_ context.Context, plan playbook.ActionPlan) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plans = append(p.plans, plan)
	return p.err
}

func (p *recordingPublisher) PublishBriefing(_ context.Context, b adm.Briefing) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.briefings = append(p.briefings, b)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) briefingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.briefings)
}

type fixture struct {
	svc   *Service
	cache *cache.MemoryCache
	pub   *recordingPublisher
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return newLoggedFixture(t, zerolog.Nop())
}

func newLoggedFixture(t *testing.T, logger zerolog.Logger) fixture {
	t.Helper()
	mc := cache.NewMemoryCache(time.Hour, 0)
	pub := &recordingPublisher{}
	svc, err := New(Deps{
		Engine:    config.Defaults().Engine,
		Catalog:   playbook.Default(),
		Cache:     mc,
		Publisher: pub,
		Logger:    logger,
		Now:       func() time.Time { return asOf },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return fixture{svc: svc, cache: mc, pub: pub}
}

func dormantAgent(id string, days int) agent.Snapshot {
	return agent.Snapshot{
		AgentID:              id,
		State:                model.StateDormant,
		DaysSinceLastContact: agent.Int(days),
		AsOf:                 asOf,
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Deps{Engine: config.Defaults().Engine})
	assert.ErrorIs(t, err, ErrNoCatalog)

	engine := config.Defaults().Engine
	engine.Thresholds.DormantAfterDays = engine.Thresholds.AtRiskAfterDays
	_, err = New(Deps{Engine: engine, Catalog: playbook.Default()})
	assert.ErrorIs(t, err, lifecycle.ErrInvalidThresholds)

	engine = config.Defaults().Engine
	engine.Ranking.Weights.Duration = -1
	_, err = New(Deps{Engine: engine, Catalog: playbook.Default()})
	assert.ErrorIs(t, err, adm.ErrInvalidPolicy)
}

func TestNew_FallbackCollaborators(t *testing.T) {
	svc, err := New(Deps{Engine: config.Defaults().Engine, Catalog: playbook.Default()})
	require.NoError(t, err)
	assert.IsType(t, cache.NopCache{}, svc.cache)
	assert.Equal(t, DefaultConcurrency, svc.concurrency)
	assert.Equal(t, model.LocaleEnglish, svc.DefaultLocale())
	assert.Equal(t, model.LocaleHindi, svc.Locale("hi-IN"))
	assert.Equal(t, model.LocaleEnglish, svc.Locale(""))
	require.NoError(t, svc.Close())
}

func TestReassess_AtRiskAgentTurnsDormant(t *testing.T) {
	f := newFixture(t)
	snap := agent.Snapshot{
		AgentID:              "A-42",
		State:                model.StateAtRisk,
		DaysSinceLastContact: agent.Int(45),
		AsOf:                 asOf,
	}

	got, err := f.svc.Reassess(context.Background(), snap)
	require.NoError(t, err)

	assert.Equal(t, model.StateDormant, got.Transition.To)
	assert.Equal(t, model.CodeUnclassified, got.Transition.ReasonCode)
	assert.Equal(t, model.StateDormant, got.Snapshot.State)
	assert.Equal(t, model.CodeUnclassified, got.Snapshot.ReasonCode)

	assert.Equal(t, []string{playbook.IDLongDormantReengagement}, got.Plan.Playbooks)
	first, ok := got.Plan.First()
	require.True(t, ok)
	assert.Equal(t, playbook.ActionSendMessage, first.Type)
	assert.Equal(t, "A-42", first.Params[playbook.ParamAgentID])

	require.Len(t, f.pub.plans, 1)
	assert.Equal(t, "A-42", f.pub.plans[0].AgentID)
}

func TestReassess_ActiveAgentAdvancesThroughStates(t *testing.T) {
	f := newFixture(t)
	snap := agent.Snapshot{
		AgentID:              "A-7",
		State:                model.StateActive,
		DaysSinceLastContact: agent.Int(50),
		DaysSinceLastSale:    agent.Int(60),
		ReasonCode:           model.CodeDelayedPayout,
		AsOf:                 asOf,
	}
	got, err := f.svc.Reassess(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, []model.LifecycleState{model.StateCooling, model.StateAtRisk}, got.Transition.Path)
	assert.Equal(t, model.StateDormant, got.Transition.To)
	assert.Equal(t, model.CodeDelayedPayout, got.Snapshot.ReasonCode)
}

func TestReassess_Terminated(t *testing.T) {
	f := newFixture(t)
	snap := dormantAgent("A-1", 100)
	snap.State = model.StateTerminated

	got, err := f.svc.Reassess(context.Background(), snap)
	require.NoError(t, err)
	assert.False(t, got.Transition.Changed)
	assert.Empty(t, got.Plan.Actions)
	assert.Empty(t, f.pub.plans)
}

func TestReassess_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Reassess(context.Background(), agent.Snapshot{State: model.StateActive})
	assert.ErrorIs(t, err, agent.ErrInvalidSnapshot)

	_, err = f.svc.Reassess(context.Background(), agent.Snapshot{AgentID: "A-1", State: model.StateActive, AsOf: asOf})
	assert.ErrorIs(t, err, lifecycle.ErrMissingActivity)
}

func TestTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     TransitionRequest
		want    model.LifecycleState
		wantErr error
	}{
		{
			name: "single step",
			req:  TransitionRequest{AgentID: "A-1", From: model.StateActive, Event: lifecycle.Inactivity(45)},
			want: model.StateCooling,
		},
		{
			name: "advance",
			req:  TransitionRequest{AgentID: "A-1", From: model.StateActive, Event: lifecycle.Inactivity(45), Advance: true},
			want: model.StateDormant,
		},
		{
			name: "sale reactivates",
			req:  TransitionRequest{AgentID: "A-1", From: model.StateDormant, Event: lifecycle.Sale()},
			want: model.StateReactivating,
		},
		{
			name:    "terminal state",
			req:     TransitionRequest{AgentID: "A-1", From: model.StateTerminated, Event: lifecycle.Sale()},
			wantErr: lifecycle.ErrInvalidTransition,
		},
		{
			name:    "unknown state",
			req:     TransitionRequest{AgentID: "A-1", From: "sleeping", Event: lifecycle.Sale()},
			wantErr: lifecycle.ErrInvalidTransition,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := f.svc.Transition(ctx, tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				var te *lifecycle.TransitionError
				assert.True(t, errors.As(err, &te))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tr.To)
		})
	}
}

func TestSelectAndPlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	snap := dormantAgent("A-9", 95)
	snap.ReasonCode = model.CodeDelayedPayout

	selected, err := f.svc.SelectPlaybooks(ctx, snap)
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, playbook.IDLongDormantReengagement, selected[0].ID)

	plan, err := f.svc.Plan(ctx, snap)
	require.NoError(t, err)
	require.Len(t, plan.Actions, 3, "message, call and escalation past 90 days")
	assert.Equal(t, playbook.ActionEscalateToHuman, plan.Actions[2].Type)
	assert.Equal(t, model.CodeDelayedPayout, plan.Actions[0].Params["reason_code"])

	_, err = f.svc.Plan(ctx, agent.Snapshot{AgentID: "A-1", State: "nope"})
	assert.ErrorIs(t, err, agent.ErrInvalidSnapshot)
}

func TestPlan_DispatchFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")

	plan, err := f.svc.Plan(context.Background(), dormantAgent("A-1", 40))
	require.NoError(t, err)
	assert.NotEmpty(t, plan.Actions)
}

func TestClassify(t *testing.T) {
	f := newFixture(t)
	tier, err := f.svc.Classify(context.Background(), "ADM-1", adm.Metrics{ResponseRate: 0.9, ReactivationRate: 0.4, AvgResponseHours: 4})
	require.NoError(t, err)
	assert.Equal(t, adm.TierExemplary, tier)

	_, err = f.svc.Classify(context.Background(), "ADM-1", adm.Metrics{ResponseRate: 1.5})
	assert.ErrorIs(t, err, adm.ErrInvalidMetrics)
}

func TestRank_Caps(t *testing.T) {
	f := newFixture(t)
	var candidates []adm.Candidate
	for i := range 8 {
		candidates = append(candidates, adm.Candidate{AgentID: fmt.Sprintf("A-%d", i), DormantDays: 30 + i})
	}
	ranked := f.svc.Rank(context.Background(), candidates)
	require.Len(t, ranked, adm.MaxPriorityAgents)
	assert.Equal(t, "A-7", ranked[0].Candidate.AgentID)
}

func TestClassifyAndRank_LogWithScope(t *testing.T) {
	var buf bytes.Buffer
	f := newLoggedFixture(t, zerolog.New(&buf).Level(zerolog.DebugLevel))
	ctx := xglog.ContextWithRequestID(context.Background(), "req-42")

	_, err := f.svc.Classify(ctx, "ADM-3", adm.Metrics{ResponseRate: 0.5, ReactivationRate: 0.2, AvgResponseHours: 24})
	require.NoError(t, err)
	f.svc.Rank(ctx, []adm.Candidate{{AgentID: "A-1", DormantDays: 40}})

	out := buf.String()
	assert.Contains(t, out, `"event":"adm.classified"`)
	assert.Contains(t, out, `"coordinator_id":"ADM-3"`)
	assert.Contains(t, out, `"event":"`+xglog.EventRankComputed+`"`)
	assert.Equal(t, 2, strings.Count(out, `"request_id":"req-42"`))
}

func TestBriefing_CachedOnSecondCall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := BriefingRequest{
		CoordinatorID:   "ADM-7",
		CoordinatorTier: adm.TierDeveloping,
		Agents:          []agent.Snapshot{dormantAgent("A-1", 60), dormantAgent("A-2", 35)},
	}

	first, err := f.svc.Briefing(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, asOf.Format(time.DateOnly), first.Date)
	require.Len(t, first.Entries, 2)
	assert.Equal(t, "A-1", first.Entries[0].AgentID)
	assert.Equal(t, taxonomy.DefaultCode, first.Entries[0].Reason.Code)
	require.NotNil(t, first.Entries[0].Recommendation)
	assert.Equal(t, playbook.IDLongDormantReengagement, first.Entries[0].Recommendation.PlaybookID)

	second, err := f.svc.Briefing(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	stats := f.cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, 1, f.pub.briefingCount(), "cache hits are not re-dispatched")
}

func TestBriefing_ChangedFactsMissCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := BriefingRequest{CoordinatorID: "ADM-7", Agents: []agent.Snapshot{dormantAgent("A-1", 60)}}

	first, err := f.svc.Briefing(ctx, req)
	require.NoError(t, err)

	moved := dormantAgent("A-1", 150)
	moved.ReasonCode = model.CodeJoinedCompetitor
	req.Agents = []agent.Snapshot{moved}
	second, err := f.svc.Briefing(ctx, req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	require.Len(t, second.Entries, 1)
	assert.Equal(t, 150, second.Entries[0].DormantDays)
	assert.Equal(t, model.CodeJoinedCompetitor, second.Entries[0].Reason.Code)
	assert.Equal(t, int64(0), f.cache.Stats().Hits)
	assert.Equal(t, 2, f.pub.briefingCount())
}

func TestBriefing_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Briefing(ctx, BriefingRequest{})
	assert.ErrorIs(t, err, adm.ErrInvalidBriefing)

	_, err = f.svc.Briefing(ctx, BriefingRequest{
		CoordinatorID: "ADM-1",
		Agents:        []agent.Snapshot{{AgentID: "A-1", State: model.StateDormant, AsOf: asOf}},
	})
	assert.ErrorIs(t, err, lifecycle.ErrMissingActivity)

	_, err = f.svc.Briefing(ctx, BriefingRequest{
		CoordinatorID: "ADM-1",
		Candidates:    []adm.Candidate{{AgentID: "A-1", DormantDays: 50, ReasonCode: "NOPE"}},
	})
	assert.ErrorIs(t, err, taxonomy.ErrUnknownReasonCode)
}

func TestReplaceCatalog_ClearsCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Briefing(ctx, BriefingRequest{CoordinatorID: "ADM-1", Agents: []agent.Snapshot{dormantAgent("A-1", 60)}})
	require.NoError(t, err)
	require.Equal(t, 1, f.cache.Stats().CurrentSize)

	smaller, err := playbook.NewCatalog(agent.FactSchema(), playbook.DefaultPlaybooks()[:1]...)
	require.NoError(t, err)
	require.NoError(t, f.svc.ReplaceCatalog(ctx, smaller))
	assert.Equal(t, 1, f.svc.Catalog().Len())
	assert.Equal(t, 0, f.cache.Stats().CurrentSize)

	assert.ErrorIs(t, f.svc.ReplaceCatalog(ctx, nil), ErrNoCatalog)
}

func TestPortfolioBriefings_KeepsOrder(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := newFixture(t)
	f.svc.concurrency = 3
	var reqs []BriefingRequest
	for i := range 10 {
		reqs = append(reqs, BriefingRequest{
			CoordinatorID: fmt.Sprintf("ADM-%02d", i),
			Agents:        []agent.Snapshot{dormantAgent(fmt.Sprintf("A-%d", i), 30+i)},
		})
	}

	out, err := f.svc.PortfolioBriefings(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, out, len(reqs))
	for i, b := range out {
		assert.Equal(t, reqs[i].CoordinatorID, b.CoordinatorID)
	}
}

func TestPortfolioBriefings_FirstErrorWins(t *testing.T) {
	f := newFixture(t)
	reqs := []BriefingRequest{
		{CoordinatorID: "ADM-1", Agents: []agent.Snapshot{dormantAgent("A-1", 40)}},
		{CoordinatorID: ""},
	}
	_, err := f.svc.PortfolioBriefings(context.Background(), reqs)
	require.Error(t, err)
	assert.ErrorIs(t, err, adm.ErrInvalidBriefing)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.svc.PortfolioBriefings(ctx, reqs[:1])
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReasonByCode(t *testing.T) {
	f := newFixture(t)
	r, err := f.svc.ReasonByCode(context.Background(), model.CodeDelayedPayout)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryCompensation, r.Category)

	_, err = f.svc.ReasonByCode(context.Background(), "XYZ")
	assert.ErrorIs(t, err, taxonomy.ErrUnknownReasonCode)
}
