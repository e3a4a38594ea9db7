package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/fieldpulse/internal/adm"
	"github.com/ManuGH/fieldpulse/internal/domain/agent"
	"github.com/ManuGH/fieldpulse/internal/domain/lifecycle"
	"github.com/ManuGH/fieldpulse/internal/domain/model"
	"github.com/ManuGH/fieldpulse/internal/domain/taxonomy"
	xglog "github.com/ManuGH/fieldpulse/internal/log"
	"github.com/ManuGH/fieldpulse/internal/metrics"
	"github.com/ManuGH/fieldpulse/internal/playbook"
	"github.com/ManuGH/fieldpulse/internal/telemetry"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// TransitionRequest asks for one lifecycle event against an agent's state.
type TransitionRequest struct {
	AgentID string               `json:"agent_id"`
	From    model.LifecycleState `json:"from"`
	Event   lifecycle.Event      `json:"event"`
	// Advance keeps applying an inactivity event until the state is stable.
	Advance bool `json:"advance,omitempty"`
}

// Assessment is the result of re-evaluating one agent snapshot.
type Assessment struct {
	Transition lifecycle.Transition `json:"transition"`
	// Snapshot carries the post-transition state and reason code.
	Snapshot agent.Snapshot      `json:"snapshot"`
	Plan     playbook.ActionPlan `json:"plan"`
}

// BriefingRequest describes one coordinator's briefing. Agents are converted
// to candidates with the coordinator's tier; Candidates are ranked as given.
type BriefingRequest struct {
	CoordinatorID   string           `json:"coordinator_id"`
	CoordinatorTier adm.Tier         `json:"coordinator_tier,omitempty"`
	Date            time.Time        `json:"date,omitempty"`
	Agents          []agent.Snapshot `json:"agents,omitempty"`
	Candidates      []adm.Candidate  `json:"candidates,omitempty"`
}

// Transition applies one event. Rejected events are counted and returned
// unchanged so callers can match lifecycle.ErrInvalidTransition.
func (s *Service) Transition(ctx context.Context, req TransitionRequest) (lifecycle.Transition, error) {
	ctx, span := s.tracer.Start(ctx, "lifecycle.transition")
	defer span.End()
	ctx = xglog.ContextWithAgentID(ctx, req.AgentID)
	logger := xglog.WithContext(ctx, s.logger)

	apply := s.machine.Apply
	if req.Advance {
		apply = s.machine.Advance
	}
	tr, err := apply(req.From, req.Event)
	if err != nil {
		metrics.RecordRejectedTransition(req.From, req.Event.Type)
		fail(span, err, "invalid_transition")
		logger.Debug().Err(err).
			Str(xglog.FieldEvent, "lifecycle.rejected").
			Str(xglog.FieldOldState, string(req.From)).
			Msg("lifecycle event rejected")
		return lifecycle.Transition{}, err
	}

	metrics.RecordTransition(tr)
	span.SetAttributes(telemetry.TransitionAttributes(req.AgentID, string(tr.From), string(tr.To), string(tr.Event), string(tr.ReasonCode))...)
	if tr.Changed {
		logger.Info().
			Str(xglog.FieldEvent, xglog.EventLifecycleTransition).
			Str(xglog.FieldOldState, string(tr.From)).
			Str(xglog.FieldNewState, string(tr.To)).
			Str(xglog.FieldReasonCode, string(tr.ReasonCode)).
			Msg("lifecycle state changed")
	}
	return tr, nil
}

// SelectPlaybooks returns the playbooks that trigger for snap.
func (s *Service) SelectPlaybooks(ctx context.Context, snap agent.Snapshot) ([]playbook.Playbook, error) {
	_, span := s.tracer.Start(ctx, "playbook.select")
	defer span.End()

	if err := snap.Validate(); err != nil {
		fail(span, err, "invalid_snapshot")
		return nil, err
	}
	selected, err := s.Catalog().Select(snap)
	if err != nil {
		fail(span, err, "catalog")
		return nil, err
	}
	span.SetAttributes(telemetry.PlanAttributes(snap.AgentID, len(selected), 0, 0)...)
	return selected, nil
}

// Plan builds the action plan for snap and hands it to the publisher.
func (s *Service) Plan(ctx context.Context, snap agent.Snapshot) (playbook.ActionPlan, error) {
	ctx, span := s.tracer.Start(ctx, "playbook.plan")
	defer span.End()

	if err := snap.Validate(); err != nil {
		fail(span, err, "invalid_snapshot")
		return playbook.ActionPlan{}, err
	}
	plan, err := s.plan(ctx, snap)
	if err != nil {
		fail(span, err, "catalog")
		return playbook.ActionPlan{}, err
	}
	span.SetAttributes(telemetry.PlanAttributes(plan.AgentID, len(plan.Playbooks), len(plan.Excluded), len(plan.Actions))...)
	return plan, nil
}

func (s *Service) plan(ctx context.Context, snap agent.Snapshot) (playbook.ActionPlan, error) {
	ctx = xglog.ContextWithAgentID(ctx, snap.AgentID)
	logger := xglog.WithContext(ctx, s.logger)

	plan, err := s.Catalog().Plan(snap)
	if err != nil {
		return playbook.ActionPlan{}, err
	}
	metrics.RecordPlan(plan)
	for _, id := range plan.Playbooks {
		logger.Info().
			Str(xglog.FieldEvent, xglog.EventPlaybookSelected).
			Str(xglog.FieldPlaybookID, id).
			Msg("playbook selected")
	}
	if len(plan.Excluded) > 0 {
		logger.Debug().
			Str(xglog.FieldEvent, xglog.EventPlaybookExcluded).
			Strs("playbooks", plan.Excluded).
			Msg("playbooks excluded for missing facts")
	}

	// Hand-off is best effort: the plan is still returned when the broker is down.
	err = s.publisher.PublishPlan(ctx, plan)
	metrics.RecordDispatch(err)
	if err != nil {
		logger.Warn().Err(err).Str(xglog.FieldEvent, "dispatch.failed").Msg("action plan not dispatched")
	}
	return plan, nil
}

// Reassess derives the inactivity event for snap, advances its lifecycle and
// plans against the resulting state. Terminated agents are returned as-is
// with an empty plan.
func (s *Service) Reassess(ctx context.Context, snap agent.Snapshot) (Assessment, error) {
	ctx, span := s.tracer.Start(ctx, "agent.reassess")
	defer span.End()

	if err := snap.Validate(); err != nil {
		fail(span, err, "invalid_snapshot")
		return Assessment{}, err
	}
	if snap.State.IsTerminal() {
		return Assessment{
			Transition: lifecycle.Transition{From: snap.State, To: snap.State},
			Snapshot:   snap,
			Plan:       playbook.ActionPlan{AgentID: snap.AgentID, Playbooks: []string{}, Actions: []playbook.Action{}},
		}, nil
	}

	ev, err := lifecycle.InactivityEvent(snap)
	if err != nil {
		fail(span, err, "missing_activity")
		return Assessment{}, fmt.Errorf("agent %s: %w", snap.AgentID, err)
	}
	tr, err := s.Transition(ctx, TransitionRequest{AgentID: snap.AgentID, From: snap.State, Event: ev, Advance: true})
	if err != nil {
		return Assessment{}, err
	}

	next := snap
	next.State = tr.To
	if tr.ReasonCode != "" {
		next.ReasonCode = tr.ReasonCode
	}
	plan, err := s.plan(ctx, next)
	if err != nil {
		fail(span, err, "catalog")
		return Assessment{}, err
	}
	return Assessment{Transition: tr, Snapshot: next, Plan: plan}, nil
}

// Classify returns the effectiveness tier for one coordinator.
func (s *Service) Classify(ctx context.Context, coordinatorID string, m adm.Metrics) (adm.Tier, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	tier := adm.ClassifyEffectiveness(m, s.bands)
	metrics.RecordEffectiveness(tier)
	logger := xglog.WithContext(ctx, s.logger)
	logger.Debug().
		Str(xglog.FieldEvent, "adm.classified").
		Str(xglog.FieldCoordinatorID, coordinatorID).
		Str(xglog.FieldTier, string(tier)).
		Msg("coordinator effectiveness classified")
	return tier, nil
}

// Rank scores candidates under the configured policy.
func (s *Service) Rank(ctx context.Context, candidates []adm.Candidate) []adm.PriorityScore {
	_, span := s.tracer.Start(ctx, "adm.rank")
	defer span.End()

	start := time.Now()
	ranked := adm.Rank(candidates, s.policy)
	took := time.Since(start)
	metrics.RecordRank(len(candidates), took)

	logger := xglog.WithContext(ctx, s.logger)
	logger.Debug().
		Str(xglog.FieldEvent, xglog.EventRankComputed).
		Int("candidates", len(candidates)).
		Int("ranked", len(ranked)).
		Int64(xglog.FieldDuration, took.Milliseconds()).
		Msg("candidates ranked")
	return ranked
}

// Briefing ranks the request's candidates and assembles the coordinator's
// briefing, serving it from the cache when the same ranked input was already
// built for that day.
func (s *Service) Briefing(ctx context.Context, req BriefingRequest) (adm.Briefing, error) {
	ctx, span := s.tracer.Start(ctx, "adm.briefing")
	defer span.End()
	ctx = xglog.ContextWithCoordinatorID(ctx, req.CoordinatorID)
	logger := xglog.WithContext(ctx, s.logger)

	if req.CoordinatorID == "" {
		err := fmt.Errorf("%w: coordinator id is required", adm.ErrInvalidBriefing)
		fail(span, err, "invalid_briefing")
		return adm.Briefing{}, err
	}
	candidates, err := briefingCandidates(req)
	if err != nil {
		fail(span, err, "invalid_snapshot")
		return adm.Briefing{}, err
	}
	date := req.Date
	if date.IsZero() {
		date = s.now()
	}

	ranked := s.Rank(ctx, candidates)
	advisor := adm.PlaybookAdvisor{Catalog: s.Catalog()}
	id := adm.BriefingID(req.CoordinatorID, ranked, date, advisor.FactFields()...)

	cached, hit, err := s.cache.Get(ctx, id)
	switch {
	case err != nil:
		metrics.RecordCacheOp("get", "error")
		logger.Warn().Err(err).Str(xglog.FieldBriefingID, id).Msg("briefing cache lookup failed, rebuilding")
	case hit:
		metrics.RecordCacheOp("get", "hit")
		metrics.RecordBriefing("hit")
		span.SetAttributes(telemetry.BriefingAttributes(req.CoordinatorID, id, len(candidates), len(ranked), true)...)
		logger.Debug().Str(xglog.FieldEvent, xglog.EventBriefingBuilt).Str(xglog.FieldBriefingID, id).Bool("cached", true).Msg("briefing served from cache")
		return cached, nil
	default:
		metrics.RecordCacheOp("get", "miss")
	}

	b, err := adm.BuildBriefing(req.CoordinatorID, ranked, date, advisor)
	if err != nil {
		fail(span, err, "briefing")
		return adm.Briefing{}, err
	}
	if err := s.cache.Set(ctx, b); err != nil {
		metrics.RecordCacheOp("set", "error")
		logger.Warn().Err(err).Str(xglog.FieldBriefingID, b.ID).Msg("briefing not cached")
	} else {
		metrics.RecordCacheOp("set", "stored")
	}
	metrics.RecordBriefing("miss")
	span.SetAttributes(telemetry.BriefingAttributes(req.CoordinatorID, b.ID, len(candidates), len(ranked), false)...)

	err = s.publisher.PublishBriefing(ctx, b)
	metrics.RecordDispatch(err)
	if err != nil {
		logger.Warn().Err(err).Str(xglog.FieldEvent, "dispatch.failed").Str(xglog.FieldBriefingID, b.ID).Msg("briefing not dispatched")
	}

	logger.Info().
		Str(xglog.FieldEvent, xglog.EventBriefingBuilt).
		Str(xglog.FieldBriefingID, b.ID).
		Int(xglog.FieldCount, len(b.Entries)).
		Msg("briefing built")
	return b, nil
}

// PortfolioBriefings builds one briefing per request with bounded
// concurrency. Results keep the request order; the first failure cancels
// the rest.
func (s *Service) PortfolioBriefings(ctx context.Context, reqs []BriefingRequest) ([]adm.Briefing, error) {
	out := make([]adm.Briefing, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := s.Briefing(gctx, req)
			if err != nil {
				return fmt.Errorf("coordinator %s: %w", req.CoordinatorID, err)
			}
			out[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReasonByCode looks up a dormancy reason.
func (s *Service) ReasonByCode(_ context.Context, code model.DormancyCode) (taxonomy.Reason, error) {
	return taxonomy.ReasonByCode(code)
}

func briefingCandidates(req BriefingRequest) ([]adm.Candidate, error) {
	out := make([]adm.Candidate, 0, len(req.Agents)+len(req.Candidates))
	var errs []error
	for _, snap := range req.Agents {
		if err := snap.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("agent %q: %w", snap.AgentID, err))
			continue
		}
		c, err := adm.CandidateFromSnapshot(snap, req.CoordinatorTier)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, c)
	}
	for _, c := range req.Candidates {
		if c.CoordinatorTier == "" {
			c.CoordinatorTier = req.CoordinatorTier
		}
		out = append(out, c)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func fail(span trace.Span, err error, kind string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, kind)
	span.SetAttributes(telemetry.ErrorAttributes(err, kind)...)
}
