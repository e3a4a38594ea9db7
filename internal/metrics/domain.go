// Package metrics registers the Prometheus collectors of the engine and its
// surrounding services.
package metrics

import (
	"time"

	"github.com/ManuGH/fieldpulse/internal/adm"
	"github.com/ManuGH/fieldpulse/internal/domain/lifecycle"
	"github.com/ManuGH/fieldpulse/internal/domain/model"
	"github.com/ManuGH/fieldpulse/internal/playbook"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const unknownLabel = "unknown"

var (
	lifecycleTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldpulse_lifecycle_transitions_total",
		Help: "Applied lifecycle events by source state, target state and event type",
	}, []string{"from", "to", "event"})

	lifecycleRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldpulse_lifecycle_rejected_total",
		Help: "Lifecycle events rejected as illegal, by source state and event type",
	}, []string{"from", "event"})

	playbookSelected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldpulse_playbook_selected_total",
		Help: "Playbooks whose trigger matched an agent",
	}, []string{"playbook_id"})

	playbookExcluded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldpulse_playbook_excluded_total",
		Help: "Playbooks excluded because a trigger referenced a missing fact",
	}, []string{"playbook_id"})

	actionsPlanned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldpulse_actions_planned_total",
		Help: "Actions emitted into action plans by action type",
	}, []string{"action"})

	rankCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fieldpulse_rank_candidates",
		Help:    "Dormant candidates considered per ranking",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	rankDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fieldpulse_rank_duration_seconds",
		Help:    "Time spent ranking one coordinator portfolio",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	briefingsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldpulse_briefings_total",
		Help: "Briefings served, by cache outcome (hit|miss|bypass)",
	}, []string{"cache"})

	effectivenessTier = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldpulse_effectiveness_classified_total",
		Help: "Coordinator effectiveness classifications by tier",
	}, []string{"tier"})

	catalogReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldpulse_catalog_reloads_total",
		Help: "Playbook catalog reload attempts by outcome (success|failure)",
	}, []string{"outcome"})

	catalogPlaybooks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fieldpulse_catalog_playbooks",
		Help: "Playbooks in the active catalog",
	})

	dispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldpulse_dispatch_total",
		Help: "Action plans handed to the dispatch publisher by outcome (success|failure)",
	}, []string{"outcome"})

	cacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldpulse_briefing_cache_operations_total",
		Help: "Briefing cache operations by operation and result",
	}, []string{"op", "result"})

	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fieldpulse_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"breaker"})

	breakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldpulse_circuit_breaker_trips_total",
		Help: "Circuit breaker trips to open by reason",
	}, []string{"breaker", "reason"})
)

// RecordTransition records one successfully applied lifecycle event.
func RecordTransition(t lifecycle.Transition) {
	lifecycleTransitions.WithLabelValues(stateLabel(t.From), stateLabel(t.To), eventLabel(t.Event)).Inc()
}

// RecordRejectedTransition records an event the machine refused.
func RecordRejectedTransition(from model.LifecycleState, ev lifecycle.EventType) {
	lifecycleRejected.WithLabelValues(stateLabel(from), eventLabel(ev)).Inc()
}

// RecordPlan records the selections, exclusions and actions of one plan.
func RecordPlan(plan playbook.ActionPlan) {
	for _, id := range plan.Playbooks {
		playbookSelected.WithLabelValues(id).Inc()
	}
	for _, id := range plan.Excluded {
		playbookExcluded.WithLabelValues(id).Inc()
	}
	for _, a := range plan.Actions {
		actionsPlanned.WithLabelValues(actionLabel(a.Type)).Inc()
	}
}

// RecordRank records one ranking run.
func RecordRank(candidates int, took time.Duration) {
	rankCandidates.Observe(float64(candidates))
	rankDuration.Observe(took.Seconds())
}

// RecordBriefing records one served briefing. cache is hit, miss or bypass.
func RecordBriefing(cache string) {
	switch cache {
	case "hit", "miss", "bypass":
	default:
		cache = unknownLabel
	}
	briefingsBuilt.WithLabelValues(cache).Inc()
}

// RecordEffectiveness records one tier classification.
func RecordEffectiveness(tier adm.Tier) {
	label := string(tier)
	if !tier.Valid() {
		label = unknownLabel
	}
	effectivenessTier.WithLabelValues(label).Inc()
}

// RecordCatalogReload records a reload attempt and, on success, the new size.
func RecordCatalogReload(size int, err error) {
	if err != nil {
		catalogReloads.WithLabelValues("failure").Inc()
		return
	}
	catalogReloads.WithLabelValues("success").Inc()
	catalogPlaybooks.Set(float64(size))
}

// SetCatalogSize sets the active catalog size without counting a reload.
func SetCatalogSize(size int) {
	catalogPlaybooks.Set(float64(size))
}

// RecordDispatch records one publish attempt.
func RecordDispatch(err error) {
	dispatchTotal.WithLabelValues(outcome(err)).Inc()
}

// RecordCacheOp records a cache operation. result is hit, miss, stored or error.
func RecordCacheOp(op, result string) {
	cacheOps.WithLabelValues(op, result).Inc()
}

// SetBreakerState publishes a breaker's state; unknown states read as open.
func SetBreakerState(name, state string) {
	v := 2.0
	switch state {
	case "closed":
		v = 0
	case "half-open":
		v = 1
	}
	breakerState.WithLabelValues(name).Set(v)
}

// RecordBreakerTrip counts a transition to open.
func RecordBreakerTrip(name, reason string) {
	breakerTrips.WithLabelValues(name, reason).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func stateLabel(s model.LifecycleState) string {
	if s.Valid() {
		return string(s)
	}
	return unknownLabel
}

func eventLabel(e lifecycle.EventType) string {
	for _, known := range lifecycle.EventTypes() {
		if e == known {
			return string(e)
		}
	}
	return unknownLabel
}

func actionLabel(a playbook.ActionType) string {
	if a.Valid() {
		return string(a)
	}
	return unknownLabel
}
