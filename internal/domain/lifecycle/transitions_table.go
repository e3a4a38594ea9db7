package lifecycle

import "github.com/ManuGH/fieldpulse/internal/domain/model"

// guard decides whether a rule fires. A rule whose guard fails is a legal stay.
type guard func(Thresholds, Event) bool

// rule is one allowed cell of the transition table.
type rule struct {
	To    model.LifecycleState // empty: stay in the current state
	Guard guard                // nil: always fires
}

func inactiveFor(days func(Thresholds) int) guard {
	return func(th Thresholds, ev Event) bool { return ev.Days >= days(th) }
}

var (
	coolingDue = inactiveFor(func(th Thresholds) int { return th.CoolingAfterDays })
	atRiskDue  = inactiveFor(func(th Thresholds) int { return th.AtRiskAfterDays })
	dormantDue = inactiveFor(func(th Thresholds) int { return th.DormantAfterDays })

	sustainedContact guard = func(th Thresholds, ev Event) bool { return ev.Streak >= th.SustainedContactStreak }
)

var stay = rule{}

// transitionsTable lists every legal (state, edge) pair. Missing cells are
// invalid; terminated has no row.
var transitionsTable = map[model.LifecycleState]map[edge]rule{
	model.StateActive: {
		edgeInactivity:      {To: model.StateCooling, Guard: coolingDue},
		edgeContactPositive: stay,
		edgeContactNegative: {To: model.StateCooling},
		edgeContactNeutral:  stay,
		edgeSale:            stay,
		edgeTerminate:       {To: model.StateTerminated},
	},
	model.StateCooling: {
		edgeInactivity:      {To: model.StateAtRisk, Guard: atRiskDue},
		edgeContactPositive: {To: model.StateActive},
		edgeContactNegative: {To: model.StateAtRisk},
		edgeContactNeutral:  stay,
		edgeSale:            {To: model.StateActive},
		edgeTerminate:       {To: model.StateTerminated},
	},
	model.StateAtRisk: {
		edgeInactivity:      {To: model.StateDormant, Guard: dormantDue},
		edgeContactPositive: {To: model.StateCooling},
		edgeContactNegative: stay,
		edgeContactNeutral:  stay,
		edgeSale:            {To: model.StateActive},
		edgeTerminate:       {To: model.StateTerminated},
	},
	model.StateDormant: {
		edgeInactivity:      stay,
		edgeContactPositive: {To: model.StateReactivating},
		edgeContactNegative: stay,
		edgeContactNeutral:  stay,
		edgeSale:            {To: model.StateReactivating},
		edgeClassify:        {To: model.StateDormant},
		edgeTerminate:       {To: model.StateTerminated},
	},
	model.StateReactivating: {
		edgeInactivity:      {To: model.StateDormant, Guard: dormantDue},
		edgeContactPositive: {To: model.StateActive, Guard: sustainedContact},
		edgeContactNegative: {To: model.StateDormant},
		edgeContactNeutral:  stay,
		edgeSale:            {To: model.StateActive},
		edgeTerminate:       {To: model.StateTerminated},
	},
}

// Allowed reports whether ev is legal from state, independent of thresholds.
func Allowed(from model.LifecycleState, ev Event) bool {
	e, ok := ev.edge()
	if !ok {
		return false
	}
	_, ok = transitionsTable[from][e]
	return ok
}
