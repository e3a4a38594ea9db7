package playbook

import (
	"testing"
	"time"

	"github.com/ManuGH/fieldpulse/internal/condition"
	"github.com/ManuGH/fieldpulse/internal/domain/agent"
	"github.com/ManuGH/fieldpulse/internal/domain/lifecycle"
	"github.com/ManuGH/fieldpulse/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func ids(pbs []Playbook) []string {
	out := make([]string, len(pbs))
	for i, pb := range pbs {
		out[i] = pb.ID
	}
	return out
}

func actionTypes(actions []Action) []ActionType {
	out := make([]ActionType, len(actions))
	for i, a := range actions {
		out[i] = a.Type
	}
	return out
}

func TestDefault_Catalog(t *testing.T) {
	c := Default()
	assert.Same(t, c, Default(), "built once")
	assert.Equal(t, []string{
		IDNewAgentWelcome,
		IDEarlyDisengagement,
		IDTrainingGap,
		IDPostSaleFollowUp,
		IDLongDormantReengagement,
		IDComplaintEscalation,
	}, c.IDs())
}

func TestDefault_ReferencesOnlyWhitelistedFields(t *testing.T) {
	schema := agent.FactSchema()
	for _, pb := range Default().Playbooks() {
		require.NoError(t, condition.Validate(pb.Trigger, schema), pb.ID)
		for _, f := range condition.Fields(pb.Trigger) {
			_, ok := schema.Lookup(f)
			assert.True(t, ok, "%s references %s", pb.ID, f)
		}
		for i, step := range pb.Steps {
			assert.True(t, step.Action.Valid(), "%s step %d", pb.ID, i)
			if step.Guard != nil {
				assert.NoError(t, condition.Validate(*step.Guard, schema), "%s step %d", pb.ID, i)
			}
		}
	}
}

func TestSelect_DefaultPlaybooks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		snap agent.Snapshot
		want []string
	}{
		{
			name: "new agent",
			snap: agent.Snapshot{AgentID: "A-1", State: model.StateActive, DaysSinceOnboarding: agent.Int(10),
				CompletedTrainings: []model.TrainingTopic{}},
			want: []string{IDNewAgentWelcome},
		},
		{
			name: "cooling without product basics",
			snap: agent.Snapshot{AgentID: "A-2", State: model.StateCooling,
				CompletedTrainings: []model.TrainingTopic{model.TrainingCompliance}},
			want: []string{IDEarlyDisengagement, IDTrainingGap},
		},
		{
			name: "at risk with product basics",
			snap: agent.Snapshot{AgentID: "A-3", State: model.StateAtRisk,
				CompletedTrainings: []model.TrainingTopic{model.TrainingProductBasics}},
			want: []string{IDEarlyDisengagement},
		},
		{
			name: "dormant for a training reason",
			snap: agent.Snapshot{AgentID: "A-4", State: model.StateDormant, ReasonCode: model.CodeDigitalTools,
				DaysSinceLastContact: agent.Int(12)},
			want: []string{IDTrainingGap},
		},
		{
			name: "fresh sale while reactivating",
			snap: agent.Snapshot{AgentID: "A-5", State: model.StateReactivating, DaysSinceLastSale: agent.Int(2)},
			want: []string{IDPostSaleFollowUp},
		},
		{
			name: "stale complaint",
			snap: agent.Snapshot{AgentID: "A-6", State: model.StateActive, DaysSinceOnboarding: agent.Int(400),
				UnresolvedComplaints: agent.Int(1), LastComplaintAt: agent.Time(asOf.AddDate(0, 0, -3)), AsOf: asOf},
			want: []string{IDComplaintEscalation},
		},
		{
			name: "fresh complaint waits",
			snap: agent.Snapshot{AgentID: "A-7", State: model.StateActive, DaysSinceOnboarding: agent.Int(400),
				UnresolvedComplaints: agent.Int(1), LastComplaintAt: agent.Time(asOf.AddDate(0, 0, -2)), AsOf: asOf},
			want: nil,
		},
		{
			name: "terminated agent",
			snap: agent.Snapshot{AgentID: "A-8", State: model.StateTerminated},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Default().Select(tt.snap)
			require.NoError(t, err)
			assert.Equal(t, tt.want, nilIfEmpty(ids(got)))
		})
	}
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestSelect_MissingFactExcludesOnlyThatPlaybook(t *testing.T) {
	t.Parallel()
	// Active agent with no onboarding, sale, reason or complaint facts.
	snap := agent.Snapshot{AgentID: "A-1", State: model.StateActive, CompletedTrainings: []model.TrainingTopic{}}
	plan, err := Default().Plan(snap)
	require.NoError(t, err)
	assert.Empty(t, plan.Playbooks)
	assert.Empty(t, plan.Actions)
	assert.Equal(t, []string{IDNewAgentWelcome, IDTrainingGap, IDPostSaleFollowUp, IDComplaintEscalation}, plan.Excluded)

	// A known state alone is enough for the others to decide.
	snap.State = model.StateCooling
	plan, err = Default().Plan(snap)
	require.NoError(t, err)
	assert.Equal(t, []string{IDEarlyDisengagement, IDTrainingGap}, plan.Playbooks)
	assert.Equal(t, []string{IDComplaintEscalation}, plan.Excluded)
}

func TestSelect_ConfigurationErrorsAbort(t *testing.T) {
	t.Parallel()
	schema, err := agent.FactSchema().With(condition.FieldDef{Name: "region_tier", Type: condition.TypeNumber})
	require.NoError(t, err)
	c, err := NewCatalog(schema, Playbook{
		ID:      "tiered",
		Trigger: condition.Gte("region_tier", 2),
		Steps:   []Step{{Action: ActionSendMessage}},
	})
	require.NoError(t, err)

	snap := agent.Snapshot{AgentID: "A-1", State: model.StateActive, Facts: map[string]any{"region_tier": "two"}}
	_, err = c.Select(snap)
	require.Error(t, err)
	assert.ErrorIs(t, err, condition.ErrTypeMismatch)
	assert.True(t, condition.IsConfigError(err))
}

func TestExecute_LongDormant(t *testing.T) {
	t.Parallel()
	pb, err := Default().Get(IDLongDormantReengagement)
	require.NoError(t, err)

	tests := []struct {
		name string
		snap agent.Snapshot
		want []ActionType
	}{
		{
			name: "unknown reason",
			snap: agent.Snapshot{AgentID: "A-1", State: model.StateDormant, ReasonCode: model.CodeUnclassified,
				DaysSinceLastContact: agent.Int(45)},
			want: []ActionType{ActionSendMessage, ActionScheduleCall},
		},
		{
			name: "training reason",
			snap: agent.Snapshot{AgentID: "A-2", State: model.StateDormant, ReasonCode: model.CodeSalesSkills,
				DaysSinceLastContact: agent.Int(45)},
			want: []ActionType{ActionSendMessage, ActionScheduleCall, ActionAssignTraining},
		},
		{
			name: "very long silence",
			snap: agent.Snapshot{AgentID: "A-3", State: model.StateDormant, ReasonCode: model.CodeFamily,
				DaysSinceLastContact: agent.Int(120)},
			want: []ActionType{ActionSendMessage, ActionScheduleCall, ActionEscalateToHuman},
		},
		{
			name: "no reason code skips only the guarded training step",
			snap: agent.Snapshot{AgentID: "A-4", State: model.StateDormant, DaysSinceLastContact: agent.Int(45)},
			want: []ActionType{ActionSendMessage, ActionScheduleCall},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			actions, err := Default().Execute(pb, tt.snap)
			require.NoError(t, err)
			assert.Equal(t, tt.want, actionTypes(actions))
			for _, a := range actions {
				assert.Equal(t, IDLongDormantReengagement, a.PlaybookID)
				assert.Equal(t, tt.snap.AgentID, a.Params[ParamAgentID])
			}
		})
	}
}

func TestExecute_ResolvesFactReferences(t *testing.T) {
	t.Parallel()
	c, err := NewCatalog(agent.FactSchema(), Playbook{
		ID:      "refs",
		Trigger: condition.Eq(agent.FieldLifecycleState, "active"),
		Steps: []Step{
			{Action: ActionSendMessage, Params: map[string]any{
				"template": "hello",
				"channel":  "@?preferred_channel",
				"state":    "@lifecycle_state",
			}},
			{Action: ActionScheduleCall, Params: map[string]any{"sales": "@policies_sold_30d"}},
			{Action: ActionEscalateToHuman, Guard: guardOf(condition.Gt(agent.FieldUnresolvedComplaints, 0))},
			{Action: ActionAssignTraining, Params: map[string]any{"topic": "compliance"}},
		},
	})
	require.NoError(t, err)
	pb, err := c.Get("refs")
	require.NoError(t, err)

	actions, err := c.Execute(pb, agent.Snapshot{AgentID: "A-1", State: model.StateActive})
	require.NoError(t, err)
	require.Len(t, actions, 2, "unresolvable reference and missing guard fact skip their steps")

	assert.Equal(t, 0, actions[0].Step)
	assert.Equal(t, map[string]any{
		"template":   "hello",
		"state":      model.StateActive,
		ParamAgentID: "A-1",
	}, actions[0].Params)
	assert.Equal(t, 3, actions[1].Step)
	assert.Equal(t, ActionAssignTraining, actions[1].Type)

	withChannel := agent.Snapshot{AgentID: "A-1", State: model.StateActive, PreferredChannel: model.ChannelWhatsApp}
	actions, err = c.Execute(pb, withChannel)
	require.NoError(t, err)
	assert.Equal(t, model.ChannelWhatsApp, actions[0].Params["channel"])
}

func guardOf(c condition.Condition) *condition.Condition { return &c }

func TestExecute_DoesNotMutateCatalog(t *testing.T) {
	t.Parallel()
	c := Default()
	pb, err := c.Get(IDEarlyDisengagement)
	require.NoError(t, err)
	pb.Steps[0].Params["template"] = "tampered"

	again, err := c.Get(IDEarlyDisengagement)
	require.NoError(t, err)
	assert.Equal(t, "check_in", again.Steps[0].Params["template"])
}

func TestPlan_EndToEndDormancy(t *testing.T) {
	t.Parallel()
	snap := agent.Snapshot{
		AgentID:              "A-42",
		State:                model.StateAtRisk,
		DaysSinceLastContact: agent.Int(45),
		AsOf:                 asOf,
	}

	ev, err := lifecycle.InactivityEvent(snap)
	require.NoError(t, err)
	tr, err := lifecycle.Default().Apply(snap.State, ev)
	require.NoError(t, err)
	require.Equal(t, model.StateDormant, tr.To)
	require.Equal(t, model.CodeUnclassified, tr.ReasonCode)

	next := snap
	next.State = tr.To
	next.ReasonCode = tr.ReasonCode

	triggered, err := Default().Select(next)
	require.NoError(t, err)
	assert.Equal(t, []string{IDLongDormantReengagement}, ids(triggered))

	actions, err := Default().Execute(triggered[0], next)
	require.NoError(t, err)
	require.NotEmpty(t, actions)
	assert.Equal(t, ActionSendMessage, actions[0].Type)
	assert.Equal(t, "reengage_dormant", actions[0].Params["template"])
	assert.Equal(t, model.CodeUnclassified, actions[0].Params["reason_code"])
	assert.Equal(t, 45, actions[0].Params["days_inactive"])

	plan, err := Default().Plan(next)
	require.NoError(t, err)
	first, ok := plan.First()
	require.True(t, ok)
	assert.Equal(t, actions[0], first)
	assert.Equal(t, "A-42", plan.AgentID)
}

func TestPlan_Deterministic(t *testing.T) {
	t.Parallel()
	snap := agent.Snapshot{AgentID: "A-1", State: model.StateCooling, CompletedTrainings: []model.TrainingTopic{},
		DaysSinceLastContact: agent.Int(20)}
	a, err := Default().Plan(snap)
	require.NoError(t, err)
	b, err := Default().Plan(snap)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
