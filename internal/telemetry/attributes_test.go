package telemetry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestTransitionAttributes(t *testing.T) {
	tests := []struct {
		name    string
		agentID string
		reason  string
		wantLen int
	}{
		{"all fields", "A-1", "ADM_LICENSE_EXPIRED", 5},
		{"no reason", "A-1", "", 4},
		{"no agent", "", "", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := TransitionAttributes(tt.agentID, "cooling", "at_risk", "inactivity", tt.reason)
			assert.Len(t, attrs, tt.wantLen)
			assert.Contains(t, attrs, attribute.String(TransitionFromKey, "cooling"))
		})
	}
}

func TestBriefingAttributes(t *testing.T) {
	attrs := BriefingAttributes("ADM-1", "", 12, 5, false)
	assert.Len(t, attrs, 4)
	assert.Contains(t, attrs, attribute.Int(RankedCountKey, 5))

	attrs = BriefingAttributes("ADM-1", "b-1", 12, 5, true)
	assert.Contains(t, attrs, attribute.String(BriefingIDKey, "b-1"))
	assert.Contains(t, attrs, attribute.Bool(CacheHitKey, true))
}

func TestPlanAndHTTPAttributes(t *testing.T) {
	assert.Equal(t, []attribute.KeyValue{
		attribute.String(AgentIDKey, "A-1"),
		attribute.Int(PlaybookCountKey, 2),
		attribute.Int(PlaybookExclKey, 1),
		attribute.Int(PlaybookActionKey, 4),
	}, PlanAttributes("A-1", 2, 1, 4))

	assert.Contains(t, HTTPAttributes("POST", "/v1/adm/rank", 200), attribute.Int(HTTPStatusCodeKey, 200))
}

func TestErrorAttributes(t *testing.T) {
	assert.Nil(t, ErrorAttributes(nil, "x"))
	attrs := ErrorAttributes(errors.New("boom"), "invalid_transition")
	assert.Equal(t, []attribute.KeyValue{
		attribute.String(ErrorKey, "boom"),
		attribute.String(ErrorTypeKey, "invalid_transition"),
	}, attrs)
}
