package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"

	// Agent attributes
	AgentIDKey        = "agent.id"
	AgentStateKey     = "agent.lifecycle_state"
	AgentReasonKey    = "agent.dormancy_reason"
	TransitionFromKey = "lifecycle.from"
	TransitionToKey   = "lifecycle.to"
	TransitionEvent   = "lifecycle.event"

	// Playbook attributes
	PlaybookCountKey  = "playbook.selected_count"
	PlaybookExclKey   = "playbook.excluded_count"
	PlaybookActionKey = "playbook.action_count"

	// Coordinator attributes
	CoordinatorIDKey  = "coordinator.id"
	CandidateCountKey = "rank.candidates"
	RankedCountKey    = "rank.ranked"
	BriefingIDKey     = "briefing.id"
	CacheHitKey       = "cache.hit"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// TransitionAttributes describes one lifecycle transition. An empty reason
// is omitted.
func TransitionAttributes(agentID, from, to, event, reason string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 5)
	if agentID != "" {
		attrs = append(attrs, attribute.String(AgentIDKey, agentID))
	}
	attrs = append(attrs,
		attribute.String(TransitionFromKey, from),
		attribute.String(TransitionToKey, to),
		attribute.String(TransitionEvent, event),
	)
	if reason != "" {
		attrs = append(attrs, attribute.String(AgentReasonKey, reason))
	}
	return attrs
}

// PlanAttributes describes a playbook selection and its resulting plan.
func PlanAttributes(agentID string, selected, excluded, actions int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AgentIDKey, agentID),
		attribute.Int(PlaybookCountKey, selected),
		attribute.Int(PlaybookExclKey, excluded),
		attribute.Int(PlaybookActionKey, actions),
	}
}

// BriefingAttributes describes a ranked briefing.
func BriefingAttributes(coordinatorID, briefingID string, candidates, ranked int, cacheHit bool) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(CoordinatorIDKey, coordinatorID),
		attribute.Int(CandidateCountKey, candidates),
		attribute.Int(RankedCountKey, ranked),
		attribute.Bool(CacheHitKey, cacheHit),
	}
	if briefingID != "" {
		attrs = append(attrs, attribute.String(BriefingIDKey, briefingID))
	}
	return attrs
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(err error, errorType string) []attribute.KeyValue {
	if err == nil {
		return nil
	}
	return []attribute.KeyValue{
		attribute.String(ErrorKey, err.Error()),
		attribute.String(ErrorTypeKey, errorType),
	}
}
