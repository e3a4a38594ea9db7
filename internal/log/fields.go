package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID     = "request_id"
	FieldTraceID       = "trace_id"
	FieldSpanID        = "span_id"
	FieldAgentID       = "agent_id"
	FieldCoordinatorID = "coordinator_id"
	FieldBriefingID    = "briefing_id"
	FieldPlaybookID    = "playbook_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldCount     = "count"
	FieldDuration  = "duration_ms"

	// Domain fields
	FieldOldState   = "old_state"
	FieldNewState   = "new_state"
	FieldReasonCode = "reason_code"
	FieldTier       = "tier"
	FieldErrorCode  = "error_code"

	// Path / transport fields
	FieldPath   = "path"
	FieldTopic  = "topic"
	FieldSource = "source"
)

// Canonical event names.
const (
	EventLifecycleTransition = "lifecycle.transition"
	EventPlaybookSelected    = "playbook.selected"
	EventPlaybookExcluded    = "playbook.excluded"
	EventRankComputed        = "rank.computed"
	EventBriefingBuilt       = "briefing.built"
	EventBriefingDispatched  = "briefing.dispatched"
	EventCatalogReloaded     = "catalog.reloaded"
	EventConfigLoaded        = "config.loaded"
	EventRequestHandled      = "request.handled"
)
