package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Fields flow through context enrichment, enabling zero-touch logging where business
// context (job_id, trace_id, etc.) is automatically included in all log statements.
type LogFields struct {
	JobID      *string // Async job/trajectory ID
	TraceID    *string // Helix trajectory ID (distinct from the OTel trace ID)
	SessionID  *string // Conversational session ID, when the request is session-scoped
	TenantID   *string // Tenant/workspace ID
	IntentID   *string // Routed intent label, once known
	EventType  *string // Orchestrator event type (e.g., "tool_call", "retry")
	Component  string  // Component name (OTel semantic convention style, e.g., "helixask.orchestrator")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
// Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

// mergeFields merges two LogFields, preferring non-nil/non-empty values from 'new'.
func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.JobID != nil {
		result.JobID = new.JobID
	}
	if new.TraceID != nil {
		result.TraceID = new.TraceID
	}
	if new.SessionID != nil {
		result.SessionID = new.SessionID
	}
	if new.TenantID != nil {
		result.TenantID = new.TenantID
	}
	if new.IntentID != nil {
		result.IntentID = new.IntentID
	}
	if new.EventType != nil {
		result.EventType = new.EventType
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{JobID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
// Useful for logging potentially long strings like queries or error messages.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
