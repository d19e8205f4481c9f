package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are appended to every record logged with a context that carries
// them. The ingest pipeline fills them in as each entity is resolved.
type LogFields struct {
	TenantID       *int64
	ContactID      *int64
	ConversationID *int64
	MessageID      *int64
	BotID          *string // external bot/channel id from the inbound event
	Component      string  // e.g. "chatingest.service.ingest"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := mergeFields(GetLogFields(ctx), fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.TenantID != nil {
		result.TenantID = next.TenantID
	}
	if next.ContactID != nil {
		result.ContactID = next.ContactID
	}
	if next.ConversationID != nil {
		result.ConversationID = next.ConversationID
	}
	if next.MessageID != nil {
		result.MessageID = next.MessageID
	}
	if next.BotID != nil {
		result.BotID = next.BotID
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{TenantID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen bytes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
