package queue

import "time"

type EventType string

const EventTypeMessageIngested EventType = "message.ingested"

// IngestedEvent tells downstream consumers (inbox UI, notifiers) that a
// message was appended. It carries ids only; consumers read the store.
type IngestedEvent struct {
	TenantID       int64
	ContactID      int64
	ConversationID int64
	MessageID      int64
	Priority       string
	UnreadCount    int32
	Created        bool // the conversation was created by this message
	SentAt         time.Time
	TraceID        *string

	// UpstreamConversationID is the channel's own conversation id, if sent.
	UpstreamConversationID string
}
