package service

import (
	"strings"
	"time"
)

const (
	EventTypeMessageCreated = "message.created"

	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// InboundEvent is the normalized form of every accepted webhook payload.
type InboundEvent struct {
	Type      string
	Direction string

	BotID    string
	UserID   string
	UserName string // display name hint, may be empty
	Text     string
	Channel  string // empty means the default channel

	// ExternalMessageID is the upstream event id, used for redelivery dedup.
	ExternalMessageID      string
	ExternalConversationID string

	SentAt  time.Time // zero means receive time
	TraceID *string
}

// IsEcho reports whether the event describes the tenant's own outgoing
// message, or anything that is not a new inbound message.
func (e InboundEvent) IsEcho() bool {
	return e.Type != EventTypeMessageCreated || strings.EqualFold(e.Direction, DirectionOutgoing)
}

// Validate returns a *ValidationError for the first missing required field.
func (e InboundEvent) Validate() error {
	switch {
	case strings.TrimSpace(e.BotID) == "":
		return &ValidationError{Field: "botId"}
	case strings.TrimSpace(e.UserID) == "":
		return &ValidationError{Field: "userId"}
	case strings.TrimSpace(e.Text) == "":
		return &ValidationError{Field: "text"}
	}
	return nil
}
