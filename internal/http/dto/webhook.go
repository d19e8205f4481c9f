package dto

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/samuelbyalugaba/KenaAI-sub000/internal/service"
)

// PayloadKind tags which of the accepted webhook shapes a request used.
type PayloadKind string

const (
	PayloadKindJSON  PayloadKind = "json"
	PayloadKindQuery PayloadKind = "query"
)

// WebhookRequest is a tagged union: exactly one of Body or Query is set,
// matching Kind.
type WebhookRequest struct {
	Kind  PayloadKind
	Body  *WebhookBody
	Query *WebhookQuery
}

// WebhookBody is the JSON event shape.
type WebhookBody struct {
	Type string      `json:"type"`
	Data WebhookData `json:"data"`
}

type WebhookData struct {
	ID             FlexString     `json:"id"`
	MessageID      FlexString     `json:"messageId"`
	BotID          FlexString     `json:"botId"`
	ConversationID FlexString     `json:"conversationId"`
	UserID         FlexString     `json:"userId"`
	UserName       string         `json:"userName"`
	Direction      string         `json:"direction"`
	Payload        WebhookPayload `json:"payload"`
	CreatedAt      string         `json:"createdAt"`
	Channel        string         `json:"channel"`
}

type WebhookPayload struct {
	Text string `json:"text"`
}

// WebhookQuery is the legacy query-parameter shape.
type WebhookQuery struct {
	BotID   string `form:"botId"`
	UserID  string `form:"userId"`
	Text    string `form:"text"`
	Channel string `form:"channel"`
	Name    string `form:"name"`
}

type WebhookResponse struct {
	Status         string `json:"status"`
	ConversationID string `json:"conversation_id,omitempty"`
	MessageID      string `json:"message_id,omitempty"`
	Priority       string `json:"priority,omitempty"`
	UnreadCount    int32  `json:"unread_count,omitempty"`
	Duplicate      bool   `json:"duplicate"`
	Ignored        bool   `json:"ignored,omitempty"`
}

// Normalize converts either shape into the pipeline's event. receivedAt is
// used when the payload carries no usable timestamp.
func (r WebhookRequest) Normalize(receivedAt time.Time) service.InboundEvent {
	switch r.Kind {
	case PayloadKindQuery:
		if r.Query == nil {
			return service.InboundEvent{Type: service.EventTypeMessageCreated, SentAt: receivedAt}
		}
		q := r.Query
		return service.InboundEvent{
			Type:      service.EventTypeMessageCreated,
			Direction: service.DirectionIncoming,
			BotID:     strings.TrimSpace(q.BotID),
			UserID:    strings.TrimSpace(q.UserID),
			UserName:  strings.TrimSpace(q.Name),
			Text:      q.Text,
			Channel:   strings.TrimSpace(q.Channel),
			SentAt:    receivedAt,
		}
	default:
		if r.Body == nil {
			return service.InboundEvent{SentAt: receivedAt}
		}
		d := r.Body.Data
		externalID := d.ID.String()
		if externalID == "" {
			externalID = d.MessageID.String()
		}
		return service.InboundEvent{
			Type:                   strings.TrimSpace(r.Body.Type),
			Direction:              strings.ToLower(strings.TrimSpace(d.Direction)),
			BotID:                  d.BotID.String(),
			UserID:                 d.UserID.String(),
			UserName:               strings.TrimSpace(d.UserName),
			Text:                   d.Payload.Text,
			Channel:                strings.TrimSpace(d.Channel),
			ExternalMessageID:      externalID,
			ExternalConversationID: d.ConversationID.String(),
			SentAt:                 parseTimestamp(d.CreatedAt, receivedAt),
		}
	}
}

func parseTimestamp(s string, fallback time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC()
	}
	return fallback
}

// FlexString accepts a JSON string or number. Channels disagree on whether
// ids are numeric.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return strings.TrimSpace(string(f))
}
