package model

import "time"

const DefaultChannel = "Webchat"

type Conversation struct {
	ID            int64           `json:"id"`
	TenantID      int64           `json:"tenant_id"`
	ContactID     int64           `json:"contact_id"`
	Contact       ContactSnapshot `json:"contact"`
	LastMessage   string          `json:"last_message"`
	LastMessageAt time.Time       `json:"last_message_at"`
	UnreadCount   int32           `json:"unread_count"`
	Priority      Priority        `json:"priority"`
	Channel       string          `json:"channel"`
	IsBotActive   bool            `json:"is_bot_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
