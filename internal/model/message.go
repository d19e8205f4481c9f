package model

import "time"

type SenderKind string

const (
	SenderKindContact SenderKind = "contact"
	SenderKindSelf    SenderKind = "self"
)

// Sender is either a contact (ContactID set) or the tenant itself.
type Sender struct {
	Kind      SenderKind `json:"kind"`
	ContactID *int64     `json:"contact_id,omitempty"`
}

func ContactSender(contactID int64) Sender {
	return Sender{Kind: SenderKindContact, ContactID: &contactID}
}

func SelfSender() Sender {
	return Sender{Kind: SenderKindSelf}
}

// SenderFromStore rebuilds a sender from its stored columns.
func SenderFromStore(kind string, contactID *int64) Sender {
	if SenderKind(kind) == SenderKindSelf {
		return SelfSender()
	}
	return Sender{Kind: SenderKind(kind), ContactID: contactID}
}

type Message struct {
	ID             int64     `json:"id"`
	TenantID       int64     `json:"tenant_id"`
	ConversationID int64     `json:"conversation_id"`
	Sender         Sender    `json:"sender"`
	Text           string    `json:"text"`
	ExternalID     *string   `json:"external_id,omitempty"`
	SentAt         time.Time `json:"sent_at"`
	CreatedAt      time.Time `json:"created_at"`
}
