package store

import (
	"context"
	"errors"

	"github.com/samuelbyalugaba/KenaAI-sub000/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write loses a uniqueness race that the
// upsert itself could not absorb. Callers may retry once.
var ErrConflict = errors.New("conflict")

// TenantStore defines the contract for tenant data access. Tenants are
// provisioned out-of-band, so there is no write path.
type TenantStore interface {
	GetByBotID(ctx context.Context, botID string) (*model.Tenant, error)
}

// ContactStore defines the contract for contact data access
type ContactStore interface {
	GetByTenantAndIdentity(ctx context.Context, tenantID int64, identity string) (*model.Contact, error)
	// CreateOrGet inserts the contact unless (tenant_id, identity) already
	// exists, in which case the stored row is returned with created=false.
	CreateOrGet(ctx context.Context, contact *model.Contact) (*model.Contact, bool, error)
}

// ConversationStore defines the contract for conversation data access
type ConversationStore interface {
	GetByID(ctx context.Context, id int64) (*model.Conversation, error)
	FindOpen(ctx context.Context, tenantID, contactID int64) (*model.Conversation, error)
	// Upsert creates the conversation with unread_count = 1, or bumps the
	// existing one for (tenant_id, contact_id): last message, timestamp,
	// unread_count + 1 and priority.
	Upsert(ctx context.Context, conv *model.Conversation) (*model.Conversation, bool, error)
}

// MessageStore defines the contract for message data access
type MessageStore interface {
	Create(ctx context.Context, msg *model.Message) (*model.Message, error)
	// CreateOrGet deduplicates on (conversation_id, external_id).
	// msg.ExternalID must be set.
	CreateOrGet(ctx context.Context, msg *model.Message) (*model.Message, bool, error)
	GetByExternalID(ctx context.Context, conversationID int64, externalID string) (*model.Message, error)
	ListByConversation(ctx context.Context, conversationID int64, limit int32) ([]model.Message, error)
}
