package service

import (
	"context"
	"fmt"
	"time"

	"github.com/samuelbyalugaba/KenaAI-sub000/common/id"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/model"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/store"
)

type ConversationUpdate struct {
	Text     string
	SentAt   time.Time
	Priority model.Priority
	Channel  string // empty means model.DefaultChannel
}

type ConversationResolver interface {
	// ResolveOrUpdate creates the single conversation for (tenant, contact)
	// or applies the update to it. created is true for the creating call.
	ResolveOrUpdate(ctx context.Context, tenant *model.Tenant, contact *model.Contact, update ConversationUpdate) (*model.Conversation, bool, error)
}

type conversationResolver struct {
	conversations store.ConversationStore
}

// NewConversationResolver binds to the given store, usually one scoped to
// the current transaction.
func NewConversationResolver(conversations store.ConversationStore) ConversationResolver {
	return &conversationResolver{conversations: conversations}
}

func (r *conversationResolver) ResolveOrUpdate(ctx context.Context, tenant *model.Tenant, contact *model.Contact, update ConversationUpdate) (*model.Conversation, bool, error) {
	channel := update.Channel
	if channel == "" {
		channel = model.DefaultChannel
	}

	conv, created, err := r.conversations.Upsert(ctx, &model.Conversation{
		ID:            id.New(),
		TenantID:      tenant.ID,
		ContactID:     contact.ID,
		Contact:       contact.Snapshot(),
		LastMessage:   update.Text,
		LastMessageAt: update.SentAt,
		UnreadCount:   1,
		Priority:      update.Priority,
		Channel:       channel,
		IsBotActive:   true,
	})
	if err != nil {
		return nil, false, fmt.Errorf("upserting conversation: %w", err)
	}
	return conv, created, nil
}
