package service

import (
	"context"
	"fmt"
	"time"

	"github.com/samuelbyalugaba/KenaAI-sub000/common/id"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/model"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/store"
)

type MessageAppender interface {
	// Append always inserts when externalID is empty. With an externalID, a
	// redelivery returns the stored message and created=false.
	Append(ctx context.Context, conv *model.Conversation, sender model.Sender, text string, sentAt time.Time, externalID string) (*model.Message, bool, error)
}

type messageAppender struct {
	messages store.MessageStore
}

func NewMessageAppender(messages store.MessageStore) MessageAppender {
	return &messageAppender{messages: messages}
}

func (a *messageAppender) Append(ctx context.Context, conv *model.Conversation, sender model.Sender, text string, sentAt time.Time, externalID string) (*model.Message, bool, error) {
	msg := &model.Message{
		ID:             id.New(),
		TenantID:       conv.TenantID,
		ConversationID: conv.ID,
		Sender:         sender,
		Text:           text,
		SentAt:         sentAt,
	}

	if externalID == "" {
		created, err := a.messages.Create(ctx, msg)
		if err != nil {
			return nil, false, fmt.Errorf("creating message: %w", err)
		}
		return created, true, nil
	}

	msg.ExternalID = &externalID
	stored, created, err := a.messages.CreateOrGet(ctx, msg)
	if err != nil {
		return nil, false, fmt.Errorf("creating message: %w", err)
	}
	return stored, created, nil
}
