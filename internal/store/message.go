package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/samuelbyalugaba/KenaAI-sub000/core/db/sqlc"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/model"
)

type messageStore struct {
	queries *sqlc.Queries
}

func newMessageStore(queries *sqlc.Queries) MessageStore {
	return &messageStore{queries: queries}
}

func (s *messageStore) Create(ctx context.Context, msg *model.Message) (*model.Message, error) {
	row, err := s.queries.CreateMessage(ctx, sqlc.CreateMessageParams{
		ID:              msg.ID,
		TenantID:        msg.TenantID,
		ConversationID:  msg.ConversationID,
		SenderType:      string(msg.Sender.Kind),
		SenderContactID: msg.Sender.ContactID,
		Body:            msg.Text,
		ExternalID:      msg.ExternalID,
		SentAt:          pgtype.Timestamptz{Time: msg.SentAt, Valid: true},
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toMessageModel(row), nil
}

func (s *messageStore) CreateOrGet(ctx context.Context, msg *model.Message) (*model.Message, bool, error) {
	if msg.ExternalID == nil {
		return nil, false, errors.New("CreateOrGet requires an external id")
	}

	row, err := s.queries.UpsertMessageByExternalID(ctx, sqlc.UpsertMessageByExternalIDParams{
		ID:              msg.ID,
		TenantID:        msg.TenantID,
		ConversationID:  msg.ConversationID,
		SenderType:      string(msg.Sender.Kind),
		SenderContactID: msg.Sender.ContactID,
		Body:            msg.Text,
		ExternalID:      msg.ExternalID,
		SentAt:          pgtype.Timestamptz{Time: msg.SentAt, Valid: true},
	})
	if err != nil {
		return nil, false, mapError(err)
	}

	created := row.ID == msg.ID
	return toMessageModel(row), created, nil
}

func (s *messageStore) GetByExternalID(ctx context.Context, conversationID int64, externalID string) (*model.Message, error) {
	row, err := s.queries.GetMessageByExternalID(ctx, sqlc.GetMessageByExternalIDParams{
		ConversationID: conversationID,
		ExternalID:     &externalID,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toMessageModel(row), nil
}

func (s *messageStore) ListByConversation(ctx context.Context, conversationID int64, limit int32) ([]model.Message, error) {
	rows, err := s.queries.ListMessagesByConversation(ctx, sqlc.ListMessagesByConversationParams{
		ConversationID: conversationID,
		Limit:          limit,
	})
	if err != nil {
		return nil, mapError(err)
	}

	messages := make([]model.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, *toMessageModel(row))
	}
	return messages, nil
}

func toMessageModel(row sqlc.Message) *model.Message {
	return &model.Message{
		ID:             row.ID,
		TenantID:       row.TenantID,
		ConversationID: row.ConversationID,
		Sender:         model.SenderFromStore(row.SenderType, row.SenderContactID),
		Text:           row.Body,
		ExternalID:     row.ExternalID,
		SentAt:         row.SentAt.Time,
		CreatedAt:      row.CreatedAt.Time,
	}
}
