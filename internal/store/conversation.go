package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/samuelbyalugaba/KenaAI-sub000/core/db/sqlc"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/model"
)

type conversationStore struct {
	queries *sqlc.Queries
}

func newConversationStore(queries *sqlc.Queries) ConversationStore {
	return &conversationStore{queries: queries}
}

func (s *conversationStore) GetByID(ctx context.Context, id int64) (*model.Conversation, error) {
	row, err := s.queries.GetConversation(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return toConversationModel(row)
}

func (s *conversationStore) FindOpen(ctx context.Context, tenantID, contactID int64) (*model.Conversation, error) {
	row, err := s.queries.GetOpenConversation(ctx, sqlc.GetOpenConversationParams{
		TenantID:  tenantID,
		ContactID: contactID,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toConversationModel(row)
}

func (s *conversationStore) Upsert(ctx context.Context, conv *model.Conversation) (*model.Conversation, bool, error) {
	snapshot, err := json.Marshal(conv.Contact)
	if err != nil {
		return nil, false, fmt.Errorf("marshal contact snapshot: %w", err)
	}

	row, err := s.queries.UpsertConversation(ctx, sqlc.UpsertConversationParams{
		ID:              conv.ID,
		TenantID:        conv.TenantID,
		ContactID:       conv.ContactID,
		ContactSnapshot: snapshot,
		LastMessage:     conv.LastMessage,
		LastMessageAt:   pgtype.Timestamptz{Time: conv.LastMessageAt, Valid: true},
		Priority:        string(conv.Priority),
		Channel:         conv.Channel,
	})
	if err != nil {
		return nil, false, mapError(err)
	}

	result, err := toConversationModel(row)
	if err != nil {
		return nil, false, err
	}
	created := row.ID == conv.ID
	return result, created, nil
}

func toConversationModel(row sqlc.Conversation) (*model.Conversation, error) {
	var snapshot model.ContactSnapshot
	if len(row.ContactSnapshot) > 0 {
		if err := json.Unmarshal(row.ContactSnapshot, &snapshot); err != nil {
			return nil, fmt.Errorf("unmarshal contact snapshot: %w", err)
		}
	}
	return &model.Conversation{
		ID:            row.ID,
		TenantID:      row.TenantID,
		ContactID:     row.ContactID,
		Contact:       snapshot,
		LastMessage:   row.LastMessage,
		LastMessageAt: row.LastMessageAt.Time,
		UnreadCount:   row.UnreadCount,
		Priority:      model.Priority(row.Priority),
		Channel:       row.Channel,
		IsBotActive:   row.IsBotActive,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}, nil
}
