package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/samuelbyalugaba/KenaAI-sub000/internal/model"
)

const conversationColumns = `id, tenant_id, contact_id, contact_snapshot, last_message, last_message_at,
	unread_count, priority, channel, is_bot_active, created_at, updated_at`

type conversationStore struct {
	db dbtx
}

func (s *conversationStore) GetByID(ctx context.Context, id int64) (*model.Conversation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations WHERE id = ?
	`, id)
	return scanConversation(row)
}

func (s *conversationStore) FindOpen(ctx context.Context, tenantID, contactID int64) (*model.Conversation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations WHERE tenant_id = ? AND contact_id = ?
	`, tenantID, contactID)
	return scanConversation(row)
}

func (s *conversationStore) Upsert(ctx context.Context, conv *model.Conversation) (*model.Conversation, bool, error) {
	snapshot, err := json.Marshal(conv.Contact)
	if err != nil {
		return nil, false, fmt.Errorf("marshal contact snapshot: %w", err)
	}

	now := toUnix(nowFunc())
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO conversations (
			id, tenant_id, contact_id, contact_snapshot, last_message, last_message_at,
			unread_count, priority, channel, is_bot_active, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?, 1, ?, ?)
		ON CONFLICT (tenant_id, contact_id) DO UPDATE
		SET last_message    = excluded.last_message,
		    last_message_at = excluded.last_message_at,
		    unread_count    = conversations.unread_count + 1,
		    priority        = excluded.priority,
		    updated_at      = excluded.updated_at
		RETURNING `+conversationColumns,
		conv.ID, conv.TenantID, conv.ContactID, string(snapshot), conv.LastMessage,
		toUnix(conv.LastMessageAt), string(conv.Priority), conv.Channel, now, now,
	)
	result, err := scanConversation(row)
	if err != nil {
		return nil, false, err
	}

	created := result.ID == conv.ID
	return result, created, nil
}

func scanConversation(row *sql.Row) (*model.Conversation, error) {
	var (
		c                                   model.Conversation
		snapshot, priority                  string
		lastMessageAt, createdAt, updatedAt int64
	)
	err := row.Scan(&c.ID, &c.TenantID, &c.ContactID, &snapshot, &c.LastMessage, &lastMessageAt,
		&c.UnreadCount, &priority, &c.Channel, &c.IsBotActive, &createdAt, &updatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	if err := json.Unmarshal([]byte(snapshot), &c.Contact); err != nil {
		return nil, fmt.Errorf("unmarshal contact snapshot: %w", err)
	}
	c.Priority = model.Priority(priority)
	c.LastMessageAt = fromUnix(lastMessageAt)
	c.CreatedAt = fromUnix(createdAt)
	c.UpdatedAt = fromUnix(updatedAt)
	return &c, nil
}
