package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/samuelbyalugaba/KenaAI-sub000/internal/model"
)

const messageColumns = `id, tenant_id, conversation_id, sender_type, sender_contact_id, body, external_id, sent_at, created_at`

type messageStore struct {
	db dbtx
}

func (s *messageStore) Create(ctx context.Context, msg *model.Message) (*model.Message, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO messages (id, tenant_id, conversation_id, sender_type, sender_contact_id, body, external_id, sent_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+messageColumns,
		messageArgs(msg)...,
	)
	return scanMessage(row)
}

func (s *messageStore) CreateOrGet(ctx context.Context, msg *model.Message) (*model.Message, bool, error) {
	if msg.ExternalID == nil {
		return nil, false, errors.New("CreateOrGet requires an external id")
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO messages (id, tenant_id, conversation_id, sender_type, sender_contact_id, body, external_id, sent_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (conversation_id, external_id) WHERE external_id IS NOT NULL DO UPDATE
		SET external_id = messages.external_id
		RETURNING `+messageColumns,
		messageArgs(msg)...,
	)
	result, err := scanMessage(row)
	if err != nil {
		return nil, false, err
	}

	created := result.ID == msg.ID
	return result, created, nil
}

func (s *messageStore) GetByExternalID(ctx context.Context, conversationID int64, externalID string) (*model.Message, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages WHERE conversation_id = ? AND external_id = ?
	`, conversationID, externalID)
	return scanMessage(row)
}

func (s *messageStore) ListByConversation(ctx context.Context, conversationID int64, limit int32) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages WHERE conversation_id = ?
		ORDER BY sent_at ASC, id ASC
		LIMIT ?
	`, conversationID, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return messages, nil
}

func messageArgs(msg *model.Message) []any {
	var externalID sql.NullString
	if msg.ExternalID != nil {
		externalID = sql.NullString{String: *msg.ExternalID, Valid: true}
	}
	var senderContactID sql.NullInt64
	if msg.Sender.ContactID != nil {
		senderContactID = sql.NullInt64{Int64: *msg.Sender.ContactID, Valid: true}
	}
	return []any{
		msg.ID, msg.TenantID, msg.ConversationID, string(msg.Sender.Kind), senderContactID,
		msg.Text, externalID, toUnix(msg.SentAt), toUnix(nowFunc()),
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner) (*model.Message, error) {
	var (
		m               model.Message
		senderType      string
		senderContactID sql.NullInt64
		externalID      sql.NullString
		sentAt, created int64
	)
	err := row.Scan(&m.ID, &m.TenantID, &m.ConversationID, &senderType, &senderContactID,
		&m.Text, &externalID, &sentAt, &created)
	if err != nil {
		return nil, mapError(err)
	}
	var contactID *int64
	if senderContactID.Valid {
		id := senderContactID.Int64
		contactID = &id
	}
	m.Sender = model.SenderFromStore(senderType, contactID)
	if externalID.Valid {
		ext := externalID.String
		m.ExternalID = &ext
	}
	m.SentAt = fromUnix(sentAt)
	m.CreatedAt = fromUnix(created)
	return &m, nil
}
