package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/samuelbyalugaba/KenaAI-sub000/internal/model"
)

const contactColumns = `id, tenant_id, name, identity, external_user_id, is_online, notes, created_at, updated_at`

type contactStore struct {
	db dbtx
}

func (s *contactStore) GetByTenantAndIdentity(ctx context.Context, tenantID int64, identity string) (*model.Contact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+contactColumns+`
		FROM contacts WHERE tenant_id = ? AND identity = ?
	`, tenantID, identity)
	return scanContact(row)
}

func (s *contactStore) CreateOrGet(ctx context.Context, contact *model.Contact) (*model.Contact, bool, error) {
	notes := contact.Notes
	if notes == nil {
		notes = []string{}
	}
	notesJSON, err := json.Marshal(notes)
	if err != nil {
		return nil, false, fmt.Errorf("marshal notes: %w", err)
	}

	now := toUnix(nowFunc())
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO contacts (id, tenant_id, name, identity, external_user_id, is_online, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tenant_id, identity) DO UPDATE
		SET identity = contacts.identity
		RETURNING `+contactColumns,
		contact.ID, contact.TenantID, contact.Name, contact.Identity, contact.ExternalUserID,
		contact.IsOnline, string(notesJSON), now, now,
	)
	result, err := scanContact(row)
	if err != nil {
		return nil, false, err
	}

	created := result.ID == contact.ID
	return result, created, nil
}

func scanContact(row *sql.Row) (*model.Contact, error) {
	var (
		c                    model.Contact
		notes                string
		createdAt, updatedAt int64
	)
	err := row.Scan(&c.ID, &c.TenantID, &c.Name, &c.Identity, &c.ExternalUserID,
		&c.IsOnline, &notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	if err := json.Unmarshal([]byte(notes), &c.Notes); err != nil {
		return nil, fmt.Errorf("unmarshal notes: %w", err)
	}
	if c.Notes == nil {
		c.Notes = []string{}
	}
	c.CreatedAt = fromUnix(createdAt)
	c.UpdatedAt = fromUnix(updatedAt)
	return &c, nil
}
