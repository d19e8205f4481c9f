package store

import (
	"context"

	"github.com/samuelbyalugaba/KenaAI-sub000/core/db/sqlc"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/model"
)

type contactStore struct {
	queries *sqlc.Queries
}

func newContactStore(queries *sqlc.Queries) ContactStore {
	return &contactStore{queries: queries}
}

func (s *contactStore) GetByTenantAndIdentity(ctx context.Context, tenantID int64, identity string) (*model.Contact, error) {
	row, err := s.queries.GetContactByTenantAndIdentity(ctx, sqlc.GetContactByTenantAndIdentityParams{
		TenantID: tenantID,
		Identity: identity,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return toContactModel(row), nil
}

func (s *contactStore) CreateOrGet(ctx context.Context, contact *model.Contact) (*model.Contact, bool, error) {
	notes := contact.Notes
	if notes == nil {
		notes = []string{}
	}

	row, err := s.queries.UpsertContact(ctx, sqlc.UpsertContactParams{
		ID:             contact.ID,
		TenantID:       contact.TenantID,
		Name:           contact.Name,
		Identity:       contact.Identity,
		ExternalUserID: contact.ExternalUserID,
		IsOnline:       contact.IsOnline,
		Notes:          notes,
	})
	if err != nil {
		return nil, false, mapError(err)
	}

	created := row.ID == contact.ID
	return toContactModel(row), created, nil
}

func toContactModel(row sqlc.Contact) *model.Contact {
	notes := row.Notes
	if notes == nil {
		notes = []string{}
	}
	return &model.Contact{
		ID:             row.ID,
		TenantID:       row.TenantID,
		Name:           row.Name,
		Identity:       row.Identity,
		ExternalUserID: row.ExternalUserID,
		IsOnline:       row.IsOnline,
		Notes:          notes,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}
