package store

import (
	"context"

	"github.com/samuelbyalugaba/KenaAI-sub000/core/db/sqlc"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/model"
)

type tenantStore struct {
	queries *sqlc.Queries
}

func newTenantStore(queries *sqlc.Queries) TenantStore {
	return &tenantStore{queries: queries}
}

func (s *tenantStore) GetByBotID(ctx context.Context, botID string) (*model.Tenant, error) {
	row, err := s.queries.GetTenantByBotID(ctx, botID)
	if err != nil {
		return nil, mapError(err)
	}
	return toTenantModel(row), nil
}

func toTenantModel(row sqlc.Tenant) *model.Tenant {
	return &model.Tenant{
		ID:        row.ID,
		Name:      row.Name,
		BotID:     row.BotID,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
