package sqlite

import (
	"context"

	"github.com/samuelbyalugaba/KenaAI-sub000/internal/model"
)

type tenantStore struct {
	db dbtx
}

func (s *tenantStore) GetByBotID(ctx context.Context, botID string) (*model.Tenant, error) {
	var (
		t                    model.Tenant
		createdAt, updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, bot_id, created_at, updated_at
		FROM tenants WHERE bot_id = ?
	`, botID).Scan(&t.ID, &t.Name, &t.BotID, &createdAt, &updatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	t.CreatedAt = fromUnix(createdAt)
	t.UpdatedAt = fromUnix(updatedAt)
	return &t, nil
}

// CreateTenant provisions a tenant. The ingestion path never calls it;
// tenants come from operators and test fixtures.
func (db *DB) CreateTenant(ctx context.Context, t *model.Tenant) error {
	now := toUnix(t.CreatedAt)
	if t.CreatedAt.IsZero() {
		now = toUnix(nowFunc())
	}
	_, err := db.sql.ExecContext(ctx, `
		INSERT INTO tenants (id, name, bot_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, t.ID, t.Name, t.BotID, now, now)
	return mapError(err)
}
