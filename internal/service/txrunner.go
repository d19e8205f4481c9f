package service

import (
	"context"

	"github.com/samuelbyalugaba/KenaAI-sub000/core/db"
	"github.com/samuelbyalugaba/KenaAI-sub000/core/db/sqlc"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/store"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/store/sqlite"
)

// Stores is the non-transactional store surface used by the pipeline.
// Implemented by *store.Stores and *sqlite.Stores.
type Stores interface {
	Tenants() store.TenantStore
	Contacts() store.ContactStore
	Conversations() store.ConversationStore
	Messages() store.MessageStore
}

// StoreProvider exposes only the stores needed by a transactional operation.
type StoreProvider interface {
	Conversations() store.ConversationStore
	Messages() store.MessageStore
}

// TxRunner runs functions within a transaction and provides stores bound to that transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type dbTxRunner struct {
	db *db.DB
}

// NewTxRunner builds a TxRunner backed by the PostgreSQL pool.
func NewTxRunner(db *db.DB) TxRunner {
	return &dbTxRunner{db: db}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return r.db.WithTx(ctx, func(q *sqlc.Queries) error {
		return fn(store.NewStores(q))
	})
}

type sqliteTxRunner struct {
	db *sqlite.DB
}

// NewSQLiteTxRunner builds a TxRunner backed by the embedded SQLite file.
func NewSQLiteTxRunner(db *sqlite.DB) TxRunner {
	return &sqliteTxRunner{db: db}
}

func (r *sqliteTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return r.db.WithTx(ctx, func(s *sqlite.Stores) error {
		return fn(s)
	})
}
