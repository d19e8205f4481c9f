// Package sqlite is an embedded backend implementing the store interfaces
// on a single SQLite file. It is meant for local development and tests; the
// upsert semantics match the PostgreSQL queries.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS tenants (
	id         INTEGER PRIMARY KEY,
	name       TEXT    NOT NULL,
	bot_id     TEXT    NOT NULL UNIQUE,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS contacts (
	id               INTEGER PRIMARY KEY,
	tenant_id        INTEGER NOT NULL REFERENCES tenants (id),
	name             TEXT    NOT NULL,
	identity         TEXT    NOT NULL,
	external_user_id TEXT    NOT NULL,
	is_online        INTEGER NOT NULL DEFAULT 0,
	notes            TEXT    NOT NULL DEFAULT '[]',
	created_at       INTEGER NOT NULL,
	updated_at       INTEGER NOT NULL,
	UNIQUE (tenant_id, identity)
);

CREATE TABLE IF NOT EXISTS conversations (
	id               INTEGER PRIMARY KEY,
	tenant_id        INTEGER NOT NULL REFERENCES tenants (id),
	contact_id       INTEGER NOT NULL REFERENCES contacts (id),
	contact_snapshot TEXT    NOT NULL,
	last_message     TEXT    NOT NULL,
	last_message_at  INTEGER NOT NULL,
	unread_count     INTEGER NOT NULL DEFAULT 0,
	priority         TEXT    NOT NULL CHECK (priority IN ('urgent', 'high', 'normal', 'low')),
	channel          TEXT    NOT NULL,
	is_bot_active    INTEGER NOT NULL DEFAULT 1,
	created_at       INTEGER NOT NULL,
	updated_at       INTEGER NOT NULL,
	UNIQUE (tenant_id, contact_id)
);

CREATE TABLE IF NOT EXISTS messages (
	id                INTEGER PRIMARY KEY,
	tenant_id         INTEGER NOT NULL REFERENCES tenants (id),
	conversation_id   INTEGER NOT NULL REFERENCES conversations (id),
	sender_type       TEXT    NOT NULL,
	sender_contact_id INTEGER REFERENCES contacts (id),
	body              TEXT    NOT NULL,
	external_id       TEXT,
	sent_at           INTEGER NOT NULL,
	created_at        INTEGER NOT NULL,
	CHECK (
		(sender_type = 'contact' AND sender_contact_id IS NOT NULL) OR
		(sender_type = 'self' AND sender_contact_id IS NULL)
	)
);

CREATE INDEX IF NOT EXISTS messages_conversation_sent_idx ON messages (conversation_id, sent_at, id);
CREATE UNIQUE INDEX IF NOT EXISTS messages_conversation_external_id_key ON messages (conversation_id, external_id) WHERE external_id IS NOT NULL;
`

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type DB struct {
	sql *sql.DB
}

// Open creates the file (and its directory) if needed, applies the schema
// and returns a handle limited to one connection. Writers are serialized
// by the pool rather than by SQLITE_BUSY retries.
func Open(ctx context.Context, path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating sqlite directory: %w", err)
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging sqlite: %w", err)
	}

	if _, err := sqlDB.ExecContext(ctx, schema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("applying sqlite schema: %w", err)
	}

	return &DB{sql: sqlDB}, nil
}

func (db *DB) Close() error {
	return db.sql.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.sql.PingContext(ctx)
}

// Stores returns stores bound to the database outside any transaction.
func (db *DB) Stores() *Stores {
	return newStores(db.sql)
}

// WithTx runs fn inside a transaction. A non-nil error from fn rolls back;
// otherwise the transaction is committed.
func (db *DB) WithTx(ctx context.Context, fn func(stores *Stores) error) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	// No-op once committed.
	defer tx.Rollback() //nolint:errcheck

	if err := fn(newStores(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
