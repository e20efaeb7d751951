// Package sqlite stores review data in a local SQLite file, the CLI's
// analogue of a browser profile's storage.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/repository"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_entries (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

const (
	selectValue = `SELECT value FROM kv_entries WHERE key = ?`
	upsertValue = `
		INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
	deleteValue = `DELETE FROM kv_entries WHERE key = ?`
)

// KV implements repository.KV on SQLite.
type KV struct {
	db *sql.DB
}

// Open opens the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*KV, error) {
	db, err := database.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	kv := NewKV(db)
	if err := kv.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return kv, nil
}

// NewKV wraps an open database.
func NewKV(db *sql.DB) *KV {
	return &KV{db: db}
}

// Migrate creates the kv table.
func (k *KV) Migrate(ctx context.Context) error {
	if _, err := k.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create kv table: %w", err)
	}
	return nil
}

func (k *KV) Get(ctx context.Context, key string) (value []byte, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemSQLite, "kv.get", selectValue)
	defer func() { end(err) }()

	err = k.db.QueryRowContext(ctx, selectValue, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return value, nil
}

func (k *KV) Set(ctx context.Context, key string, value []byte) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemSQLite, "kv.set", upsertValue)
	defer func() { end(err) }()

	if _, err = k.db.ExecContext(ctx, upsertValue, key, value); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (k *KV) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemSQLite, "kv.delete", deleteValue)
	defer func() { end(err) }()

	if _, err = k.db.ExecContext(ctx, deleteValue, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Update runs fn inside one transaction. The pool holds a single
// connection, so transactions are serialized.
func (k *KV) Update(ctx context.Context, key string, fn repository.UpdateFunc) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemSQLite, "kv.update", upsertValue)
	defer func() { end(err) }()

	tx, err := k.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update %s: %w", key, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var cur []byte
	exists := true
	if err = tx.QueryRowContext(ctx, selectValue, key).Scan(&cur); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("select %s: %w", key, err)
		}
		exists = false
	}

	next, err := fn(cur, exists)
	if errors.Is(err, repository.ErrSkipWrite) {
		err = tx.Rollback()
		return err
	}
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, upsertValue, key, next); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update %s: %w", key, err)
	}
	return nil
}

// Close closes the database.
func (k *KV) Close() error {
	return k.db.Close()
}
