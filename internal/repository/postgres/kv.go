// Package postgres stores review data in a PostgreSQL key/value table.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/repository"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/database"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrations returns the schema migrations rooted at the migrations dir.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrate applies pending schema migrations.
func Migrate(ctx context.Context, db database.DBTX, logger *slog.Logger) error {
	return database.RunMigrations(ctx, db, Migrations(), logger)
}

const (
	selectValue = `SELECT value FROM kv_entries WHERE key = $1`
	upsertValue = `
		INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	deleteValue = `DELETE FROM kv_entries WHERE key = $1`
	// The advisory lock also serializes the first write of a key, which a
	// row lock cannot do because the row does not exist yet.
	lockKey = `SELECT pg_advisory_xact_lock(hashtext($1))`
)

// KV implements repository.KV on PostgreSQL.
type KV struct {
	db database.DBTX
}

// NewKV creates a PostgreSQL KV.
func NewKV(db database.DBTX) *KV {
	return &KV{db: db}
}

func (k *KV) Get(ctx context.Context, key string) (value []byte, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "kv.get", selectValue)
	defer func() { end(err) }()

	err = k.db.QueryRow(ctx, selectValue, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return value, nil
}

func (k *KV) Set(ctx context.Context, key string, value []byte) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "kv.set", upsertValue)
	defer func() { end(err) }()

	if _, err = k.db.Exec(ctx, upsertValue, key, value); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (k *KV) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "kv.delete", deleteValue)
	defer func() { end(err) }()

	if _, err = k.db.Exec(ctx, deleteValue, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Update runs fn inside a transaction holding a per-key advisory lock.
func (k *KV) Update(ctx context.Context, key string, fn repository.UpdateFunc) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "kv.update", upsertValue)
	defer func() { end(err) }()

	tx, err := k.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update %s: %w", key, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, lockKey, key); err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}

	var cur []byte
	exists := true
	if err = tx.QueryRow(ctx, selectValue, key).Scan(&cur); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("select %s: %w", key, err)
		}
		exists = false
	}

	next, err := fn(cur, exists)
	if errors.Is(err, repository.ErrSkipWrite) {
		err = tx.Rollback(ctx)
		return err
	}
	if err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, upsertValue, key, next); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update %s: %w", key, err)
	}
	return nil
}
