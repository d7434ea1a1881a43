package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores entries in a single kv_entries table.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureTable creates the kv_entries table if it doesn't exist.
func (s *Postgres) EnsureTable(ctx context.Context) error {
	const createTableQuery = `
CREATE TABLE IF NOT EXISTS kv_entries (
    entry_key   TEXT PRIMARY KEY,
    entry_value TEXT NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)
`
	_, err := s.pool.Exec(ctx, createTableQuery)
	if err != nil {
		return fmt.Errorf("failed to create kv_entries table: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	const selectEntryQuery = `
SELECT entry_value
FROM kv_entries
WHERE entry_key = $1
`
	var value string
	err := s.pool.QueryRow(
		ctx,
		selectEntryQuery,
		key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}

		// Nothing was ever written if the table is missing.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to select entry %q: %w", key, err)
	}
	return value, true, nil
}

func (s *Postgres) Set(ctx context.Context, key, value string) error {
	const upsertEntryQuery = `
INSERT INTO kv_entries (entry_key,
                        entry_value,
                        updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (entry_key) DO UPDATE
SET entry_value = EXCLUDED.entry_value,
    updated_at = EXCLUDED.updated_at
`
	_, err := s.pool.Exec(
		ctx,
		upsertEntryQuery,
		key,
		value,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert entry %q: %w", key, err)
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, key string) error {
	const deleteEntryQuery = `
DELETE FROM kv_entries
WHERE entry_key = $1
`
	_, err := s.pool.Exec(
		ctx,
		deleteEntryQuery,
		key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete entry %q: %w", key, err)
	}
	return nil
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}
