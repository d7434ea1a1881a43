package storage

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postgresDSNEnv = "TASKTRACKER_TEST_POSTGRES_DSN"

// newTestPostgres connects to the database named by the environment
// and isolates the test in a schema of its own.
func newTestPostgres(t *testing.T) *Postgres {
	t.Helper()
	dsn := os.Getenv(postgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s is not set", postgresDSNEnv)
	}
	ctx := context.Background()

	schema := pgx.Identifier{"kv_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")}.Sanitize()
	admin, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = admin.Close(context.Background()) })

	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
	})

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	s := NewPostgres(pool)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPostgres(t *testing.T) {
	s := newTestPostgres(t)
	require.NoError(t, s.EnsureTable(context.Background()))
	testStorage(t, s)
}

func TestPostgres_MissingTableReadsAsEmpty(t *testing.T) {
	s := newTestPostgres(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "users")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.EnsureTable(ctx))
	require.NoError(t, s.EnsureTable(ctx), "creating the table twice is harmless")
	require.NoError(t, s.Set(ctx, "users", `[]`))

	value, ok, err := s.Get(ctx, "users")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, value)
}
