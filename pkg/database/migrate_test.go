package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, ":memory:", nil)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(ctx, SQLExecer{DB: db}, "sqlite"))
	// migrations are idempotent
	require.NoError(t, Migrate(ctx, SQLExecer{DB: db}, "sqlite"))

	var n int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('practice_sessions', 'user_progress')`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMigrateUnknownDialect(t *testing.T) {
	err := Migrate(context.Background(), SQLExecer{}, "oracle")
	require.Error(t, err)
}
