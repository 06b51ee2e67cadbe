//go:build integration

package integration

import (
	"database/sql"
	"testing"

	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/storefront/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var exists bool
	err := db.QueryRow(`SELECT EXISTS (
		SELECT 1 FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = $1)`, name).Scan(&exists)
	require.NoError(t, err)
	return exists
}

func TestMigrations_DownAndUp(t *testing.T) {
	testDB := NewTestDB(t)

	conn, err := sql.Open("postgres", testDB.DSN)
	require.NoError(t, err)
	m, err := migration.NewFromFS(conn, migrations.FS, zap.NewNop())
	require.NoError(t, err)
	defer func() {
		_ = m.Close()
	}()

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	require.NoError(t, m.Up(), "up on a current schema is a no-op")

	require.NoError(t, m.Down())
	for _, table := range []string{"users", "products", "carts", "cart_items", "orders"} {
		assert.False(t, tableExists(t, testDB.SqlDB, table), table)
	}
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)

	require.NoError(t, m.Steps(1))
	assert.True(t, tableExists(t, testDB.SqlDB, "orders"))

	var indexCount int
	require.NoError(t, testDB.SqlDB.QueryRow(
		`SELECT COUNT(*) FROM pg_indexes WHERE indexname IN ('idx_carts_open_user', 'idx_orders_cart')`,
	).Scan(&indexCount))
	assert.Equal(t, 2, indexCount)
}
