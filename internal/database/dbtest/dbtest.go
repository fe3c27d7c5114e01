// Package dbtest opens throwaway in-memory databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/01moynul/selecta-golang/internal/database"
)

// Open returns a migrated in-memory SQLite pool that is closed when the test ends.
func Open(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

// Exec runs a raw statement, failing the test on error.
func Exec(t testing.TB, db *database.DB, query string, args ...any) {
	t.Helper()
	_, err := db.ExecContext(context.Background(), db.Rebind(query), args...)
	require.NoError(t, err)
}
