package services

import (
	"database/sql"
	"testing"

	"github.com/muhammedsuhaib/raheel-be/internal/database"
	"github.com/stretchr/testify/require"
)

// newTestDB opens an in-memory database with the full schema applied. A
// single connection keeps the in-memory database alive for the test's
// duration.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() { db.Close() })
	return db
}
