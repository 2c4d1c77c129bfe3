package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "isp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()

	t.Run("Should answer queries against seeded rows", func(t *testing.T) {
		db := openTestDB(t)
		require.NoError(t, db.Seed(ctx))

		res, err := db.Execute(ctx, "SELECT name, email FROM users WHERE user_id = 1")
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "email"}, res.Columns)
		assert.Equal(t, [][]any{{"John Doe", "johndoe@example.com"}}, res.Rows)
		assert.Equal(t, "name=John Doe, email=johndoe@example.com", res.String())
	})

	t.Run("Should seed only once", func(t *testing.T) {
		db := openTestDB(t)
		require.NoError(t, db.Seed(ctx))
		require.NoError(t, db.Seed(ctx))

		res, err := db.Execute(ctx, "SELECT COUNT(*) AS n FROM users")
		require.NoError(t, err)
		assert.EqualValues(t, 1, res.Rows[0][0])
	})

	t.Run("Should reopen an existing database", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "isp.db")
		db, err := Open(ctx, path)
		require.NoError(t, err)
		require.NoError(t, db.Seed(ctx))
		require.NoError(t, db.Close())

		db, err = Open(ctx, path)
		require.NoError(t, err)
		defer db.Close()
		res, err := db.Execute(ctx, "SELECT package_name FROM packages")
		require.NoError(t, err)
		assert.Equal(t, [][]any{{"Premium Package"}}, res.Rows)
	})

	t.Run("Should return an empty result for no matches", func(t *testing.T) {
		db := openTestDB(t)
		res, err := db.Execute(ctx, "SELECT * FROM users WHERE user_id = 42")
		require.NoError(t, err)
		assert.True(t, res.Empty())
		assert.Empty(t, res.String())
	})

	t.Run("Should report invalid SQL", func(t *testing.T) {
		db := openTestDB(t)
		_, err := db.Execute(ctx, "SELEC nothing")
		assert.Error(t, err)
	})
}

func TestSchema(t *testing.T) {
	schema := Schema()
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS users")
	assert.Contains(t, schema, "payment_records")
	assert.NotContains(t, schema, "goose")
	assert.NotContains(t, schema, "DROP TABLE")
}
