package database

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactdesk/admin-server/internal/config"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Connect(config.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))

	t.Cleanup(func() { db.Close() })
	return db
}

func countMessages(t *testing.T, db *DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM messages`))
	return n
}

func insertMessage(tx *sqlx.Tx) error {
	_, err := tx.Exec(tx.Rebind(`
		INSERT INTO messages (name, email, message, created_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	`), "Ada", "ada@example.com", "hello")
	return err
}

func TestConnect(t *testing.T) {
	t.Run("rejects unknown driver", func(t *testing.T) {
		_, err := Connect("mysql", "root@/db")
		assert.Error(t, err)
	})

	t.Run("sqlite in memory migrates", func(t *testing.T) {
		db := setupTestDB(t)
		assert.Equal(t, config.DriverSQLite, db.Driver())
		assert.NoError(t, db.Ping(context.Background()))
		assert.Equal(t, 0, countMessages(t, db))
	})

	t.Run("migrate is idempotent", func(t *testing.T) {
		db := setupTestDB(t)
		assert.NoError(t, db.Migrate(context.Background()))
	})
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t,
		":memory:?_time_format=sqlite&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		sqliteDSN(":memory:"))
	assert.Contains(t, sqliteDSN("data/contactdesk.db"), "journal_mode(WAL)")
	assert.Contains(t, sqliteDSN("file:contactdesk.db?cache=shared"), "?cache=shared&_time_format=sqlite")
	assert.Equal(t, "x.db?_pragma=foreign_keys(0)", sqliteDSN("x.db?_pragma=foreign_keys(0)"))
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		db := setupTestDB(t)

		err := db.WithTx(ctx, insertMessage)
		require.NoError(t, err)
		assert.Equal(t, 1, countMessages(t, db))
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db := setupTestDB(t)
		sentinel := errors.New("second write failed")

		err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
			if err := insertMessage(tx); err != nil {
				return err
			}
			return sentinel
		})

		assert.ErrorIs(t, err, sentinel)
		assert.Equal(t, 0, countMessages(t, db))
	})

	t.Run("rolls back and re-panics", func(t *testing.T) {
		db := setupTestDB(t)

		assert.Panics(t, func() {
			_ = db.WithTx(ctx, func(tx *sqlx.Tx) error {
				require.NoError(t, insertMessage(tx))
				panic("boom")
			})
		})
		assert.Equal(t, 0, countMessages(t, db))
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		db := setupTestDB(t)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := db.WithTx(cancelled, insertMessage)
		assert.Error(t, err)
		assert.Equal(t, 0, countMessages(t, db))
	})
}

func TestIsUniqueViolation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
		INSERT INTO messages (id, name, email, message, created_at)
		VALUES (7, 'Ada', 'ada@example.com', 'hi', CURRENT_TIMESTAMP)
	`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `
		INSERT INTO messages (id, name, email, message, created_at)
		VALUES (7, 'Bob', 'bob@example.com', 'hi', CURRENT_TIMESTAMP)
	`)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("connection reset")))
}
