package database_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomieradar/roomieradar/internal/database"
	"github.com/roomieradar/roomieradar/internal/database/dbtest"
)

func TestWithTransaction_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := dbtest.StartPostgres(t)
	ctx := context.Background()

	require.NoError(t, db.Health(ctx))
	// Migrate is idempotent.
	require.NoError(t, db.Migrate(ctx))

	insertUser := func(tx *sql.Tx, id string) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, username, email, password_hash) VALUES ($1, $1, $1 || '@test', 'x')`, id)
		return err
	}
	countUsers := func() int {
		var n int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n))
		return n
	}

	t.Run("commit", func(t *testing.T) {
		err := db.WithTransaction(ctx, nil, func(tx *sql.Tx) error {
			return insertUser(tx, "committed")
		})
		require.NoError(t, err)
		assert.Equal(t, 1, countUsers())
	})

	t.Run("rollback on error", func(t *testing.T) {
		sentinel := errors.New("abort")
		err := db.WithTransaction(ctx, nil, func(tx *sql.Tx) error {
			require.NoError(t, insertUser(tx, "rolled-back"))
			return sentinel
		})
		assert.ErrorIs(t, err, sentinel)
		assert.Equal(t, 1, countUsers())
	})

	t.Run("unique violation is classified", func(t *testing.T) {
		err := db.WithTransaction(ctx, nil, func(tx *sql.Tx) error {
			return insertUser(tx, "committed")
		})
		require.Error(t, err)
		assert.True(t, database.IsUniqueViolation(err))
	})

	t.Run("rollback on panic", func(t *testing.T) {
		assert.Panics(t, func() {
			_ = db.WithTransaction(ctx, nil, func(tx *sql.Tx) error {
				require.NoError(t, insertUser(tx, "panicked"))
				panic("boom")
			})
		})
		assert.Equal(t, 1, countUsers())
	})
}
