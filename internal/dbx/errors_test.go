package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation_Postgres(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	other := &pgconn.PgError{Code: "23503"}

	assert.True(t, IsUniqueViolation(dup))
	assert.True(t, IsUniqueViolation(fmt.Errorf("db error: %w", dup)))
	assert.False(t, IsUniqueViolation(other))
}

func TestIsUniqueViolation_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	_, err = db.ExecContext(ctx, `CREATE TABLE t (id TEXT PRIMARY KEY, login TEXT NOT NULL UNIQUE)`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO t (id, login) VALUES ('1', 'alice')`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO t (id, login) VALUES ('2', 'alice')`)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	_, err = db.ExecContext(ctx, `INSERT INTO t (id, login) VALUES ('1', 'bob')`)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	_, err = db.ExecContext(ctx, `INSERT INTO t (id, login) VALUES ('3', NULL)`)
	require.Error(t, err)
	assert.False(t, IsUniqueViolation(err), "NOT NULL is not a uniqueness failure")
}

func TestIsUniqueViolation_Other(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}
