// Package sqltest opens migrated in-memory SQLite databases for repository
// tests.
package sqltest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/projdash/internal/server/migrations"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// OpenSQLite returns a fresh in-memory database with all SQLite migrations
// applied. The pool is pinned to one connection so the database survives.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		t.Fatalf("goose dialect: %v", err)
	}
	if err := goose.UpContext(context.Background(), db, migrations.SQLiteDir); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}
