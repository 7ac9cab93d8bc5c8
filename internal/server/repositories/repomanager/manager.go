// Package repomanager opens the configured storage backend and vends its
// repositories, either directly or bound to a transaction.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/projdash/internal/server/config"
	"github.com/dmitrijs2005/projdash/internal/server/repositories/avatars"
	"github.com/dmitrijs2005/projdash/internal/server/repositories/jsonfile"
	"github.com/dmitrijs2005/projdash/internal/server/repositories/projects"
	"github.com/dmitrijs2005/projdash/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Repositories is a set of repositories sharing one connection or transaction.
type Repositories interface {
	Users() users.Repository
	Projects() projects.Repository
	Avatars() avatars.Repository
}

// Manager owns a storage backend for the lifetime of the process.
type Manager interface {
	Repositories

	// WithTx runs fn atomically: either every change made through the
	// supplied repositories is persisted or none is.
	WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	RunMigrations(ctx context.Context) error
	Close() error
}

// sqlOpen is a seam for testing sql.Open.
var sqlOpen = sql.Open

// Open connects to the backend selected by cfg.StorageBackend. Migrations are
// not applied; call RunMigrations.
func Open(ctx context.Context, cfg *config.Config) (Manager, error) {
	switch cfg.StorageBackend {
	case config.BackendFile:
		store, err := jsonfile.Open(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return NewFileManager(store), nil

	case config.BackendPostgres:
		db, err := sqlOpen("pgx", cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db ping error: %w", err)
		}
		return NewPostgresManager(db), nil

	case config.BackendSQLite:
		db, err := sqlOpen("sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}
		// one writer at a time; a second connection would see SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db ping error: %w", err)
		}
		return NewSQLiteManager(db), nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}
