package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/projdash/internal/dbx"
	"github.com/dmitrijs2005/projdash/internal/server/migrations"
	"github.com/dmitrijs2005/projdash/internal/server/repositories/avatars"
	"github.com/dmitrijs2005/projdash/internal/server/repositories/projects"
	"github.com/dmitrijs2005/projdash/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

type dialect struct {
	goose    string
	dir      string
	users    func(dbx.DBTX) users.Repository
	projects func(dbx.DBTX) projects.Repository
	avatars  func(dbx.DBTX) avatars.Repository
}

var postgresDialect = dialect{
	goose:    "pgx",
	dir:      migrations.PostgresDir,
	users:    func(db dbx.DBTX) users.Repository { return users.NewPostgresRepository(db) },
	projects: func(db dbx.DBTX) projects.Repository { return projects.NewPostgresRepository(db) },
	avatars:  func(db dbx.DBTX) avatars.Repository { return avatars.NewPostgresRepository(db) },
}

var sqliteDialect = dialect{
	goose:    "sqlite3",
	dir:      migrations.SQLiteDir,
	users:    func(db dbx.DBTX) users.Repository { return users.NewSQLiteRepository(db) },
	projects: func(db dbx.DBTX) projects.Repository { return projects.NewSQLiteRepository(db) },
	avatars:  func(db dbx.DBTX) avatars.Repository { return avatars.NewSQLiteRepository(db) },
}

// SQLManager vends SQL-backed repositories and runs goose migrations.
type SQLManager struct {
	db      *sql.DB
	dialect dialect
}

// NewPostgresManager wraps a pgx connection pool.
func NewPostgresManager(db *sql.DB) *SQLManager {
	return &SQLManager{db: db, dialect: postgresDialect}
}

// NewSQLiteManager wraps a modernc sqlite connection pool.
func NewSQLiteManager(db *sql.DB) *SQLManager {
	return &SQLManager{db: db, dialect: sqliteDialect}
}

type boundRepos struct {
	db dbx.DBTX
	d  dialect
}

func (b boundRepos) Users() users.Repository       { return b.d.users(b.db) }
func (b boundRepos) Projects() projects.Repository { return b.d.projects(b.db) }
func (b boundRepos) Avatars() avatars.Repository   { return b.d.avatars(b.db) }

func (m *SQLManager) Users() users.Repository       { return m.dialect.users(m.db) }
func (m *SQLManager) Projects() projects.Repository { return m.dialect.projects(m.db) }
func (m *SQLManager) Avatars() avatars.Repository   { return m.dialect.avatars(m.db) }

func (m *SQLManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, boundRepos{db: tx, d: m.dialect})
	})
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations of the manager's dialect.
func (m *SQLManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.dialect.goose); err != nil {
		return err
	}
	return gooseUpContext(ctx, m.db, m.dialect.dir)
}

func (m *SQLManager) Close() error {
	return m.db.Close()
}
