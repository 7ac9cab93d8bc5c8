package repomanager

import (
	"context"

	"github.com/dmitrijs2005/projdash/internal/server/repositories/avatars"
	"github.com/dmitrijs2005/projdash/internal/server/repositories/jsonfile"
	"github.com/dmitrijs2005/projdash/internal/server/repositories/projects"
	"github.com/dmitrijs2005/projdash/internal/server/repositories/users"
)

// FileManager adapts a jsonfile.Store to Manager.
type FileManager struct {
	store *jsonfile.Store
	repos jsonfile.Repos
}

func NewFileManager(store *jsonfile.Store) *FileManager {
	return &FileManager{store: store, repos: store.Repos()}
}

type fileRepos struct{ r jsonfile.Repos }

func (f fileRepos) Users() users.Repository       { return f.r.Users }
func (f fileRepos) Projects() projects.Repository { return f.r.Projects }
func (f fileRepos) Avatars() avatars.Repository   { return f.r.Avatars }

func (m *FileManager) Users() users.Repository       { return m.repos.Users }
func (m *FileManager) Projects() projects.Repository { return m.repos.Projects }
func (m *FileManager) Avatars() avatars.Repository   { return m.repos.Avatars }

func (m *FileManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return m.store.WithTx(ctx, func(ctx context.Context, r jsonfile.Repos) error {
		return fn(ctx, fileRepos{r: r})
	})
}

// RunMigrations is a no-op: documents are created on first write.
func (m *FileManager) RunMigrations(context.Context) error { return nil }

func (m *FileManager) Close() error { return m.store.Close() }
