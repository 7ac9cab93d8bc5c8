// Package jsonfile is the file-backed storage variant: users, projects and
// avatars live in three JSON array documents inside one directory.
//
// A single process-wide RWMutex serialises writers. Every operation reads the
// documents it needs, applies its change and replaces modified files with an
// atomic rename, so concurrent requests never lose updates. Several processes
// sharing one directory are not supported.
package jsonfile

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/dmitrijs2005/projdash/internal/filex"
	"github.com/dmitrijs2005/projdash/internal/server/models"
)

type Store struct {
	dir string
	mu  sync.RWMutex
}

// Open prepares dir and checks that any existing documents are readable.
func Open(dir string) (*Store, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	s := &Store{dir: abs}
	if err := s.view(context.Background(), func(st *state) error {
		if _, err := st.users.load(s.dir); err != nil {
			return err
		}
		if _, err := st.projects.load(s.dir); err != nil {
			return err
		}
		_, err := st.avatars.load(s.dir)
		return err
	}); err != nil {
		return nil, err
	}

	return s, nil
}

// Dir returns the absolute data directory.
func (s *Store) Dir() string { return s.dir }

// Close is a no-op.
func (s *Store) Close() error { return nil }

type state struct {
	users    document[models.User]
	projects document[models.Project]
	avatars  document[models.Avatar]
}

func newState() *state {
	return &state{
		users:    document[models.User]{name: "users"},
		projects: document[models.Project]{name: "projects"},
		avatars:  document[models.Avatar]{name: "avatars"},
	}
}

type stager interface {
	path(dir string) string
	stage(dir string) (string, error)
	committed()
}

// save writes every modified document. All of them are staged first; targets
// are replaced only once staging has succeeded, so a failed write leaves the
// directory as it was.
func (st *state) save(dir string) error {
	docs := []stager{&st.users, &st.projects, &st.avatars}

	staged := make([]string, len(docs))
	discard := func() {
		for _, tmp := range staged {
			if tmp != "" {
				_ = os.Remove(tmp)
			}
		}
	}

	for i, d := range docs {
		tmp, err := d.stage(dir)
		if err != nil {
			discard()
			return err
		}
		staged[i] = tmp
	}

	for i, d := range docs {
		if staged[i] == "" {
			continue
		}
		if err := os.Rename(staged[i], d.path(dir)); err != nil {
			discard()
			return fmt.Errorf("replace %s: %w", d.path(dir), err)
		}
		staged[i] = ""
		d.committed()
	}
	return nil
}

// runner executes a read-only or read-write step against some state.
type runner interface {
	view(ctx context.Context, fn func(*state) error) error
	update(ctx context.Context, fn func(*state) error) error
	dir() string
}

func (s *Store) view(ctx context.Context, fn func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(newState())
}

func (s *Store) update(ctx context.Context, fn func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st := newState()
	if err := fn(st); err != nil {
		return err
	}
	return st.save(s.dir)
}

type autoRunner struct{ s *Store }

func (r autoRunner) view(ctx context.Context, fn func(*state) error) error {
	return r.s.view(ctx, fn)
}

func (r autoRunner) update(ctx context.Context, fn func(*state) error) error {
	return r.s.update(ctx, fn)
}

func (r autoRunner) dir() string { return r.s.dir }

// txRunner works on a state held by an enclosing WithTx call.
type txRunner struct {
	st   *state
	root string
}

func (r txRunner) view(ctx context.Context, fn func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(r.st)
}

func (r txRunner) update(ctx context.Context, fn func(*state) error) error {
	return r.view(ctx, fn)
}

func (r txRunner) dir() string { return r.root }

// Repos groups the repositories bound to one runner.
type Repos struct {
	Users    *UserRepository
	Projects *ProjectRepository
	Avatars  *AvatarRepository
}

func newRepos(r runner) Repos {
	return Repos{
		Users:    &UserRepository{r: r},
		Projects: &ProjectRepository{r: r},
		Avatars:  &AvatarRepository{r: r},
	}
}

// Repos returns repositories where every call is its own atomic step.
func (s *Store) Repos() Repos {
	return newRepos(autoRunner{s: s})
}

// WithTx runs fn holding the write lock. Changes made through the supplied
// repositories are written only if fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error {
	return s.update(ctx, func(st *state) error {
		return fn(ctx, newRepos(txRunner{st: st, root: s.dir}))
	})
}
