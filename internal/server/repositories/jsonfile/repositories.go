package jsonfile

import (
	"context"
	"time"

	"github.com/dmitrijs2005/projdash/internal/common"
	"github.com/dmitrijs2005/projdash/internal/server/models"
)

type UserRepository struct{ r runner }

func (u *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	err := u.r.update(ctx, func(st *state) error {
		items, err := st.users.load(u.r.dir())
		if err != nil {
			return err
		}
		for _, existing := range items {
			if existing.Login == user.Login || existing.ID == user.ID {
				return common.ErrorAlreadyExists
			}
		}
		st.users.set(append(items, *user))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (u *UserRepository) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	return u.find(ctx, func(x *models.User) bool { return x.Login == login })
}

func (u *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return u.find(ctx, func(x *models.User) bool { return x.ID == id })
}

func (u *UserRepository) find(ctx context.Context, match func(*models.User) bool) (*models.User, error) {
	var found *models.User
	err := u.r.view(ctx, func(st *state) error {
		items, err := st.users.load(u.r.dir())
		if err != nil {
			return err
		}
		for i := range items {
			if match(&items[i]) {
				c := items[i]
				found = &c
				return nil
			}
		}
		return common.ErrorNotFound
	})
	return found, err
}

type ProjectRepository struct{ r runner }

func (p *ProjectRepository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	err := p.r.update(ctx, func(st *state) error {
		items, err := st.projects.load(p.r.dir())
		if err != nil {
			return err
		}
		for _, existing := range items {
			if existing.ID == project.ID {
				return common.ErrorAlreadyExists
			}
		}
		st.projects.set(append(items, *project))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// ListByUser returns the user's projects in insertion order.
func (p *ProjectRepository) ListByUser(ctx context.Context, userID string) ([]models.Project, error) {
	result := make([]models.Project, 0)
	err := p.r.view(ctx, func(st *state) error {
		items, err := st.projects.load(p.r.dir())
		if err != nil {
			return err
		}
		for _, item := range items {
			if item.UserID == userID {
				result = append(result, item)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (p *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	var found *models.Project
	err := p.r.view(ctx, func(st *state) error {
		items, err := st.projects.load(p.r.dir())
		if err != nil {
			return err
		}
		for i := range items {
			if items[i].ID == id {
				c := items[i]
				found = &c
				return nil
			}
		}
		return common.ErrorNotFound
	})
	return found, err
}

func (p *ProjectRepository) Update(ctx context.Context, id string, patch models.ProjectPatch, updatedAt time.Time) error {
	return p.r.update(ctx, func(st *state) error {
		items, err := st.projects.load(p.r.dir())
		if err != nil {
			return err
		}
		for i := range items {
			if items[i].ID == id {
				patch.Apply(&items[i])
				items[i].UpdatedAt = updatedAt
				st.projects.set(items)
				return nil
			}
		}
		return nil
	})
}

func (p *ProjectRepository) Delete(ctx context.Context, id string) error {
	return p.r.update(ctx, func(st *state) error {
		items, err := st.projects.load(p.r.dir())
		if err != nil {
			return err
		}
		kept := make([]models.Project, 0, len(items))
		for _, item := range items {
			if item.ID != id {
				kept = append(kept, item)
			}
		}
		if len(kept) != len(items) {
			st.projects.set(kept)
		}
		return nil
	})
}

type AvatarRepository struct{ r runner }

func (a *AvatarRepository) Save(ctx context.Context, avatar *models.Avatar) error {
	return a.r.update(ctx, func(st *state) error {
		items, err := st.avatars.load(a.r.dir())
		if err != nil {
			return err
		}
		for i := range items {
			if items[i].UserID == avatar.UserID {
				items[i] = *avatar
				st.avatars.set(items)
				return nil
			}
		}
		st.avatars.set(append(items, *avatar))
		return nil
	})
}

func (a *AvatarRepository) Get(ctx context.Context, userID string) (*models.Avatar, error) {
	var found *models.Avatar
	err := a.r.view(ctx, func(st *state) error {
		items, err := st.avatars.load(a.r.dir())
		if err != nil {
			return err
		}
		for i := range items {
			if items[i].UserID == userID {
				c := items[i]
				found = &c
				return nil
			}
		}
		return common.ErrorNotFound
	})
	return found, err
}
