package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/dmitrijs2005/projdash/internal/common"
	"github.com/dmitrijs2005/projdash/internal/report"
	"github.com/dmitrijs2005/projdash/internal/server/config"
	"github.com/dmitrijs2005/projdash/internal/server/models"
	"github.com/dmitrijs2005/projdash/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ProjectFields are the user-editable fields of a new project.
type ProjectFields struct {
	Category    string
	SubCategory string
	Name        string
	Description string
	Link        string
	RepoLink    string
}

// ProjectService implements per-user project CRUD.
//
// Update and Delete take the acting user's id. A non-empty id restricts the
// operation to that user's projects (another owner's project yields
// common.ErrorForbidden); an empty id, used by the admin CLI, acts on any
// project. Unknown project ids are silently ignored either way.
type ProjectService struct {
	repomanager       repomanager.Manager
	allowedCategories []string
}

func NewProjectService(m repomanager.Manager, cfg *config.Config) *ProjectService {
	return &ProjectService{
		repomanager:       m,
		allowedCategories: slices.Clone(cfg.AllowedCategories),
	}
}

// Create stores a new project owned by userID.
func (s *ProjectService) Create(ctx context.Context, userID string, f ProjectFields) (*models.Project, error) {
	if err := s.checkCategory(f.Category); err != nil {
		return nil, err
	}

	ts := now()
	p := &models.Project{
		ID:          uuid.NewString(),
		UserID:      userID,
		Category:    f.Category,
		SubCategory: f.SubCategory,
		Name:        f.Name,
		Description: f.Description,
		Link:        f.Link,
		RepoLink:    f.RepoLink,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	created, err := s.repomanager.Projects().Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("error creating project: %w", err)
	}
	return created, nil
}

// List returns userID's projects.
func (s *ProjectService) List(ctx context.Context, userID string) ([]models.Project, error) {
	return s.repomanager.Projects().ListByUser(ctx, userID)
}

// Update merges the non-nil fields of patch into the project.
func (s *ProjectService) Update(ctx context.Context, userID, projectID string, patch models.ProjectPatch) error {
	if patch.Category != nil {
		if err := s.checkCategory(*patch.Category); err != nil {
			return err
		}
	}
	if patch.Empty() {
		return nil
	}

	return s.owned(ctx, userID, projectID, func(ctx context.Context, repos repomanager.Repositories) error {
		return repos.Projects().Update(ctx, projectID, patch, now())
	})
}

// Delete removes the project.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID string) error {
	return s.owned(ctx, userID, projectID, func(ctx context.Context, repos repomanager.Repositories) error {
		return repos.Projects().Delete(ctx, projectID)
	})
}

// ExportPDF writes userID's projects as a PDF report to w.
func (s *ProjectService) ExportPDF(ctx context.Context, userID string, w io.Writer) error {
	user, err := s.repomanager.Users().GetByID(ctx, userID)
	if err != nil {
		return err
	}
	projects, err := s.List(ctx, userID)
	if err != nil {
		return err
	}
	return report.WriteProjectsPDF(w, user, projects, now())
}

// owned runs fn in a transaction after checking that userID may modify the
// project. fn is skipped when the project does not exist.
func (s *ProjectService) owned(ctx context.Context, userID, projectID string, fn func(context.Context, repomanager.Repositories) error) error {
	return s.repomanager.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		p, err := repos.Projects().GetByID(ctx, projectID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil
			}
			return err
		}
		if userID != "" && p.UserID != userID {
			return common.ErrorForbidden
		}
		return fn(ctx, repos)
	})
}

func (s *ProjectService) checkCategory(category string) error {
	if len(s.allowedCategories) == 0 || slices.Contains(s.allowedCategories, category) {
		return nil
	}
	return fmt.Errorf("%w: %q", common.ErrorInvalidCategory, category)
}

// AllowedCategories returns the configured category enumeration, if any.
func (s *ProjectService) AllowedCategories() []string {
	return slices.Clone(s.allowedCategories)
}
