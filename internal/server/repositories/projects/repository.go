// Package projects persists per-user Project records in SQL databases.
package projects

import (
	"context"
	"time"

	"github.com/dmitrijs2005/projdash/internal/server/models"
)

// Repository stores projects. Update and Delete are no-ops for unknown ids.
type Repository interface {
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	ListByUser(ctx context.Context, userID string) ([]models.Project, error)
	GetByID(ctx context.Context, id string) (*models.Project, error)
	Update(ctx context.Context, id string, patch models.ProjectPatch, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
