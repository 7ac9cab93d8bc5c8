// Package avatars persists one profile picture record per user.
package avatars

import (
	"context"

	"github.com/dmitrijs2005/projdash/internal/server/models"
)

// Repository stores avatars. Save replaces any previous avatar of the user;
// Get returns common.ErrorNotFound when the user has none.
type Repository interface {
	Save(ctx context.Context, avatar *models.Avatar) error
	Get(ctx context.Context, userID string) (*models.Avatar, error)
}
