// Package users persists User records in SQL databases.
package users

import (
	"context"

	"github.com/dmitrijs2005/projdash/internal/server/models"
)

// Repository stores users. Create returns common.ErrorAlreadyExists when the
// login is taken; lookups return common.ErrorNotFound for unknown users.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
