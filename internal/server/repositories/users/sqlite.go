package users

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/projdash/internal/common"
	"github.com/dmitrijs2005/projdash/internal/dbx"
	"github.com/dmitrijs2005/projdash/internal/server/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, login, password_salt, password_hash, display_name, affiliation, team_id, mode, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Login, user.PasswordSalt, user.PasswordHash,
		user.DisplayName, user.Affiliation, user.TeamID, user.Mode, user.CreatedAt.UTC())
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLiteRepository) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	query :=
		`SELECT id, login, password_salt, password_hash, display_name, affiliation, team_id, mode, created_at
		 FROM users WHERE login = ?`

	return scanUser(r.db.QueryRowContext(ctx, query, login))
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, login, password_salt, password_hash, display_name, affiliation, team_id, mode, created_at
		 FROM users WHERE id = ?`

	return scanUser(r.db.QueryRowContext(ctx, query, id))
}
