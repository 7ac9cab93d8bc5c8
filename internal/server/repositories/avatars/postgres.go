package avatars

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/projdash/internal/common"
	"github.com/dmitrijs2005/projdash/internal/dbx"
	"github.com/dmitrijs2005/projdash/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, a *models.Avatar) error {
	query :=
		`INSERT INTO avatars (user_id, content_type, data, storage_key, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE SET
		   content_type = EXCLUDED.content_type,
		   data = EXCLUDED.data,
		   storage_key = EXCLUDED.storage_key,
		   updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query, a.UserID, a.ContentType, a.Data, a.StorageKey, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.Avatar, error) {
	query :=
		`SELECT user_id, content_type, data, storage_key, updated_at
		 FROM avatars WHERE user_id = $1`

	return scanAvatar(r.db.QueryRowContext(ctx, query, userID))
}

func scanAvatar(row *sql.Row) (*models.Avatar, error) {
	a := &models.Avatar{}
	if err := row.Scan(&a.UserID, &a.ContentType, &a.Data, &a.StorageKey, &a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}
