package avatars

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/projdash/internal/dbx"
	"github.com/dmitrijs2005/projdash/internal/server/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, a *models.Avatar) error {
	query :=
		`INSERT INTO avatars (user_id, content_type, data, storage_key, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		   content_type = excluded.content_type,
		   data = excluded.data,
		   storage_key = excluded.storage_key,
		   updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query, a.UserID, a.ContentType, a.Data, a.StorageKey, a.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, userID string) (*models.Avatar, error) {
	query :=
		`SELECT user_id, content_type, data, storage_key, updated_at
		 FROM avatars WHERE user_id = ?`

	return scanAvatar(r.db.QueryRowContext(ctx, query, userID))
}
