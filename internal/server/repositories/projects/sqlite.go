package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *SQLiteRepository) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	query :=
		`INSERT INTO projects (id, user_id, category, sub_category, name, description, link, repo_link, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.Category, p.SubCategory, p.Name, p.Description, p.Link, p.RepoLink,
		p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

// ListByUser orders by insertion (rowid) within equal timestamps.
func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string) ([]models.Project, error) {
	query :=
		`SELECT id, user_id, category, sub_category, name, description, link, repo_link, created_at, updated_at
		 FROM projects WHERE user_id = ?
		 ORDER BY created_at, rowid`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return scanProjects(rows)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query :=
		`SELECT id, user_id, category, sub_category, name, description, link, repo_link, created_at, updated_at
		 FROM projects WHERE id = ?`

	p := &models.Project{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(projectFields(p)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id string, patch models.ProjectPatch, updatedAt time.Time) error {
	query :=
		`UPDATE projects SET
		   category = COALESCE(?, category),
		   sub_category = COALESCE(?, sub_category),
		   name = COALESCE(?, name),
		   description = COALESCE(?, description),
		   link = COALESCE(?, link),
		   repo_link = COALESCE(?, repo_link),
		   updated_at = ?
		 WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query,
		nullable(patch.Category), nullable(patch.SubCategory), nullable(patch.Name),
		nullable(patch.Description), nullable(patch.Link), nullable(patch.RepoLink),
		updatedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
