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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	query :=
		`INSERT INTO projects (id, user_id, category, sub_category, name, description, link, repo_link, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.Category, p.SubCategory, p.Name, p.Description, p.Link, p.RepoLink, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.Project, error) {
	query :=
		`SELECT id, user_id, category, sub_category, name, description, link, repo_link, created_at, updated_at
		 FROM projects WHERE user_id = $1
		 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return scanProjects(rows)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query :=
		`SELECT id, user_id, category, sub_category, name, description, link, repo_link, created_at, updated_at
		 FROM projects WHERE id = $1`

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

func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.ProjectPatch, updatedAt time.Time) error {
	query :=
		`UPDATE projects SET
		   category = COALESCE($2, category),
		   sub_category = COALESCE($3, sub_category),
		   name = COALESCE($4, name),
		   description = COALESCE($5, description),
		   link = COALESCE($6, link),
		   repo_link = COALESCE($7, repo_link),
		   updated_at = $8
		 WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id,
		nullable(patch.Category), nullable(patch.SubCategory), nullable(patch.Name),
		nullable(patch.Description), nullable(patch.Link), nullable(patch.RepoLink), updatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM projects WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func projectFields(p *models.Project) []any {
	return []any{&p.ID, &p.UserID, &p.Category, &p.SubCategory, &p.Name, &p.Description,
		&p.Link, &p.RepoLink, &p.CreatedAt, &p.UpdatedAt}
}

func scanProjects(rows *sql.Rows) ([]models.Project, error) {
	result := make([]models.Project, 0)
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(projectFields(&p)...); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
