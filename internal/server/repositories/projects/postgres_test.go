package projects

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/projdash/internal/common"
	"github.com/dmitrijs2005/projdash/internal/server/models"
)

var projectCols = []string{"id", "user_id", "category", "sub_category", "name", "description", "link", "repo_link", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func str(s string) *string { return &s }

func TestPostgresCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	p := &models.Project{ID: "p1", UserID: "u1", Category: "web", Name: "site", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+projects\s*\(id,\s*user_id,.*\)\s*VALUES\s*\(\$1,.*\$10\)$`).
		WithArgs("p1", "u1", "web", "", "site", "", "", "", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := repo.Create(context.Background(), p)
	if err != nil || got.ID != "p1" {
		t.Fatalf("Create = %+v, %v", got, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresListByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+projects\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at,\s*id$`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("p1", "u1", "web", "api", "one", "d1", "", "", now, now).
			AddRow("p2", "u1", "ml", "", "two", "", "https://x", "https://git/x", now, now))

	got, err := repo.ListByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p1" || got[1].RepoLink != "https://git/x" {
		t.Fatalf("unexpected projects: %+v", got)
	}
}

func TestPostgresListByUser_EmptyIsNotNil(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT.*FROM\s+projects`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(projectCols))

	got, err := repo.ListByUser(context.Background(), "u1")
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("ListByUser = %#v, %v", got, err)
	}
}

func TestPostgresListByUser_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT.*FROM\s+projects`).WillReturnError(errors.New("boom"))

	_, err := repo.ListByUser(context.Background(), "u1")
	if err == nil || !regexp.MustCompile(`db error: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPostgresGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT.*FROM\s+projects\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestPostgresUpdate_PassesNilForUnsetFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Now().UTC()
	mock.ExpectExec(`(?s)^UPDATE\s+projects\s+SET.*COALESCE\(\$4,\s*name\).*updated_at\s*=\s*\$8\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("p1", nil, nil, "X", nil, nil, nil, at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Update(context.Background(), "p1", models.ProjectPatch{Name: str("X")}, at); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresUpdate_MissingIsNoop(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+projects`).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Update(context.Background(), "ghost", models.ProjectPatch{Name: str("X")}, time.Now()); err != nil {
		t.Fatalf("Update on missing id must not fail: %v", err)
	}
}

func TestPostgresDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE\s+FROM\s+projects\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`^DELETE\s+FROM\s+projects`).
		WithArgs("p2").
		WillReturnError(errors.New("locked"))

	if err := repo.Delete(context.Background(), "p1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	err := repo.Delete(context.Background(), "p2")
	if err == nil || !regexp.MustCompile(`db error: .*locked`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
