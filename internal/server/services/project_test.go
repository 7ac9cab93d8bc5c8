package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/projdash/internal/common"
	"github.com/dmitrijs2005/projdash/internal/server/config"
	"github.com/dmitrijs2005/projdash/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestProjects_CreateListScoped(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	alice, bob := register(t, e, "alice"), register(t, e, "bob")

	p, err := e.projects.Create(ctx, alice, ProjectFields{Category: "web", Name: "site", Link: "not a url"})
	require.NoError(t, err)
	assert.Equal(t, alice, p.UserID)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	mine, err := e.projects.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, p.ID, mine[0].ID)
	assert.Equal(t, "not a url", mine[0].Link, "links are not validated")

	theirs, err := e.projects.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestProjects_DuplicateNamesAllowed(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	alice := register(t, e, "alice")

	a, err := e.projects.Create(ctx, alice, ProjectFields{Name: "same"})
	require.NoError(t, err)
	b, err := e.projects.Create(ctx, alice, ProjectFields{Name: "same"})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	list, err := e.projects.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestProjects_UpdateChangesOnlyName(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	alice := register(t, e, "alice")

	p, err := e.projects.Create(ctx, alice, ProjectFields{Category: "web", SubCategory: "api", Name: "old", Description: "d", Link: "l", RepoLink: "r"})
	require.NoError(t, err)

	later := p.CreatedAt.Add(time.Hour)
	orig := now
	now = func() time.Time { return later }
	defer func() { now = orig }()

	require.NoError(t, e.projects.Update(ctx, alice, p.ID, models.ProjectPatch{Name: ptr("X")}))

	list, err := e.projects.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)

	want := *p
	want.Name = "X"
	want.UpdatedAt = later
	assert.Equal(t, want.Category, list[0].Category)
	assert.Equal(t, want.SubCategory, list[0].SubCategory)
	assert.Equal(t, want.Name, list[0].Name)
	assert.Equal(t, want.Description, list[0].Description)
	assert.Equal(t, want.Link, list[0].Link)
	assert.Equal(t, want.RepoLink, list[0].RepoLink)
	assert.True(t, want.CreatedAt.Equal(list[0].CreatedAt))
	assert.True(t, later.Equal(list[0].UpdatedAt))
}

func TestProjects_MissingIDsAreSilent(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	alice := register(t, e, "alice")
	_, err := e.projects.Create(ctx, alice, ProjectFields{Name: "keep"})
	require.NoError(t, err)

	require.NoError(t, e.projects.Update(ctx, alice, "missing", models.ProjectPatch{Name: ptr("X")}))
	require.NoError(t, e.projects.Delete(ctx, alice, "missing"))

	list, err := e.projects.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "keep", list[0].Name)
}

func TestProjects_Delete(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	alice := register(t, e, "alice")
	p, err := e.projects.Create(ctx, alice, ProjectFields{Name: "gone"})
	require.NoError(t, err)

	require.NoError(t, e.projects.Delete(ctx, alice, p.ID))

	list, err := e.projects.List(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProjects_Ownership(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	alice, bob := register(t, e, "alice"), register(t, e, "bob")
	p, err := e.projects.Create(ctx, alice, ProjectFields{Name: "mine"})
	require.NoError(t, err)

	require.ErrorIs(t, e.projects.Update(ctx, bob, p.ID, models.ProjectPatch{Name: ptr("stolen")}), common.ErrorForbidden)
	require.ErrorIs(t, e.projects.Delete(ctx, bob, p.ID), common.ErrorForbidden)

	list, err := e.projects.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "mine", list[0].Name)

	// unscoped (admin) access
	require.NoError(t, e.projects.Update(ctx, "", p.ID, models.ProjectPatch{Name: ptr("renamed")}))
	require.NoError(t, e.projects.Delete(ctx, "", p.ID))
	list, err = e.projects.List(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProjects_AllowedCategories(t *testing.T) {
	e := newEnv(t, nil, func(c *config.Config) { c.AllowedCategories = []string{"web", "ml"} })
	ctx := context.Background()
	alice := register(t, e, "alice")

	_, err := e.projects.Create(ctx, alice, ProjectFields{Category: "games"})
	require.ErrorIs(t, err, common.ErrorInvalidCategory)

	p, err := e.projects.Create(ctx, alice, ProjectFields{Category: "ml"})
	require.NoError(t, err)

	err = e.projects.Update(ctx, alice, p.ID, models.ProjectPatch{Category: ptr("games")})
	require.ErrorIs(t, err, common.ErrorInvalidCategory)

	require.NoError(t, e.projects.Update(ctx, alice, p.ID, models.ProjectPatch{Category: ptr("web")}))
	assert.Equal(t, []string{"web", "ml"}, e.projects.AllowedCategories())
}

func TestProjects_FreeTextCategoryByDefault(t *testing.T) {
	e := newEnv(t, nil)
	_, err := e.projects.Create(context.Background(), "u1", ProjectFields{Category: "anything at all"})
	require.NoError(t, err)
}

func TestProjects_ExportPDF(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	alice := register(t, e, "alice")
	_, err := e.projects.Create(ctx, alice, ProjectFields{Name: "report me"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, e.projects.ExportPDF(ctx, alice, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	err = e.projects.ExportPDF(ctx, "ghost", &buf)
	require.ErrorIs(t, err, common.ErrorNotFound)
}
