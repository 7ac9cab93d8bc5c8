package users

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/projdash/internal/common"
	"github.com/dmitrijs2005/projdash/internal/server/models"
	"github.com/dmitrijs2005/projdash/internal/server/repositories/sqltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLite_CreateAndLookup(t *testing.T) {
	repo := NewSQLiteRepository(sqltest.OpenSQLite(t))
	ctx := context.Background()

	u := sampleUser()
	_, err := repo.Create(ctx, u)
	require.NoError(t, err)

	byLogin, err := repo.GetUserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byLogin.ID)
	assert.Equal(t, u.PasswordSalt, byLogin.PasswordSalt)
	assert.Equal(t, u.PasswordHash, byLogin.PasswordHash)
	assert.Equal(t, "Alice", byLogin.DisplayName)
	assert.Equal(t, "ACME", byLogin.Affiliation)
	assert.Equal(t, "t1", byLogin.TeamID)
	assert.Equal(t, models.ModeTeam, byLogin.Mode)
	assert.True(t, u.CreatedAt.Equal(byLogin.CreatedAt), "created_at %v != %v", u.CreatedAt, byLogin.CreatedAt)

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Login)
}

func TestSQLite_DuplicateLoginLeavesStoreUnchanged(t *testing.T) {
	repo := NewSQLiteRepository(sqltest.OpenSQLite(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, sampleUser())
	require.NoError(t, err)

	dup := sampleUser()
	dup.ID = "u-2"
	dup.DisplayName = "Impostor"
	_, err = repo.Create(ctx, dup)
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	got, err := repo.GetUserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, "Alice", got.DisplayName)

	_, err = repo.GetByID(ctx, "u-2")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSQLite_NotFound(t *testing.T) {
	repo := NewSQLiteRepository(sqltest.OpenSQLite(t))

	_, err := repo.GetUserByLogin(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSQLite_CreatedAtRoundTrip(t *testing.T) {
	repo := NewSQLiteRepository(sqltest.OpenSQLite(t))
	ctx := context.Background()

	u := sampleUser()
	u.CreatedAt = time.Date(2025, 6, 1, 12, 0, 0, 123456000, time.FixedZone("X", 3*3600))
	_, err := repo.Create(ctx, u)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))
}
