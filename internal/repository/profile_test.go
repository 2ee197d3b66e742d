package repository

import (
	"context"
	"testing"

	"aurachat/internal/models"
	"aurachat/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRepository_CreatesMissingProfile(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	user := &models.User{Username: "bare", Email: "bare@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)

	profile, err := repo.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.UserID)
	assert.Equal(t, models.ThemeLight, profile.ThemePreference)
	assert.Equal(t, models.VisibilityPublic, profile.ProfileVisibility)

	again, err := repo.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)

	_, err = repo.GetByUserID(ctx, 999)
	requireAppCode(t, err, models.CodeNotFound)
}

func TestProfileRepository_UpdateAndAvatar(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	updated, err := repo.Update(ctx, alice.ID, map[string]interface{}{
		"bio":              "hello",
		"theme_preference": models.ThemeDark,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Bio)
	assert.Equal(t, models.ThemeDark, updated.ThemePreference)

	_, _, err = repo.GetAvatar(ctx, alice.ID)
	requireAppCode(t, err, models.CodeNotFound)

	require.NoError(t, repo.SetAvatar(ctx, alice.ID, []byte{0xff, 0xd8, 0xff}, "image/jpeg"))
	data, mime, err := repo.GetAvatar(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, data)
	assert.Equal(t, "image/jpeg", mime)

	profile, err := repo.GetByUserID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AvatarPath(alice.ID), profile.AvatarURL)

	require.NoError(t, repo.ClearAvatar(ctx, alice.ID))
	_, _, err = repo.GetAvatar(ctx, alice.ID)
	requireAppCode(t, err, models.CodeNotFound)
}
