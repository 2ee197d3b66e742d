package repository

import (
	"context"
	"testing"

	"aurachat/internal/models"
	"aurachat/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")

	created, err := repo.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, created, "second follow is a no-op")

	_, err = repo.Follow(ctx, carol.ID, bob.ID)
	require.NoError(t, err)

	following, err := repo.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)
	following, err = repo.IsFollowing(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, following, "follows are one-directional")

	followers, err := repo.Followers(ctx, bob.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	for _, u := range followers {
		assert.Contains(t, []string{"alice", "carol"}, u.Username)
	}

	followed, err := repo.Following(ctx, alice.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, followed, 1)
	assert.Equal(t, "bob", followed[0].Username)
	assert.Equal(t, int64(2), followed[0].FollowersCount)

	removed, err := repo.Unfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.Unfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = repo.Follow(ctx, alice.ID, 999)
	requireAppCode(t, err, models.CodeNotFound)
}
