package repository

import (
	"context"
	"testing"
	"time"

	"aurachat/internal/models"
	"aurachat/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_CreateAndList(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice.ID, "post")
	require.NoError(t, db.Model(&models.UserProfile{}).Where("user_id = ?", bob.ID).Update("full_name", "Bob B").Error)

	older := &models.Comment{UserID: alice.ID, PostID: post.ID, Content: "first", CreatedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, repo.Create(ctx, older))
	newer := &models.Comment{UserID: bob.ID, PostID: post.ID, Content: "second"}
	require.NoError(t, repo.Create(ctx, newer))

	comments, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Content)
	assert.Equal(t, "Bob B", comments[0].AuthorName)
	assert.Equal(t, "bob", comments[0].AuthorUsername)
	assert.Equal(t, "alice", comments[1].AuthorName)

	got, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.UserID)

	empty, err := repo.ListByPost(ctx, 999)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	requireAppCode(t, repo.Create(ctx, &models.Comment{UserID: alice.ID, PostID: 999, Content: "x"}), models.CodeNotFound)
}

func TestCommentRepository_Delete(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice.ID, "post")
	comment := &models.Comment{UserID: alice.ID, PostID: post.ID, Content: "typo"}
	require.NoError(t, repo.Create(ctx, comment))

	got, err := repo.GetByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "typo", got.Content)

	require.NoError(t, repo.Delete(ctx, comment.ID))
	_, err = repo.GetByID(ctx, comment.ID)
	requireAppCode(t, err, models.CodeNotFound)
	requireAppCode(t, repo.Delete(ctx, comment.ID), models.CodeNotFound)
}
