package repository

import (
	"context"
	"testing"
	"time"

	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeToggle_IsDeterministic(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()
	seedPost(t, db, domain.Post{ID: "p1", UserID: "author", CreatedAt: time.Now().UTC()})

	res, authorID, err := repo.Toggle(ctx, "p1", "fan")
	require.NoError(t, err)
	assert.Equal(t, "author", authorID)
	assert.True(t, res.Liked)
	assert.Equal(t, 1, res.LikeCount)

	res, _, err = repo.Toggle(ctx, "p1", "fan")
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, 0, res.LikeCount)

	res, _, err = repo.Toggle(ctx, "p1", "fan")
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, 1, res.LikeCount)
}

func TestLikeToggle_CounterNeverNegative(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()
	seedPost(t, db, domain.Post{ID: "p1", UserID: "author", CreatedAt: time.Now().UTC()})
	// like row without a counted like, e.g. after a manual counter reset
	require.NoError(t, db.Create(&domain.PostLike{PostID: "p1", UserID: "fan"}).Error)

	res, _, err := repo.Toggle(ctx, "p1", "fan")

	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, 0, res.LikeCount)
}

func TestLikeToggle_MissingPost(t *testing.T) {
	repo := NewLikeRepository(setupTestDB(t))

	_, _, err := repo.Toggle(context.Background(), "missing", "fan")

	assert.ErrorIs(t, err, common.ErrPostNotFound)
}

func TestCommentCreate_BumpsCounter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	seedPost(t, db, domain.Post{ID: "p1", UserID: "author", CreatedAt: time.Now().UTC()})

	authorID, err := repo.Create(ctx, &domain.PostComment{PostID: "p1", UserID: "fan", Content: "cute!"})
	require.NoError(t, err)
	assert.Equal(t, "author", authorID)

	var post domain.Post
	require.NoError(t, db.First(&post, "id = ?", "p1").Error)
	assert.Equal(t, 1, post.CommentsCount)

	comments, err := repo.ListByPost(ctx, "p1", 10)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	_, err = repo.Create(ctx, &domain.PostComment{PostID: "missing", UserID: "fan", Content: "?"})
	assert.ErrorIs(t, err, common.ErrPostNotFound)
}

func TestInteractions_UnionOfLikesAndComments(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInteractionRepository(db)
	now := time.Now().UTC()

	require.NoError(t, db.Create(&domain.PostLike{PostID: "liked", UserID: "me"}).Error)
	require.NoError(t, db.Create(&domain.PostComment{PostID: "commented", UserID: "me", Content: "a"}).Error)
	require.NoError(t, db.Create(&domain.PostComment{PostID: "commented", UserID: "me", Content: "b"}).Error)
	require.NoError(t, db.Create(&domain.PostLike{PostID: "other", UserID: "someone"}).Error)
	require.NoError(t, db.Create(&domain.PostLike{PostID: "old", UserID: "me", CreatedAt: now.Add(-30 * 24 * time.Hour)}).Error)

	ids, err := repo.GetLikedOrCommentedPostIDs(context.Background(), "me", now.Add(-7*24*time.Hour))

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"liked", "commented"}, ids.Slice())
}
