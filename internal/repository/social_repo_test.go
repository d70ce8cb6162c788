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

func TestFollowRepository(t *testing.T) {
	repo := NewFollowRepository(setupTestDB(t))
	ctx := context.Background()

	created, err := repo.Follow(ctx, "me", "alice")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Follow(ctx, "me", "alice")
	require.NoError(t, err)
	assert.False(t, created, "second follow is a no-op")

	_, err = repo.Follow(ctx, "me", "bob")
	require.NoError(t, err)

	ids, err := repo.GetFolloweeIDs(ctx, "me")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, ids)

	followers, err := repo.GetFollowerIDs(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"me"}, followers)

	removed, err := repo.Unfollow(ctx, "me", "alice")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Unfollow(ctx, "me", "alice")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestBlockRepository(t *testing.T) {
	repo := NewBlockRepository(setupTestDB(t))
	ctx := context.Background()

	created, err := repo.Block(ctx, "me", "troll")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Block(ctx, "me", "troll")
	require.NoError(t, err)
	assert.False(t, created)

	ids, err := repo.GetBlockedUserIDs(ctx, "me")
	require.NoError(t, err)
	assert.Equal(t, []string{"troll"}, ids)

	removed, err := repo.Unblock(ctx, "me", "troll")
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestStoryRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStoryRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	stories := []*domain.Story{
		{ID: "s-old", UserID: "alice", MediaURL: "https://cdn/1.jpg", CreatedAt: now.Add(-3 * time.Hour), ExpiresAt: now.Add(21 * time.Hour)},
		{ID: "s-new", UserID: "alice", MediaURL: "https://cdn/2.jpg", CreatedAt: now.Add(-time.Hour), ExpiresAt: now.Add(23 * time.Hour)},
		{ID: "s-expired", UserID: "alice", MediaURL: "https://cdn/3.jpg", CreatedAt: now.Add(-25 * time.Hour), ExpiresAt: now.Add(-time.Hour)},
		{ID: "s-stranger", UserID: "stranger", MediaURL: "https://cdn/4.jpg", CreatedAt: now, ExpiresAt: now.Add(24 * time.Hour)},
	}
	for _, s := range stories {
		require.NoError(t, repo.Create(ctx, s))
	}

	active, err := repo.FetchActive(ctx, []string{"alice", "me"}, now, 20)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "s-new", active[0].ID)
	assert.Equal(t, "s-old", active[1].ID)

	deleted, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestPetRepository_SwipeCandidates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPetRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	seedPet(t, db, "me-1", "me", now.Add(-5*time.Hour))
	seedPet(t, db, "me-2", "me", now.Add(-4*time.Hour))
	seedPet(t, db, "seen", "alice", now.Add(-3*time.Hour))
	seedPet(t, db, "fresh-old", "bob", now.Add(-2*time.Hour))
	seedPet(t, db, "fresh-new", "carol", now.Add(-1*time.Hour))

	pets, err := repo.ListSwipeCandidates(ctx, CandidateQuery{
		PetID:         "me-1",
		OwnerID:       "me",
		ExcludePetIDs: []string{"seen"},
		Limit:         20,
	})
	require.NoError(t, err)

	ids := make([]string, len(pets))
	for i, p := range pets {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"fresh-new", "fresh-old"}, ids)

	owned, err := repo.ListByOwner(ctx, "me")
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	_, err = repo.FindByID(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrPetNotFound)
}

func TestFollowRepository_ListEdges(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	for i, follower := range []string{"a", "b", "c"} {
		edge := &domain.UserFollow{FollowerID: follower, FolloweeID: "star", CreatedAt: now.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, db.Create(edge).Error)
	}
	require.NoError(t, db.Create(&domain.UserFollow{FollowerID: "star", FolloweeID: "a", CreatedAt: now}).Error)

	first, total, err := repo.ListFollowers(ctx, "star", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, first, 2)
	assert.Equal(t, "c", first[0].FollowerID)
	assert.Equal(t, "b", first[1].FollowerID)

	rest, total, err := repo.ListFollowers(ctx, "star", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, rest, 1)
	assert.Equal(t, "a", rest[0].FollowerID)

	past, _, err := repo.ListFollowers(ctx, "star", 10, 2)
	require.NoError(t, err)
	assert.Empty(t, past)

	following, total, err := repo.ListFollowing(ctx, "star", 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, following, 1)
	assert.Equal(t, "a", following[0].FolloweeID)
}

func TestStoryRepository_FindAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStoryRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &domain.Story{ID: "s1", UserID: "alice", MediaURL: "https://cdn/1.jpg"}))

	story, err := repo.FindByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "alice", story.UserID)

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.FindByID(ctx, "s1")
	assert.ErrorIs(t, err, common.ErrStoryNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "s1"), common.ErrStoryNotFound)
}

func TestPetRepository_UpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPetRepository(db)
	ledger := NewMatchRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	seedPet(t, db, "rex", "me", now)
	seedPet(t, db, "fido", "alice", now)
	seedPet(t, db, "luna", "bob", now)

	require.NoError(t, repo.Update(ctx, "rex", map[string]interface{}{"name": "Rex II", "age": 0}))
	pet, err := repo.FindByID(ctx, "rex")
	require.NoError(t, err)
	assert.Equal(t, "Rex II", pet.Name)
	assert.ErrorIs(t, repo.Update(ctx, "ghost", map[string]interface{}{"name": "x"}), common.ErrPetNotFound)

	_, err = ledger.Create(ctx, "rex", "fido", domain.MatchStatusPending, nil)
	require.NoError(t, err)
	_, err = ledger.Create(ctx, "luna", "rex", domain.MatchStatusMatched, nil)
	require.NoError(t, err)
	_, err = ledger.Create(ctx, "fido", "luna", domain.MatchStatusPending, nil)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "rex"))

	_, err = repo.FindByID(ctx, "rex")
	assert.ErrorIs(t, err, common.ErrPetNotFound)
	left, err := ledger.FindAllInvolvingAny(ctx, []string{"rex", "fido", "luna"})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "fido|luna", left[0].PairKey)

	assert.ErrorIs(t, repo.Delete(ctx, "rex"), common.ErrPetNotFound)
}
