package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	postUUID  = "0b6c7c5e-8f43-4a4e-9d2b-1c0f6f1a0a04"
	storyUUID = "0b6c7c5e-8f43-4a4e-9d2b-1c0f6f1a0a05"
)

type mockPosts struct{ mock.Mock }

func (m *mockPosts) CreatePost(ctx context.Context, authorID string, req *domain.CreatePostRequest) (*domain.Post, error) {
	args := m.Called(ctx, authorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *mockPosts) GetPost(ctx context.Context, viewerID, postID string) (*domain.Post, error) {
	args := m.Called(ctx, viewerID, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *mockPosts) UpdatePost(ctx context.Context, userID, postID string, req *domain.UpdatePostRequest) (*domain.Post, error) {
	args := m.Called(ctx, userID, postID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *mockPosts) DeletePost(ctx context.Context, userID, postID string) error {
	return m.Called(ctx, userID, postID).Error(0)
}

func (m *mockPosts) SponsorPost(ctx context.Context, userID, postID string, days int) (*domain.Post, error) {
	args := m.Called(ctx, userID, postID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *mockPosts) ToggleLike(ctx context.Context, userID, postID string) (*domain.LikeToggleResult, error) {
	args := m.Called(ctx, userID, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LikeToggleResult), args.Error(1)
}

func (m *mockPosts) AddComment(ctx context.Context, userID, postID string, req *domain.CreateCommentRequest) (*domain.PostComment, error) {
	args := m.Called(ctx, userID, postID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostComment), args.Error(1)
}

func (m *mockPosts) ListComments(ctx context.Context, viewerID, postID string, limit int) ([]*domain.PostComment, error) {
	args := m.Called(ctx, viewerID, postID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PostComment), args.Error(1)
}

type mockPets struct{ mock.Mock }

func (m *mockPets) CreatePet(ctx context.Context, ownerID string, req *domain.CreatePetRequest) (*domain.Pet, error) {
	args := m.Called(ctx, ownerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pet), args.Error(1)
}

func (m *mockPets) ListMyPets(ctx context.Context, ownerID string) ([]*domain.Pet, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Pet), args.Error(1)
}

func (m *mockPets) GetPet(ctx context.Context, id string) (*domain.Pet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pet), args.Error(1)
}

func (m *mockPets) UpdatePet(ctx context.Context, ownerID, petID string, req *domain.UpdatePetRequest) (*domain.Pet, error) {
	args := m.Called(ctx, ownerID, petID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pet), args.Error(1)
}

func (m *mockPets) DeletePet(ctx context.Context, ownerID, petID string) error {
	return m.Called(ctx, ownerID, petID).Error(0)
}

type mockStories struct{ mock.Mock }

func (m *mockStories) CreateStory(ctx context.Context, authorID string, req *domain.CreateStoryRequest) (*domain.Story, error) {
	args := m.Called(ctx, authorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Story), args.Error(1)
}

func (m *mockStories) ListActive(ctx context.Context, viewerID string) ([]*domain.Story, error) {
	args := m.Called(ctx, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Story), args.Error(1)
}

func (m *mockStories) DeleteStory(ctx context.Context, userID, storyID string) error {
	return m.Called(ctx, userID, storyID).Error(0)
}

// --- posts ---

func TestPostHandler_UpdatePost(t *testing.T) {
	posts := new(mockPosts)
	h := NewPostHandler(posts)
	r := authedRouter(func(g gin.IRoutes) { g.PATCH("/posts/:id", h.UpdatePost) })
	posts.On("UpdatePost", mock.Anything, "alice", postUUID, mock.MatchedBy(func(req *domain.UpdatePostRequest) bool {
		return req.Content != nil && *req.Content == "edited" && req.Visibility == nil
	})).Return(&domain.Post{ID: postUUID, Content: "edited"}, nil)
	posts.On("UpdatePost", mock.Anything, "bob", postUUID, mock.Anything).Return(nil, common.ErrPostNotOwned)

	w := do(t, r, http.MethodPatch, "/api/v1/posts/"+postUUID, "alice", gin.H{"content": "edited"})
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data domain.Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "edited", body.Data.Content)

	w = do(t, r, http.MethodPatch, "/api/v1/posts/"+postUUID, "bob", gin.H{"content": "mine now"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, w))
}

func TestPostHandler_DeletePost(t *testing.T) {
	posts := new(mockPosts)
	h := NewPostHandler(posts)
	r := authedRouter(func(g gin.IRoutes) { g.DELETE("/posts/:id", h.DeletePost) })
	posts.On("DeletePost", mock.Anything, "alice", postUUID).Return(nil).Once()
	posts.On("DeletePost", mock.Anything, "alice", postUUID).Return(common.ErrPostNotFound).Once()

	assert.Equal(t, http.StatusNoContent, do(t, r, http.MethodDelete, "/api/v1/posts/"+postUUID, "alice", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, "/api/v1/posts/"+postUUID, "alice", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodDelete, "/api/v1/posts/nope", "alice", nil).Code)
}

func TestPostHandler_SponsorPost(t *testing.T) {
	posts := new(mockPosts)
	h := NewPostHandler(posts)
	r := authedRouter(func(g gin.IRoutes) { g.POST("/posts/:id/sponsor", h.SponsorPost) })
	end := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)
	posts.On("SponsorPost", mock.Anything, "alice", postUUID, 0).Return(&domain.Post{ID: postUUID, IsSponsored: true, SponsorshipEndAt: &end}, nil)
	posts.On("SponsorPost", mock.Anything, "alice", postUUID, 14).Return(&domain.Post{ID: postUUID, IsSponsored: true, SponsorshipEndAt: &end}, nil)

	w := do(t, r, http.MethodPost, "/api/v1/posts/"+postUUID+"/sponsor", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data domain.Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Data.IsSponsored)

	w = do(t, r, http.MethodPost, "/api/v1/posts/"+postUUID+"/sponsor", "alice", gin.H{"days": 14})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/posts/"+postUUID+"/sponsor", "alice", gin.H{"days": 90})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	posts.AssertNumberOfCalls(t, "SponsorPost", 2)
}

// --- pets ---

func TestPetHandler_UpdateAndDelete(t *testing.T) {
	pets := new(mockPets)
	h := NewPetHandler(pets)
	r := authedRouter(func(g gin.IRoutes) {
		g.PATCH("/pets/:id", h.UpdatePet)
		g.DELETE("/pets/:id", h.DeletePet)
	})
	pets.On("UpdatePet", mock.Anything, "alice", petA, mock.MatchedBy(func(req *domain.UpdatePetRequest) bool {
		return req.Age != nil && *req.Age == 4 && req.Name == nil
	})).Return(&domain.Pet{ID: petA, Age: 4}, nil)
	pets.On("DeletePet", mock.Anything, "bob", petA).Return(common.ErrPetNotOwned)
	pets.On("DeletePet", mock.Anything, "alice", petA).Return(nil)

	w := do(t, r, http.MethodPatch, "/api/v1/pets/"+petA, "alice", gin.H{"age": 4})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPatch, "/api/v1/pets/"+petA, "alice", gin.H{"gender": "dragon"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusForbidden, do(t, r, http.MethodDelete, "/api/v1/pets/"+petA, "bob", nil).Code)
	assert.Equal(t, http.StatusNoContent, do(t, r, http.MethodDelete, "/api/v1/pets/"+petA, "alice", nil).Code)
	pets.AssertNumberOfCalls(t, "UpdatePet", 1)
}

// --- stories ---

func TestStoryHandler_ListAndDelete(t *testing.T) {
	stories := new(mockStories)
	h := NewStoryHandler(stories)
	r := authedRouter(func(g gin.IRoutes) {
		g.GET("/stories", h.ListStories)
		g.DELETE("/stories/:id", h.DeleteStory)
	})
	stories.On("ListActive", mock.Anything, "alice").Return([]*domain.Story{{ID: storyUUID, UserID: "bob"}}, nil)
	stories.On("DeleteStory", mock.Anything, "alice", storyUUID).Return(common.ErrStoryNotOwned)
	stories.On("DeleteStory", mock.Anything, "bob", storyUUID).Return(nil)

	w := do(t, r, http.MethodGet, "/api/v1/stories", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []domain.Story `json:"data"`
		Meta common.Meta    `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.Meta.Total)
	assert.Equal(t, storyUUID, body.Data[0].ID)

	assert.Equal(t, http.StatusForbidden, do(t, r, http.MethodDelete, "/api/v1/stories/"+storyUUID, "alice", nil).Code)
	assert.Equal(t, http.StatusNoContent, do(t, r, http.MethodDelete, "/api/v1/stories/"+storyUUID, "bob", nil).Code)
}
