package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
)

// StoryPublisher publishes and lists stories. *service.StoryService implements it.
type StoryPublisher interface {
	CreateStory(ctx context.Context, authorID string, req *domain.CreateStoryRequest) (*domain.Story, error)
	ListActive(ctx context.Context, viewerID string) ([]*domain.Story, error)
	DeleteStory(ctx context.Context, userID, storyID string) error
}

// StoryHandler handles story endpoints
type StoryHandler struct {
	stories StoryPublisher
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(stories StoryPublisher) *StoryHandler {
	return &StoryHandler{stories: stories}
}

// CreateStory handles POST /api/v1/stories
func (h *StoryHandler) CreateStory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req domain.CreateStoryRequest
	if !bindJSON(c, &req) {
		return
	}

	story, err := h.stories.CreateStory(c.Request.Context(), userID, &req)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.CreatedResponse(c, story)
}

// ListStories handles GET /api/v1/stories
func (h *StoryHandler) ListStories(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	stories, err := h.stories.ListActive(c.Request.Context(), userID)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, stories, &common.Meta{Total: int64(len(stories))})
}

// DeleteStory handles DELETE /api/v1/stories/:id
func (h *StoryHandler) DeleteStory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.stories.DeleteStory(c.Request.Context(), userID, id); err != nil {
		common.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
