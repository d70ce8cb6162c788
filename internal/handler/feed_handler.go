package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"github.com/pawmatch/pawmatch-backend/pkg/ginutil"
)

// FeedReader serves feed pages. *service.FeedService implements it.
type FeedReader interface {
	GetFeed(ctx context.Context, viewerID string, page, limit int) (*domain.FeedResponse, error)
}

// FeedHandler handles the personalized feed
type FeedHandler struct {
	feed FeedReader
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feed FeedReader) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// GetFeed handles GET /api/v1/feed?page&limit
func (h *FeedHandler) GetFeed(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	// out of range values are normalized by the service
	page := ginutil.QueryInt(c, "page", 1)
	limit := ginutil.QueryInt(c, "limit", 0)

	resp, err := h.feed.GetFeed(c.Request.Context(), userID, page, limit)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, resp, nil)
}
