package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"github.com/pawmatch/pawmatch-backend/pkg/ginutil"
)

// SocialGraph edits follow and block edges. *service.SocialService implements it.
type SocialGraph interface {
	Follow(ctx context.Context, userID, targetID string) error
	Unfollow(ctx context.Context, userID, targetID string) error
	Block(ctx context.Context, userID, targetID string) error
	Unblock(ctx context.Context, userID, targetID string) error
	ListFollowers(ctx context.Context, userID string, page, limit int) (*domain.FollowPage, error)
	ListFollowing(ctx context.Context, userID string, page, limit int) (*domain.FollowPage, error)
}

// SocialHandler handles follow and block endpoints. User ids are opaque
// strings issued by the identity provider, so they are not parsed.
type SocialHandler struct {
	graph SocialGraph
}

// NewSocialHandler creates a new SocialHandler
func NewSocialHandler(graph SocialGraph) *SocialHandler {
	return &SocialHandler{graph: graph}
}

// Follow handles POST /api/v1/users/:id/follow
func (h *SocialHandler) Follow(c *gin.Context) {
	h.edge(c, h.graph.Follow, gin.H{"following": true})
}

// Unfollow handles DELETE /api/v1/users/:id/follow
func (h *SocialHandler) Unfollow(c *gin.Context) {
	h.edge(c, h.graph.Unfollow, nil)
}

// Block handles POST /api/v1/users/:id/block
func (h *SocialHandler) Block(c *gin.Context) {
	h.edge(c, h.graph.Block, gin.H{"blocked": true})
}

// Unblock handles DELETE /api/v1/users/:id/block
func (h *SocialHandler) Unblock(c *gin.Context) {
	h.edge(c, h.graph.Unblock, nil)
}

// Followers handles GET /api/v1/users/:id/followers?page&limit
func (h *SocialHandler) Followers(c *gin.Context) {
	h.edges(c, h.graph.ListFollowers)
}

// Following handles GET /api/v1/users/:id/following?page&limit
func (h *SocialHandler) Following(c *gin.Context) {
	h.edges(c, h.graph.ListFollowing)
}

func (h *SocialHandler) edges(c *gin.Context, list func(ctx context.Context, userID string, page, limit int) (*domain.FollowPage, error)) {
	if _, ok := requireUser(c); !ok {
		return
	}

	page, err := list(c.Request.Context(), c.Param("id"), ginutil.QueryInt(c, "page", 1), ginutil.QueryInt(c, "limit", 0))
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, page.Edges, &common.Meta{Page: page.Page, Limit: page.Limit, Total: page.Total})
}

// edge applies edit and answers 200 with body when body is set, otherwise 204
func (h *SocialHandler) edge(c *gin.Context, edit func(ctx context.Context, userID, targetID string) error, body gin.H) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	targetID := c.Param("id")

	if err := edit(c.Request.Context(), userID, targetID); err != nil {
		common.HandleError(c, err)
		return
	}
	if body == nil {
		c.Status(http.StatusNoContent)
		return
	}
	body["userId"] = targetID
	c.JSON(http.StatusOK, common.APIResponse{Data: body})
}
