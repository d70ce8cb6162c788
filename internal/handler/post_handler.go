package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"github.com/pawmatch/pawmatch-backend/pkg/ginutil"
)

// PostStore is the post authoring and engagement API.
// *service.PostService implements it.
type PostStore interface {
	CreatePost(ctx context.Context, authorID string, req *domain.CreatePostRequest) (*domain.Post, error)
	GetPost(ctx context.Context, viewerID, postID string) (*domain.Post, error)
	UpdatePost(ctx context.Context, userID, postID string, req *domain.UpdatePostRequest) (*domain.Post, error)
	DeletePost(ctx context.Context, userID, postID string) error
	SponsorPost(ctx context.Context, userID, postID string, days int) (*domain.Post, error)
	ToggleLike(ctx context.Context, userID, postID string) (*domain.LikeToggleResult, error)
	AddComment(ctx context.Context, userID, postID string, req *domain.CreateCommentRequest) (*domain.PostComment, error)
	ListComments(ctx context.Context, viewerID, postID string, limit int) ([]*domain.PostComment, error)
}

// PostHandler handles post endpoints
type PostHandler struct {
	posts PostStore
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts PostStore) *PostHandler {
	return &PostHandler{posts: posts}
}

// CreatePost handles POST /api/v1/posts
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req domain.CreatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), userID, &req)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.CreatedResponse(c, post)
}

// GetPost handles GET /api/v1/posts/:id
func (h *PostHandler) GetPost(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	post, err := h.posts.GetPost(c.Request.Context(), userID, postID)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, post, nil)
}

// UpdatePost handles PATCH /api/v1/posts/:id
func (h *PostHandler) UpdatePost(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req domain.UpdatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.posts.UpdatePost(c.Request.Context(), userID, postID, &req)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, post, nil)
}

// DeletePost handles DELETE /api/v1/posts/:id
func (h *PostHandler) DeletePost(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.posts.DeletePost(c.Request.Context(), userID, postID); err != nil {
		common.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SponsorPost handles POST /api/v1/posts/:id/sponsor. The body is optional.
func (h *PostHandler) SponsorPost(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req domain.SponsorPostRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	post, err := h.posts.SponsorPost(c.Request.Context(), userID, postID, req.Days)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, post, nil)
}

// ToggleLike handles POST /api/v1/posts/:id/like
func (h *PostHandler) ToggleLike(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.posts.ToggleLike(c.Request.Context(), userID, postID)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, result, nil)
}

// AddComment handles POST /api/v1/posts/:id/comments
func (h *PostHandler) AddComment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req domain.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.posts.AddComment(c.Request.Context(), userID, postID, &req)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.CreatedResponse(c, comment)
}

// ListComments handles GET /api/v1/posts/:id/comments?limit
func (h *PostHandler) ListComments(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}

	comments, err := h.posts.ListComments(c.Request.Context(), userID, postID, ginutil.QueryInt(c, "limit", 0))
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, comments, &common.Meta{Total: int64(len(comments))})
}
