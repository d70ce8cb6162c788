package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"github.com/pawmatch/pawmatch-backend/pkg/ginutil"
)

// MatchWorkflow is the swipe reconciler and match ledger API.
// *service.MatchService implements it.
type MatchWorkflow interface {
	Swipe(ctx context.Context, userID string, req domain.SwipeRequest) (*domain.MatchRecord, error)
	GetSwipeCandidates(ctx context.Context, userID, petID string) ([]*domain.Pet, error)
	RequestMatch(ctx context.Context, userID string, req domain.CreateMatchRequest) (*domain.MatchRecord, error)
	ListUserMatches(ctx context.Context, userID string) ([]*domain.MatchRecord, error)
	GetMatch(ctx context.Context, userID, matchID string) (*domain.MatchRecord, error)
	UpdateMatchStatus(ctx context.Context, userID, matchID string, status domain.MatchStatus) (*domain.MatchRecord, error)
}

// MatchHandler handles swiping and match records
type MatchHandler struct {
	matches MatchWorkflow
}

// NewMatchHandler creates a new MatchHandler
func NewMatchHandler(matches MatchWorkflow) *MatchHandler {
	return &MatchHandler{matches: matches}
}

// Swipe handles POST /api/v1/matches/swipe
func (h *MatchHandler) Swipe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req domain.SwipeRequest
	if !bindJSON(c, &req) {
		return
	}

	rec, err := h.matches.Swipe(c.Request.Context(), userID, req)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.CreatedResponse(c, rec)
}

// GetSwipeCandidates handles GET /api/v1/matches/swipe/candidates?petId
func (h *MatchHandler) GetSwipeCandidates(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	petID, ok := ginutil.QueryUUID(c, "petId")
	if !ok {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid petId", nil)
		return
	}

	pets, err := h.matches.GetSwipeCandidates(c.Request.Context(), userID, petID)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, pets, &common.Meta{Total: int64(len(pets))})
}

// RequestMatch handles POST /api/v1/matches
func (h *MatchHandler) RequestMatch(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req domain.CreateMatchRequest
	if !bindJSON(c, &req) {
		return
	}

	rec, err := h.matches.RequestMatch(c.Request.Context(), userID, req)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.CreatedResponse(c, rec)
}

// ListMatches handles GET /api/v1/matches
func (h *MatchHandler) ListMatches(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	recs, err := h.matches.ListUserMatches(c.Request.Context(), userID)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, recs, &common.Meta{Total: int64(len(recs))})
}

// GetMatch handles GET /api/v1/matches/:id
func (h *MatchHandler) GetMatch(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	matchID, ok := pathID(c, "id")
	if !ok {
		return
	}

	rec, err := h.matches.GetMatch(c.Request.Context(), userID, matchID)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, rec, nil)
}

// UpdateMatchStatus handles PATCH /api/v1/matches/:id
func (h *MatchHandler) UpdateMatchStatus(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	matchID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req domain.UpdateMatchStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	rec, err := h.matches.UpdateMatchStatus(c.Request.Context(), userID, matchID, req.Status)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.APIResponse{Data: rec})
}
