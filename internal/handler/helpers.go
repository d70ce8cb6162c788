package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/middleware"
	"github.com/pawmatch/pawmatch-backend/pkg/ginutil"
)

// requireUser returns the authenticated user id or writes a 401
func requireUser(c *gin.Context) (string, bool) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "login required", nil)
		return "", false
	}
	return userID, true
}

// pathID returns a uuid path parameter or writes a 400
func pathID(c *gin.Context, key string) (string, bool) {
	id, ok := ginutil.ParamUUID(c, key)
	if !ok {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid "+key, nil)
		return "", false
	}
	return id, true
}

// bindJSON decodes the body or writes a 400
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return false
	}
	return true
}
