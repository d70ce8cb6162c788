package ginutil

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QueryInt extracts an integer from query parameters with default value.
// Malformed values fall back to the default.
func QueryInt(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// ParamUUID extracts a UUID path parameter in canonical form
func ParamUUID(c *gin.Context, key string) (string, bool) {
	id, err := uuid.Parse(c.Param(key))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// QueryUUID extracts a UUID query parameter in canonical form
func QueryUUID(c *gin.Context, key string) (string, bool) {
	id, err := uuid.Parse(c.Query(key))
	if err != nil {
		return "", false
	}
	return id.String(), true
}
