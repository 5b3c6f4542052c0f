package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/fleetdesk/fleetdesk-backend/errors"
)

// attachError records an error on the gin context for the error handler
// middleware to render.
func attachError(c *gin.Context, err error) {
	_ = c.Error(err)
}

// int64Param parses a numeric path parameter.
func int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		attachError(c, apperrors.ValidationFailed("invalid "+name, name+" must be an integer"))
		return 0, false
	}
	return id, true
}
