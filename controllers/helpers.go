package controllers

import (
	"strconv"

	"github.com/Govind-619/TripSphere/utils"
	"github.com/gin-gonic/gin"
)

// currentUser reads the caller set by the auth middleware, answering 401 when absent.
func currentUser(c *gin.Context) (uint, bool) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, utils.ErrUnauthorized)
		return 0, false
	}
	return userID, true
}

// idParam parses a positive numeric path parameter, answering 400 when invalid.
func idParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		utils.LogError("Invalid %s parameter: %q", name, raw)
		utils.BadRequest(c, "Invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}
