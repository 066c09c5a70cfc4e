package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tripsketch/tripsketch-backend/middleware"
	"github.com/tripsketch/tripsketch-backend/services"
)

// FollowHandler adapts the follow graph endpoints onto the follow service.
type FollowHandler struct {
	followService *services.FollowService
}

// NewFollowHandler creates a FollowHandler.
func NewFollowHandler(followService *services.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// FollowUserHandler handles POST /v1/users/:nickname/follow.
func (h *FollowHandler) FollowUserHandler(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	if err := h.followService.Follow(c.Request.Context(), email, c.Param("nickname")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Now following", "isFollowing": true})
}

// UnfollowUserHandler handles DELETE /v1/users/:nickname/follow.
func (h *FollowHandler) UnfollowUserHandler(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	if err := h.followService.Unfollow(c.Request.Context(), email, c.Param("nickname")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed", "isFollowing": false})
}
