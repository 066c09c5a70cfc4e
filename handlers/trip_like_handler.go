package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tripsketch/tripsketch-backend/middleware"
	"github.com/tripsketch/tripsketch-backend/services"
)

// TripLikeHandler adapts the like/unlike/toggle endpoints onto the like
// service.
type TripLikeHandler struct {
	likeService *services.TripLikeService
}

// NewTripLikeHandler creates a TripLikeHandler.
func NewTripLikeHandler(likeService *services.TripLikeService) *TripLikeHandler {
	return &TripLikeHandler{likeService: likeService}
}

// LikeTripHandler handles POST /v1/trips/:id/like.
func (h *TripLikeHandler) LikeTripHandler(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	if err := h.likeService.LikeTrip(c.Request.Context(), email, c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trip liked", "isLiked": true})
}

// UnlikeTripHandler handles POST /v1/trips/:id/unlike.
func (h *TripLikeHandler) UnlikeTripHandler(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	if err := h.likeService.UnlikeTrip(c.Request.Context(), email, c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trip unliked", "isLiked": false})
}

// ToggleTripLikeHandler handles POST /v1/trips/:id/toggle-like and reports
// the resulting state.
func (h *TripLikeHandler) ToggleTripLikeHandler(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	liked, err := h.likeService.ToggleTripLike(c.Request.Context(), email, c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	message := "Trip unliked"
	if liked {
		message = "Trip liked"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "isLiked": liked})
}
