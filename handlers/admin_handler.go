package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tripsketch/tripsketch-backend/services"
)

// AdminHandler exposes the operator listing that bypasses visibility flags.
type AdminHandler struct {
	tripService *services.TripService
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(tripService *services.TripService) *AdminHandler {
	return &AdminHandler{tripService: tripService}
}

// ListAllTripsHandler handles GET /v1/trips/admin. Hidden and non-public
// trips are included; the RequireAdmin middleware has already vetted the
// caller.
func (h *AdminHandler) ListAllTripsHandler(c *gin.Context) {
	page, size := pagingParams(c)

	trips, total, err := h.tripService.ListAllTripsAdmin(c.Request.Context(), page, size)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, pagedResponse{Trips: trips, Total: total, Page: page, Size: size})
}
