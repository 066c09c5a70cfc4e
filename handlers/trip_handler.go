package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/tripsketch/tripsketch-backend/errors"
	"github.com/tripsketch/tripsketch-backend/middleware"
	"github.com/tripsketch/tripsketch-backend/services"
	"github.com/tripsketch/tripsketch-backend/types"
)

// TripHandler adapts HTTP requests onto the trip service. It owns no business
// rules beyond request decoding; identity comes from the auth middleware.
type TripHandler struct {
	tripService   *services.TripService
	followService *services.FollowService
	imageService  services.ImageService
}

// NewTripHandler creates a TripHandler with the given dependencies.
func NewTripHandler(tripService *services.TripService, followService *services.FollowService, imageService services.ImageService) *TripHandler {
	return &TripHandler{
		tripService:   tripService,
		followService: followService,
		imageService:  imageService,
	}
}

// pagedResponse wraps a listing with its total for paginated endpoints.
type pagedResponse struct {
	Trips []*types.TripResponse `json:"trips"`
	Total int64                 `json:"total"`
	Page  int64                 `json:"page"`
	Size  int64                 `json:"size"`
}

// CreateTripHandler handles POST /v1/trips. Accepts a JSON body, or a
// multipart form with a "trip" JSON field plus image files which are uploaded
// to object storage before the trip is persisted.
func (h *TripHandler) CreateTripHandler(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	var req types.TripCreate
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		urls, ok := h.bindMultipartTrip(c, email, &req)
		if !ok {
			return
		}
		req.Images = append(req.Images, urls...)
	} else if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	created, err := h.tripService.CreateTrip(c.Request.Context(), email, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// bindMultipartTrip decodes the "trip" form field into dst and uploads any
// attached image files, returning their storage URLs. Used by both the create
// and the update path.
func (h *TripHandler) bindMultipartTrip(c *gin.Context, email string, dst any) ([]string, bool) {
	payload := c.PostForm("trip")
	if payload == "" {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", "missing trip form field"))
		return nil, false
	}
	if err := json.Unmarshal([]byte(payload), dst); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		return nil, false
	}

	form, err := c.MultipartForm()
	if err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid multipart form", err.Error()))
		return nil, false
	}
	files := form.File["images"]
	if len(files) == 0 {
		return nil, true
	}

	urls, err := h.imageService.UploadTripImages(c.Request.Context(), email, files)
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}
	return urls, true
}

// ListOwnTripsHandler handles GET /v1/trips: the caller's own trips, hidden
// included.
func (h *TripHandler) ListOwnTripsHandler(c *gin.Context) {
	email := middleware.GetUserEmail(c)
	page, size := pagingParams(c)

	trips, total, err := h.tripService.ListOwnTrips(c.Request.Context(), email, page, size)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, pagedResponse{Trips: trips, Total: total, Page: page, Size: size})
}

// ListGuestTripsHandler handles GET /v1/trips/guest: public trips only.
func (h *TripHandler) ListGuestTripsHandler(c *gin.Context) {
	page, size := pagingParams(c)

	trips, total, err := h.tripService.ListPublicTrips(c.Request.Context(), middleware.GetUserEmail(c), page, size)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, pagedResponse{Trips: trips, Total: total, Page: page, Size: size})
}

// ListTripsByNicknameHandler handles GET /v1/trips/nickname/:nickname.
func (h *TripHandler) ListTripsByNicknameHandler(c *gin.Context) {
	nickname := c.Param("nickname")

	trips, err := h.tripService.ListTripsByNickname(c.Request.Context(), middleware.GetUserEmail(c), nickname)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// ListFollowingTripsHandler handles GET /v1/trips/feed: trips of the authors
// the caller follows.
func (h *TripHandler) ListFollowingTripsHandler(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	following, err := h.followService.Following(c.Request.Context(), email)
	if err != nil {
		_ = c.Error(err)
		return
	}

	trips, err := h.tripService.ListFollowingTrips(c.Request.Context(), email, following)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// SearchTripsHandler handles GET /v1/trips/search?keyword=.
func (h *TripHandler) SearchTripsHandler(c *gin.Context) {
	trips, err := h.tripService.SearchTrips(c.Request.Context(), middleware.GetUserEmail(c), c.Query("keyword"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// GetTripHandler handles GET /v1/trips/:id for authenticated viewers. A
// first-time view by a non-owner bumps the view counter.
func (h *TripHandler) GetTripHandler(c *gin.Context) {
	trip, err := h.tripService.GetTripForViewer(c.Request.Context(), middleware.GetUserEmail(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// GetGuestTripHandler handles GET /v1/trips/guest/:id. Guests never count
// toward views.
func (h *TripHandler) GetGuestTripHandler(c *gin.Context) {
	trip, err := h.tripService.GetTripForGuest(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// UpdateTripHandler handles PATCH /v1/trips/:id (owner only). Like create, it
// accepts either a JSON body or a multipart form with a "trip" field plus
// image files; freshly uploaded images are appended to the submitted list.
func (h *TripHandler) UpdateTripHandler(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	var req types.TripUpdate
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		urls, ok := h.bindMultipartTrip(c, email, &req)
		if !ok {
			return
		}
		req.Images = append(req.Images, urls...)
	} else if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	updated, err := h.tripService.UpdateTrip(c.Request.Context(), email, c.Param("id"), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trip updated", "trip": updated})
}

// DeleteTripHandler handles DELETE /v1/trips/:id (owner only, soft delete).
func (h *TripHandler) DeleteTripHandler(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	if err := h.tripService.DeleteTrip(c.Request.Context(), email, c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trip deleted"})
}

func pagingParams(c *gin.Context) (page, size int64) {
	page, _ = strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	size, _ = strconv.ParseInt(c.DefaultQuery("size", "10"), 10, 64)
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	return page, size
}
