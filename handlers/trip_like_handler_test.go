package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/tripsketch/tripsketch-backend/logger"
	"github.com/tripsketch/tripsketch-backend/middleware"
	"github.com/tripsketch/tripsketch-backend/services"
	"github.com/tripsketch/tripsketch-backend/store"
	"github.com/tripsketch/tripsketch-backend/types"
)

func init() {
	logger.IsTest = true
	logger.InitLogger()
	gin.SetMode(gin.TestMode)
}

// stubTripStore backs handler tests with a single in-memory trip.
type stubTripStore struct {
	trip *types.Trip
}

func (s *stubTripStore) CreateTrip(ctx context.Context, trip *types.Trip) (*types.Trip, error) {
	return trip, nil
}

func (s *stubTripStore) GetTrip(ctx context.Context, id string) (*types.Trip, error) {
	if s.trip == nil || s.trip.ID != id {
		return nil, store.ErrNotFound
	}
	return s.trip, nil
}

func (s *stubTripStore) ListTrips(ctx context.Context, filter types.TripListFilter) ([]*types.Trip, error) {
	return nil, nil
}

func (s *stubTripStore) CountTrips(ctx context.Context, filter types.TripListFilter) (int64, error) {
	return 0, nil
}

func (s *stubTripStore) UpdateTrip(ctx context.Context, id string, update *types.Trip) (*types.Trip, error) {
	return update, nil
}

func (s *stubTripStore) SoftDeleteTrip(ctx context.Context, id string) error {
	return nil
}

func (s *stubTripStore) RegisterView(ctx context.Context, id string, viewerEmail string) (bool, error) {
	return false, nil
}

func (s *stubTripStore) AddLike(ctx context.Context, id string, userEmail string) (bool, error) {
	if s.trip.IsLikedBy(userEmail) {
		return false, nil
	}
	s.trip.LikedBy = append(s.trip.LikedBy, userEmail)
	s.trip.Likes++
	return true, nil
}

func (s *stubTripStore) RemoveLike(ctx context.Context, id string, userEmail string) (bool, error) {
	for i, e := range s.trip.LikedBy {
		if e == userEmail {
			s.trip.LikedBy = append(s.trip.LikedBy[:i], s.trip.LikedBy[i+1:]...)
			s.trip.Likes--
			return true, nil
		}
	}
	return false, nil
}

func likeTestRouter(tripStore store.TripStore, email string) *gin.Engine {
	h := NewTripLikeHandler(services.NewTripLikeService(tripStore))
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(func(c *gin.Context) {
		if email != "" {
			c.Set(string(middleware.UserEmailKey), email)
		}
	})
	r.POST("/v1/trips/:id/like", h.LikeTripHandler)
	r.POST("/v1/trips/:id/unlike", h.UnlikeTripHandler)
	r.POST("/v1/trips/:id/toggle-like", h.ToggleTripLikeHandler)
	return r
}

func publicTrip() *types.Trip {
	return &types.Trip{
		ID:         "trip-1",
		OwnerEmail: "owner@example.com",
		Title:      "Jeju Island",
		Public:     true,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestLikeTripHandler(t *testing.T) {
	tripStore := &stubTripStore{trip: publicTrip()}
	r := likeTestRouter(tripStore, "fan@example.com")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/trips/trip-1/like", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isLiked":true`)
	assert.Equal(t, 1, tripStore.trip.Likes)

	// Liking again is an invalid transition.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/trips/trip-1/like", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, tripStore.trip.Likes, "count must not change on a rejected like")
}

func TestToggleTripLikeHandler(t *testing.T) {
	tripStore := &stubTripStore{trip: publicTrip()}
	r := likeTestRouter(tripStore, "fan@example.com")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/trips/trip-1/toggle-like", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isLiked":true`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/trips/trip-1/toggle-like", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isLiked":false`)
	assert.Equal(t, 0, tripStore.trip.Likes)
}

func TestUnlikeTripHandler_NotLiked(t *testing.T) {
	tripStore := &stubTripStore{trip: publicTrip()}
	r := likeTestRouter(tripStore, "fan@example.com")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/trips/trip-1/unlike", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLikeTripHandler_HiddenTrip(t *testing.T) {
	trip := publicTrip()
	trip.Hidden = true
	r := likeTestRouter(&stubTripStore{trip: trip}, "fan@example.com")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/trips/trip-1/like", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
