package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripsketch/tripsketch-backend/middleware"
	"github.com/tripsketch/tripsketch-backend/services"
	"github.com/tripsketch/tripsketch-backend/store"
	"github.com/tripsketch/tripsketch-backend/types"
)

// stubUserStore resolves a single known user.
type stubUserStore struct {
	user *types.User
}

func (s *stubUserStore) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	if s.user != nil && s.user.Email == email {
		return s.user, nil
	}
	return nil, store.ErrNotFound
}

func (s *stubUserStore) GetUserByNickname(ctx context.Context, nickname string) (*types.User, error) {
	if s.user != nil && s.user.Nickname == nickname {
		return s.user, nil
	}
	return nil, store.ErrNotFound
}

func (s *stubUserStore) GetPushTokens(ctx context.Context, emails []string) ([]string, error) {
	return nil, nil
}

// stubImageService returns canned URLs and records whether it was called.
type stubImageService struct {
	urls   []string
	called bool
}

func (s *stubImageService) UploadTripImages(ctx context.Context, ownerEmail string, files []*multipart.FileHeader) ([]string, error) {
	s.called = true
	return s.urls, nil
}

func tripTestRouter(tripStore store.TripStore, userStore store.UserStore, images services.ImageService, email string) *gin.Engine {
	h := NewTripHandler(services.NewTripService(tripStore, userStore, services.NewNoopNotifier()), nil, images)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(func(c *gin.Context) {
		c.Set(string(middleware.UserEmailKey), email)
	})
	r.POST("/v1/trips", h.CreateTripHandler)
	r.PATCH("/v1/trips/:id", h.UpdateTripHandler)
	return r
}

func ownerUser() *types.User {
	return &types.User{Email: "owner@example.com", Nickname: "wanderer"}
}

// multipartTripBody encodes a trip form with one attached file.
func multipartTripBody(t *testing.T, tripJSON string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("trip", tripJSON))
	fw, err := mw.CreateFormFile("images", "harbor.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("image payload"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestCreateTripHandler_MultipartForm(t *testing.T) {
	tripStore := &stubTripStore{}
	images := &stubImageService{urls: []string{"https://img.example.com/trips/harbor.jpeg"}}
	r := tripTestRouter(tripStore, &stubUserStore{user: ownerUser()}, images, "owner@example.com")

	body, contentType := multipartTripBody(t,
		`{"title":"Busan","content":"Harbor walk","hashtag":"#sea","startedAt":"2026-08-01T00:00:00Z","endAt":"2026-08-05T00:00:00Z"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/trips", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, images.called)
	assert.Contains(t, w.Body.String(), "https://img.example.com/trips/harbor.jpeg")
}

func TestUpdateTripHandler_MultipartForm(t *testing.T) {
	tripStore := &stubTripStore{trip: publicTrip()}
	images := &stubImageService{urls: []string{"https://img.example.com/trips/sunset.jpeg"}}
	r := tripTestRouter(tripStore, &stubUserStore{user: ownerUser()}, images, "owner@example.com")

	body, contentType := multipartTripBody(t, `{"title":"Busan","content":"Harbor walk","hashtag":"#sea"}`)
	req := httptest.NewRequest(http.MethodPatch, "/v1/trips/trip-1", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, images.called)
	assert.Contains(t, w.Body.String(), `"title":"Busan"`)
	assert.Contains(t, w.Body.String(), "https://img.example.com/trips/sunset.jpeg")
}

func TestUpdateTripHandler_JSONBody(t *testing.T) {
	tripStore := &stubTripStore{trip: publicTrip()}
	r := tripTestRouter(tripStore, &stubUserStore{user: ownerUser()}, &stubImageService{}, "owner@example.com")

	req := httptest.NewRequest(http.MethodPatch, "/v1/trips/trip-1",
		bytes.NewBufferString(`{"title":"Busan","content":"Harbor walk","hashtag":"#sea"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Busan"`)
}

func TestUpdateTripHandler_MultipartMissingTripField(t *testing.T) {
	tripStore := &stubTripStore{trip: publicTrip()}
	r := tripTestRouter(tripStore, &stubUserStore{user: ownerUser()}, &stubImageService{}, "owner@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPatch, "/v1/trips/trip-1", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
