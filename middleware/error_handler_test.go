package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tripsketch/tripsketch-backend/errors"
)

func errorTestRouter(err error) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(err)
	})
	return r
}

func performErrorRequest(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	r := errorTestRouter(err)
	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestErrorHandler_TripNotFound(t *testing.T) {
	w, body := performErrorRequest(t, apperrors.NewTripNotFound("trip-1"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(apperrors.TripNotFound), body.Type)
	assert.Equal(t, "Trip not found", body.Message)
}

func TestErrorHandler_ValidationIncludesDetails(t *testing.T) {
	w, body := performErrorRequest(t, apperrors.ValidationFailed("Missing required field", "title is required"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "title is required", body.Details)
}

func TestErrorHandler_AccessDenied(t *testing.T) {
	w, body := performErrorRequest(t, apperrors.TripAccessDenied("intruder@example.com", "trip-1"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, string(apperrors.TripAccessError), body.Type)
	// The detail carries a masked email; it must never be echoed for this kind.
	assert.Empty(t, body.Details)
}

func TestErrorHandler_InvalidState(t *testing.T) {
	w, body := performErrorRequest(t, apperrors.NewInvalidState("Trip is already liked"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(apperrors.InvalidState), body.Type)
}

func TestErrorHandler_RateLimit(t *testing.T) {
	w, body := performErrorRequest(t, apperrors.RateLimitExceeded("Too many requests", 60))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limit_exceeded", body.Code)
}

func TestErrorHandler_PreservesErrorCode(t *testing.T) {
	w, body := performErrorRequest(t, apperrors.Unauthorized("token_expired", "Token has expired"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token_expired", body.Code)
}

func TestErrorHandler_NumericCodeFallback(t *testing.T) {
	w, body := performErrorRequest(t, apperrors.NewTripNotFound("trip-1"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "404", body.Code)
}

func TestErrorHandler_UnknownErrorIsServerError(t *testing.T) {
	w, body := performErrorRequest(t, errors.New("database exploded with credentials in message"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, string(apperrors.ServerError), body.Type)
	assert.NotContains(t, body.Message, "credentials")
}

func TestErrorHandler_NoErrorPassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
