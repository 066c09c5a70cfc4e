package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripsketch/tripsketch-backend/config"
	"github.com/tripsketch/tripsketch-backend/logger"
)

func init() {
	logger.IsTest = true
	logger.InitLogger()
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret-key-which-is-long-enough"

func signToken(t *testing.T, email string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func authTestRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	r.Use(mw)
	r.GET("/probe", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": GetUserEmail(c)})
	})
	return r
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	cfg := &config.ServerConfig{JwtSecretKey: testSecret}
	r := authTestRouter(AuthMiddleware(cfg))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user@example.com", time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user@example.com")
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	cfg := &config.ServerConfig{JwtSecretKey: testSecret}
	r := authTestRouter(AuthMiddleware(cfg))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	cfg := &config.ServerConfig{JwtSecretKey: testSecret}
	r := authTestRouter(AuthMiddleware(cfg))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user@example.com", time.Now().Add(-time.Hour)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token_expired")
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	cfg := &config.ServerConfig{JwtSecretKey: "a-different-secret-key-also-long-enough"}
	r := authTestRouter(AuthMiddleware(cfg))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user@example.com", time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuthMiddleware_GuestPassesThrough(t *testing.T) {
	cfg := &config.ServerConfig{JwtSecretKey: testSecret}
	r := authTestRouter(OptionalAuthMiddleware(cfg))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":""`)
}

func TestOptionalAuthMiddleware_IdentityAttached(t *testing.T) {
	cfg := &config.ServerConfig{JwtSecretKey: testSecret}
	r := authTestRouter(OptionalAuthMiddleware(cfg))

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user@example.com", time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user@example.com")
}
