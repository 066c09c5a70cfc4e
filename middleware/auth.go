package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tripsketch/tripsketch-backend/config"
	apperrors "github.com/tripsketch/tripsketch-backend/errors"
	"github.com/tripsketch/tripsketch-backend/logger"
)

// AuthClaims are the claims carried by our access tokens. The email claim is
// the user identity everywhere downstream.
type AuthClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the Bearer token and injects the authenticated
// user's email into the gin context. Handlers read it with GetUserEmail;
// services receive it as an explicit argument and never re-derive identity.
func AuthMiddleware(cfg *config.ServerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetLogger()

		email, err := emailFromRequest(c, cfg.JwtSecretKey)
		if err != nil {
			log.Warnw("Rejected unauthenticated request",
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"client_ip", c.ClientIP(),
				"error", err)
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(string(UserEmailKey), email)
		c.Next()
	}
}

// OptionalAuthMiddleware extracts the identity when a valid token is present
// but lets the request through either way. Guest routes use it so view
// counting can distinguish authenticated viewers from guests.
func OptionalAuthMiddleware(cfg *config.ServerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if email, err := emailFromRequest(c, cfg.JwtSecretKey); err == nil {
			c.Set(string(UserEmailKey), email)
		}
		c.Next()
	}
}

// GetUserEmail returns the authenticated user's email from the gin context,
// or "" for guests.
func GetUserEmail(c *gin.Context) string {
	return c.GetString(string(UserEmailKey))
}

func emailFromRequest(c *gin.Context, secret string) (string, *apperrors.AppError) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", apperrors.Unauthorized("missing_token", "Authorization required")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		if err != nil && strings.Contains(err.Error(), "expired") {
			return "", apperrors.Unauthorized("token_expired", "Your session has expired")
		}
		return "", apperrors.Unauthorized("invalid_token", "Invalid authentication token")
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || claims.Email == "" {
		return "", apperrors.Unauthorized("invalid_claims", "Invalid token structure")
	}
	return claims.Email, nil
}
