package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "github.com/tripsketch/tripsketch-backend/errors"
	"github.com/tripsketch/tripsketch-backend/store"
)

// RequireAdmin gates operator-only routes. It must run after AuthMiddleware.
// Non-admins get a forbidden error, not a not-found: the admin surface itself
// is not a secret, only its data is.
func RequireAdmin(userStore store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := GetUserEmail(c)
		if email == "" {
			_ = c.Error(apperrors.Unauthorized("missing_auth", "Authorization required"))
			c.Abort()
			return
		}

		user, err := userStore.GetUserByEmail(c.Request.Context(), email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				_ = c.Error(apperrors.Unauthorized("unknown_user", "Unknown user"))
			} else {
				_ = c.Error(apperrors.NewDatabaseError(err))
			}
			c.Abort()
			return
		}

		if !user.IsAdmin {
			_ = c.Error(apperrors.Forbidden("Operator access required", ""))
			c.Abort()
			return
		}

		c.Next()
	}
}
