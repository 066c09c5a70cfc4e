package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tripsketch/tripsketch-backend/config"
	"github.com/tripsketch/tripsketch-backend/handlers"
	"github.com/tripsketch/tripsketch-backend/middleware"
	"github.com/tripsketch/tripsketch-backend/store"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config        *config.Config
	RedisClient   *redis.Client
	UserStore     store.UserStore
	TripHandler   *handlers.TripHandler
	LikeHandler   *handlers.TripLikeHandler
	FollowHandler *handlers.FollowHandler
	AdminHandler  *handlers.AdminHandler
	HealthHandler *handlers.HealthHandler
	Logger        *zap.SugaredLogger
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// Global middleware
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))

	// Health and metrics routes (no auth)
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	writeLimiter := middleware.WriteRateLimiter(
		deps.RedisClient,
		deps.Config.RateLimit.RequestsPerMinute,
		time.Duration(deps.Config.RateLimit.WindowSeconds)*time.Second,
	)

	v1 := r.Group("/v1")
	{
		// Guest routes: auth is optional, an attached identity only enriches
		// the response (isLiked), it never gates access.
		optionalAuth := middleware.OptionalAuthMiddleware(&deps.Config.Server)
		guestRoutes := v1.Group("/trips", optionalAuth)
		{
			guestRoutes.GET("/guest", deps.TripHandler.ListGuestTripsHandler)
			guestRoutes.GET("/guest/:id", deps.TripHandler.GetGuestTripHandler)
			guestRoutes.GET("/nickname/:nickname", deps.TripHandler.ListTripsByNicknameHandler)
		}

		// --- Authenticated routes ---
		authMiddleware := middleware.AuthMiddleware(&deps.Config.Server)
		authRoutes := v1.Group("")
		authRoutes.Use(authMiddleware)
		{
			tripRoutes := authRoutes.Group("/trips")
			{
				tripRoutes.POST("", writeLimiter, deps.TripHandler.CreateTripHandler)
				tripRoutes.GET("", deps.TripHandler.ListOwnTripsHandler)
				tripRoutes.GET("/feed", deps.TripHandler.ListFollowingTripsHandler)
				tripRoutes.GET("/search", deps.TripHandler.SearchTripsHandler)
				tripRoutes.GET("/:id", deps.TripHandler.GetTripHandler)
				tripRoutes.PATCH("/:id", writeLimiter, deps.TripHandler.UpdateTripHandler)
				tripRoutes.DELETE("/:id", writeLimiter, deps.TripHandler.DeleteTripHandler)

				// Like routes
				tripRoutes.POST("/:id/like", writeLimiter, deps.LikeHandler.LikeTripHandler)
				tripRoutes.POST("/:id/unlike", writeLimiter, deps.LikeHandler.UnlikeTripHandler)
				tripRoutes.POST("/:id/toggle-like", writeLimiter, deps.LikeHandler.ToggleTripLikeHandler)

				// Operator listing, visibility flags ignored
				tripRoutes.GET("/admin", middleware.RequireAdmin(deps.UserStore), deps.AdminHandler.ListAllTripsHandler)
			}

			userRoutes := authRoutes.Group("/users")
			{
				userRoutes.POST("/:nickname/follow", writeLimiter, deps.FollowHandler.FollowUserHandler)
				userRoutes.DELETE("/:nickname/follow", writeLimiter, deps.FollowHandler.UnfollowUserHandler)
			}
		}
	}

	return r
}
