package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tripsketch/tripsketch-backend/config"
	"github.com/tripsketch/tripsketch-backend/handlers"
	"github.com/tripsketch/tripsketch-backend/logger"
	"github.com/tripsketch/tripsketch-backend/router"
	"github.com/tripsketch/tripsketch-backend/services"
	"github.com/tripsketch/tripsketch-backend/store/mongo"
)

func main() {
	// Initialize logger
	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// MongoDB connection
	connectCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	mongoClient, err := mongo.Connect(connectCtx, cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := mongoClient.Close(closeCtx); err != nil {
			log.Errorw("Failed to close MongoDB connection", "error", err)
		}
	}()

	// Redis client with TLS in production
	redisOptions := &redis.Options{
		Addr:         cfg.Redis.Address,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}
	if cfg.Redis.UseTLS {
		redisOptions.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}
	redisClient := redis.NewClient(redisOptions)
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Errorw("Failed to close Redis connection", "error", err)
		}
	}()

	// Stores
	tripStore := mongoClient.TripStore()
	userStore := mongoClient.UserStore()
	followStore := mongoClient.FollowStore()

	// Notification fan-out runs on a bounded worker pool so a slow push
	// provider never blocks trip creation.
	workerPool := services.NewWorkerPool(cfg.WorkerPool)
	workerPool.Start()

	var notifier services.TripNotifier
	if cfg.Push.Enabled {
		pushService := services.NewExpoPushService(userStore, cfg.Push)
		notifier = services.NewNotificationService(followStore, pushService, workerPool)
	} else {
		log.Info("Push notifications disabled, using noop notifier")
		notifier = services.NewNoopNotifier()
	}

	// Services
	tripService := services.NewTripService(tripStore, userStore, notifier)
	likeService := services.NewTripLikeService(tripStore)
	followService := services.NewFollowService(followStore, userStore)
	imageService := services.NewS3ImageService(cfg.Storage)
	healthService := services.NewHealthService(mongoClient, redisClient, cfg.Server.Version)

	// Router setup
	r := router.SetupRouter(router.Dependencies{
		Config:        cfg,
		RedisClient:   redisClient,
		UserStore:     userStore,
		TripHandler:   handlers.NewTripHandler(tripService, followService, imageService),
		LikeHandler:   handlers.NewTripLikeHandler(likeService),
		FollowHandler: handlers.NewFollowHandler(followService),
		AdminHandler:  handlers.NewAdminHandler(tripService),
		HealthHandler: handlers.NewHealthHandler(healthService),
		Logger:        log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown failed", "error", err)
	}

	// Drain queued notification jobs before exiting.
	poolCtx, poolCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.WorkerPool.ShutdownTimeoutSeconds)*time.Second)
	defer poolCancel()
	if err := workerPool.Shutdown(poolCtx); err != nil {
		log.Errorw("Worker pool shutdown incomplete", "error", err)
	}

	log.Info("Server stopped")
}
