package main

import (
	"context" // context package is needed for Redis and S3 startup checks
	"time"    // Startup timeouts

	"github.com/Tathya-Dixit/recipe-share/internal/api"     // HTTP handlers and routes
	"github.com/Tathya-Dixit/recipe-share/internal/config"  // Configuration
	"github.com/Tathya-Dixit/recipe-share/internal/db"      // Database connection
	"github.com/Tathya-Dixit/recipe-share/internal/service" // Business rules
	"github.com/Tathya-Dixit/recipe-share/internal/storage" // Image storage
	"github.com/Tathya-Dixit/recipe-share/internal/utils"   // Cache

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	// Connect to the database
	database, err := db.Open(cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Test Redis connection
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Image storage: S3 when a bucket is configured, process memory otherwise
	var images storage.ImageStore
	var media *storage.MemoryStore
	if cfg.Storage.Bucket != "" {
		s3Store, err := storage.NewS3Store(ctx, cfg.Storage)
		if err != nil {
			logrus.Fatalf("failed to configure S3: %v", err)
		}
		if err := s3Store.EnsureBucket(ctx); err != nil {
			logrus.Fatalf("failed to prepare bucket %s: %v", s3Store.Bucket(), err)
		}
		images = s3Store
	} else {
		logrus.Warn("S3_BUCKET not set, images are kept in memory")
		media = storage.NewMemoryStore()
		images = media
	}

	maxUpload := cfg.MaxUploadMB << 20
	cache := utils.NewRedisCache(redisClient)
	svc := service.New(database, cache, images, maxUpload)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Room for the form fields next to the image
	r.MaxMultipartMemory = maxUpload + 1<<20

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	api.RegisterRoutes(r, api.Deps{
		DB:      database,
		Service: svc,
		Cache:   cache,
		Session: api.SessionConfig{Secret: cfg.JWTSecret, TTL: cfg.SessionTTL, Secure: cfg.CookieSecure},
		Media:   media,
	})

	logrus.Info("Server running on " + cfg.AppPort) // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
