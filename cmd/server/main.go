package main

import (
	"context"                               // context package is needed for Redis operations
	"travel_itinerary/internal/api"         // Custom package for API handlers
	"travel_itinerary/internal/config"      // Custom package for configuration
	"travel_itinerary/internal/datamanager" // Custom package for the data access layer
	"travel_itinerary/internal/db"          // Custom package for database setup
	"travel_itinerary/internal/utils"       // Custom package for cache and session helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	} else {
		logrus.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
	}

	// Sessions signed with a throwaway secret do not survive a restart
	if cfg.JWTSecret == "" {
		secret, err := utils.GenerateSecret(32)
		if err != nil {
			logrus.Fatalf("failed to generate session secret: %v", err)
		}
		cfg.JWTSecret = secret
		logrus.Warn("JWT_SECRET not set, generated a random session secret")
	}

	// Connect to the database and make sure the schema exists
	conn, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	if err := db.Migrate(conn); err != nil {
		logrus.Fatalf("%v", err)
	}

	var dm datamanager.DataManager = datamanager.NewSQLDataManager(conn)

	// Setup Redis cache when an address is configured
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		dm = datamanager.NewCachedDataManager(dm, utils.NewCache(redisClient, "destinations:", cfg.CacheTTL))
		logrus.WithFields(logrus.Fields{"addr": cfg.RedisAddr, "ttl": cfg.CacheTTL}).Info("Destination cache enabled")
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r, err := api.NewRouter(dm, api.RouterConfig{
		JWTSecret:      cfg.JWTSecret,
		SecureCookie:   cfg.IsProd,
		TrustedProxies: []string{"127.0.0.1"},
	})
	if err != nil {
		logrus.Fatalf("failed to set up router: %v", err)
	}

	logrus.WithFields(logrus.Fields{"port": cfg.AppPort, "driver": cfg.DBDriver}).Info("Server running")
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
