package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"loyalty_system/internal/api"        // Custom package for API handlers
	"loyalty_system/internal/auth"       // Custom package for the user registry
	"loyalty_system/internal/config"     // Custom package for configuration
	"loyalty_system/internal/ledger"     // Custom package for the ledger store
	"loyalty_system/internal/middleware" // Custom package for middleware

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Select the ledger store: in-memory by default, database when configured
	var store ledger.Store = ledger.NewMemoryStore()
	if cfg.UseDatabase() {
		db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
		if err != nil {
			logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
		}
		store = ledger.NewGormStore(db)
		logrus.Info("Using database-backed ledger store")
	} else {
		logrus.Info("Using in-memory ledger store")
	}

	// Setup Redis client for the card listing cache; optional
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	}

	// Setup the user registry; identity stays in memory in this demo
	users := auth.NewRegistry()
	if cfg.SeedDemoUsers {
		users.SeedDemoUsers() // Well-known admin/client accounts
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	authGroup := r.Group("/auth")
	authGroup.POST("/register", api.RegisterHandler(users))                  // Registration endpoint
	authGroup.POST("/login", api.LoginHandler(users, cfg.JWTSecret))         // Password login endpoint
	authGroup.POST("/phone-login", api.PhoneLoginHandler(users, cfg.JWTSecret)) // Demo phone code login
	authGroup.POST("/send-code", api.SendCodeHandler())                      // Demo code delivery stub

	// Loyalty routes (protected by JWT)
	loyaltyGroup := r.Group("/loyalty")
	loyaltyGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	loyaltyGroup.GET("/profile", api.ProfileHandler(users)) // Profile endpoint
	loyaltyGroup.GET("/balance", api.BalanceHandler(store)) // Total points and tier
	// Admin routes (protected, admin only)
	loyaltyGroup.GET("/admin/dashboard", middleware.AdminOnlyMiddleware(), api.AdminDashboardHandler())

	// Card routes (protected by JWT)
	cardGroup := r.Group("/cards")
	cardGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	cardGroup.POST("", api.CreateCardHandler(store, redisClient))             // Create card endpoint
	cardGroup.GET("", api.MyCardsHandler(store, redisClient))                 // List cards with balances
	cardGroup.POST("/earn", api.EarnHandler(store, redisClient))              // Earn points endpoint
	cardGroup.POST("/redeem", api.RedeemHandler(store, redisClient))          // Redeem points endpoint
	cardGroup.POST("/deactivate", api.DeactivateCardHandler(store, redisClient)) // Deactivate card endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
