package api

import (
	"context"  // Context for Redis operations
	"errors"   // Sentinel error matching
	"net/http" // HTTP status codes
	"time"     // Time durations

	"loyalty_system/internal/domain" // Importing domain models
	"loyalty_system/internal/ledger" // Ledger store
	"loyalty_system/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Exact decimal currency amounts

	"github.com/sirupsen/logrus" // Logging library
)

// EarnRequest represents an earn request
type EarnRequest struct {
	CardNumber     string          `json:"card_number" binding:"required"`     // Target card number
	PurchaseAmount decimal.Decimal `json:"purchase_amount" binding:"required"` // Purchase amount in currency units
}

// RedeemRequest represents a redeem request
type RedeemRequest struct {
	CardNumber string `json:"card_number" binding:"required"` // Target card number
	Points     int64  `json:"points" binding:"required,gt=0"` // Points to redeem, positive
}

// CardRequest addresses a single card by number
type CardRequest struct {
	CardNumber string `json:"card_number" binding:"required"` // Target card number
}

// cardsCacheKey builds the cache key for an owner's card listing
func cardsCacheKey(ownerID string) string {
	return "cards:owner:" + ownerID
}

// CreateCardHandler creates a new loyalty card for the authenticated user
func CreateCardHandler(store ledger.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		ownerID, exists := c.Get("userID")
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		card, err := store.CreateCard(ownerID.(string))
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"owner_id": ownerID,     // Owner ID
				"error":    err.Error(), // Error message
			}).Error("Failed to create card") // Log failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create card"})
			return
		}
		// Log successful card creation
		logrus.WithFields(logrus.Fields{
			"owner_id":    ownerID,         // Owner ID
			"card_id":     card.ID,         // Card ID
			"card_number": card.CardNumber, // Card number
			"type":        "create_card",   // Operation type
		}).Info("Card created")
		// Invalidate the owner's card listing cache
		_ = utils.DeleteCache(context.Background(), rdb, cardsCacheKey(ownerID.(string)))
		// Return the new card
		c.JSON(http.StatusCreated, gin.H{"card": card})
	}
}

// MyCardsHandler returns the authenticated user's cards with balances
func MyCardsHandler(store ledger.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		ownerID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()                 // Context for Redis operations
		cacheKey := cardsCacheKey(ownerID.(string)) // Cache key for the listing
		var cached []domain.CardBalance             // Cached listing
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"cards": cached, "cached": true})
			return
		}
		cards, err := store.ListCardsForOwner(ownerID.(string))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cards"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, cards, 60*time.Second) // Cache the listing for 60 seconds
		c.JSON(http.StatusOK, gin.H{"cards": cards, "cached": false})
	}
}

// EarnHandler converts a purchase amount into points on the caller's card
func EarnHandler(store ledger.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req EarnRequest // Bind JSON request to struct
		// Validate request; binding rejects a missing or zero amount
		if err := c.ShouldBindJSON(&req); err != nil || !req.PurchaseAmount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		added, err := store.Earn(ownerID.(string), req.CardNumber, req.PurchaseAmount)
		if err != nil {
			writeLedgerError(c, err) // Map ledger errors to HTTP statuses
			return
		}
		// Log successful earn
		logrus.WithFields(logrus.Fields{
			"owner_id":        ownerID,                     // Owner ID
			"card_number":     req.CardNumber,              // Card number
			"purchase_amount": req.PurchaseAmount.String(), // Purchase amount
			"points_added":    added,                       // Points added
			"type":            "earn",                      // Operation type
		}).Info("Points earned")
		// Invalidate the owner's card listing cache
		_ = utils.DeleteCache(context.Background(), rdb, cardsCacheKey(ownerID.(string)))
		c.JSON(http.StatusOK, gin.H{"added": added})
	}
}

// RedeemHandler spends points from the caller's card
func RedeemHandler(store ledger.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req RedeemRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		redeemed, err := store.Redeem(ownerID.(string), req.CardNumber, req.Points)
		if err != nil {
			writeLedgerError(c, err)
			return
		}
		// Log successful redemption
		logrus.WithFields(logrus.Fields{
			"owner_id":    ownerID,        // Owner ID
			"card_number": req.CardNumber, // Card number
			"points":      redeemed,       // Points redeemed
			"type":        "redeem",       // Operation type
		}).Info("Points redeemed")
		// Invalidate the owner's card listing cache
		_ = utils.DeleteCache(context.Background(), rdb, cardsCacheKey(ownerID.(string)))
		c.JSON(http.StatusOK, gin.H{"redeemed": redeemed})
	}
}

// DeactivateCardHandler marks the caller's card inactive
func DeactivateCardHandler(store ledger.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CardRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if err := store.DeactivateCard(ownerID.(string), req.CardNumber); err != nil {
			writeLedgerError(c, err)
			return
		}
		// Log deactivation
		logrus.WithFields(logrus.Fields{
			"owner_id":    ownerID,           // Owner ID
			"card_number": req.CardNumber,    // Card number
			"type":        "deactivate_card", // Operation type
		}).Info("Card deactivated")
		// Invalidate the owner's card listing cache
		_ = utils.DeleteCache(context.Background(), rdb, cardsCacheKey(ownerID.(string)))
		c.JSON(http.StatusOK, gin.H{"message": "Card deactivated"})
	}
}

// BalanceHandler reports the caller's total points across all cards plus the
// tier carried by the token
func BalanceHandler(store ledger.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		cards, err := store.ListCardsForOwner(ownerID.(string))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch balance"})
			return
		}
		var points int64
		for _, cb := range cards {
			points += cb.Balance // Sum over the owner's cards
		}
		tier, _ := c.Get("tier") // Set by the JWT middleware
		c.JSON(http.StatusOK, gin.H{
			"user_id": ownerID, // Opaque user ID
			"points":  points,  // Total points balance
			"tier":    tier,    // Loyalty tier from the token
		})
	}
}

// writeLedgerError maps the ledger's sentinel errors to HTTP responses
func writeLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrCardNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
	case errors.Is(err, ledger.ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient points"})
	case errors.Is(err, ledger.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed"})
	}
}
