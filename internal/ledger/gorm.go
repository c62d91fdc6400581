package ledger

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"        // UUID generation for card and movement IDs
	"github.com/shopspring/decimal" // Exact decimal arithmetic
	"gorm.io/gorm"                  // GORM ORM library
	"gorm.io/gorm/clause"           // Row locking clause

	"loyalty_system/internal/domain" // Importing domain models
)

// balanceExpr folds movements in SQL: earns add, redeems subtract
const balanceExpr = "COALESCE(SUM(CASE WHEN kind = 'earn' THEN amount ELSE -amount END), 0)"

// GormStore is the optional database-backed Store. Per-card atomicity comes
// from locking the card row FOR UPDATE inside a transaction, so the balance
// check and the movement insert commit together or not at all.
type GormStore struct {
	db *gorm.DB // Database handle
}

// NewGormStore returns a Store backed by the given database
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// CreateCard creates a new active card for the owner
func (s *GormStore) CreateCard(ownerID string) (*domain.Card, error) {
	card := domain.Card{
		ID:         uuid.NewString(),                              // Opaque unique identifier
		OwnerID:    ownerID,                                       // Set once, immutable
		CardNumber: strings.ReplaceAll(uuid.NewString(), "-", ""), // Unique random hex display number
		IsActive:   true,                                          // Cards start active
	}
	if err := s.db.Create(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// ListCardsForOwner returns the owner's cards with balances, creation order
func (s *GormStore) ListCardsForOwner(ownerID string) ([]domain.CardBalance, error) {
	var cards []domain.Card
	// Fetch all cards for the owner in creation order
	if err := s.db.Where("owner_id = ?", ownerID).Order("created_at, id").Find(&cards).Error; err != nil {
		return nil, err
	}
	result := make([]domain.CardBalance, 0, len(cards))
	for _, card := range cards {
		var balance int64
		// Fold the card's movements in the database
		if err := s.db.Model(&domain.Movement{}).
			Where("card_id = ?", card.ID).
			Select(balanceExpr).
			Scan(&balance).Error; err != nil {
			return nil, err
		}
		result = append(result, domain.CardBalance{Card: card, Balance: balance})
	}
	return result, nil
}

// Earn converts the purchase amount to points and appends an earn movement
func (s *GormStore) Earn(ownerID, cardNumber string, purchaseAmount decimal.Decimal) (int64, error) {
	if purchaseAmount.IsNegative() {
		return 0, ErrInvalidAmount
	}
	points := PointsForPurchase(purchaseAmount)
	// Atomic append against the locked card row
	err := s.db.Transaction(func(tx *gorm.DB) error {
		card, err := lockCard(tx, ownerID, cardNumber)
		if err != nil {
			return err
		}
		return tx.Create(movementRow(card.ID, domain.MovementEarn, points)).Error
	})
	if err != nil {
		return 0, err
	}
	return points, nil
}

// Redeem verifies the balance covers the points, then appends a redeem
// movement. The check and the insert share one transaction.
func (s *GormStore) Redeem(ownerID, cardNumber string, points int64) (int64, error) {
	if points <= 0 {
		return 0, ErrInvalidAmount
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		card, err := lockCard(tx, ownerID, cardNumber)
		if err != nil {
			return err
		}
		var balance int64
		// Fold under the row lock so concurrent redeems serialize
		if err := tx.Model(&domain.Movement{}).
			Where("card_id = ?", card.ID).
			Select(balanceExpr).
			Scan(&balance).Error; err != nil {
			return err
		}
		if balance < points {
			return ErrInsufficientBalance // Rollback; nothing was written
		}
		return tx.Create(movementRow(card.ID, domain.MovementRedeem, points)).Error
	})
	if err != nil {
		return 0, err
	}
	return points, nil
}

// DeactivateCard marks the card inactive
func (s *GormStore) DeactivateCard(ownerID, cardNumber string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		card, err := lockCard(tx, ownerID, cardNumber)
		if err != nil {
			return err
		}
		return tx.Model(card).Update("is_active", false).Error
	})
}

// lockCard fetches the caller's active card FOR UPDATE, serializing all
// ledger operations on the same card for the rest of the transaction.
func lockCard(tx *gorm.DB, ownerID, cardNumber string) (*domain.Card, error) {
	var card domain.Card
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner_id = ? AND card_number = ? AND is_active = ?", ownerID, cardNumber, true).
		First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCardNotFound // Wrong owner, unknown number, or inactive
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// movementRow builds a movement record for insertion
func movementRow(cardID string, kind domain.MovementKind, amount int64) *domain.Movement {
	return &domain.Movement{
		ID:        uuid.NewString(), // Opaque unique identifier
		CardID:    cardID,           // Owning card
		Kind:      kind,             // earn or redeem
		Amount:    amount,           // Non-negative points
		CreatedAt: time.Now().UTC(), // Insertion timestamp
	}
}
