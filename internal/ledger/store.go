package ledger

import (
	"errors"

	"github.com/shopspring/decimal" // Exact decimal arithmetic for currency amounts

	"loyalty_system/internal/domain" // Importing domain models
)

// Sentinel errors returned by ledger stores. The store never logs or retries;
// the API layer decides the HTTP status mapping.
var (
	ErrCardNotFound        = errors.New("card not found")       // No active card with that number owned by the caller
	ErrInsufficientBalance = errors.New("insufficient balance") // Redemption exceeds current balance
	ErrInvalidAmount       = errors.New("invalid amount")       // Non-positive or malformed quantity
)

// PointsPerUnit is the earn conversion divisor: one point per 10 currency units.
var PointsPerUnit = decimal.NewFromInt(10)

// Store owns the cards and their append-only movement log. Implementations
// must make the read-validate-append sequence of Earn and Redeem atomic with
// respect to other operations on the same card, and must never let a
// committed Redeem drive a card balance negative.
type Store interface {
	// CreateCard creates a new active card for the owner. It always succeeds
	// for a valid owner identity.
	CreateCard(ownerID string) (*domain.Card, error)

	// ListCardsForOwner returns every card owned by ownerID paired with its
	// computed balance, in card creation order.
	ListCardsForOwner(ownerID string) ([]domain.CardBalance, error)

	// Earn converts a purchase amount to points and appends an earn movement.
	// Returns the points added, which may be zero for small purchases.
	Earn(ownerID, cardNumber string, purchaseAmount decimal.Decimal) (int64, error)

	// Redeem appends a redeem movement after verifying the balance covers it.
	Redeem(ownerID, cardNumber string, points int64) (int64, error)

	// DeactivateCard marks the card inactive; inactive cards reject all
	// ledger operations. Deactivation is the only lifecycle transition.
	DeactivateCard(ownerID, cardNumber string) error
}

// PointsForPurchase applies the earn conversion rule: floor(amount / 10),
// truncating toward zero. Purchases under one unit yield zero points, which
// is a valid outcome, not an error. QuoRem keeps the division exact at any
// input precision; Div would round at its fixed precision before truncating.
func PointsForPurchase(amount decimal.Decimal) int64 {
	q, _ := amount.QuoRem(PointsPerUnit, 0)
	return q.IntPart()
}

// BalanceOf folds a card's movements: earns add, redeems subtract
func BalanceOf(movements []domain.Movement) int64 {
	var balance int64
	for _, m := range movements {
		balance += m.Signed()
	}
	return balance
}
