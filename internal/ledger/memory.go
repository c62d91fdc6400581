package ledger

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"        // UUID generation for card and movement IDs
	"github.com/shopspring/decimal" // Exact decimal arithmetic

	"loyalty_system/internal/domain" // Importing domain models
)

// memoryCard bundles a card with its movement log and the mutex that
// serializes all operations touching that card.
type memoryCard struct {
	mu        sync.Mutex        // Per-card lock: read balance, validate, append is one critical section
	card      domain.Card       // The card record
	movements []domain.Movement // Append-only movement log, insertion order
}

// MemoryStore is the in-process reference implementation of Store. Cards and
// movements live for the process lifetime; operations on different cards do
// not block one another.
type MemoryStore struct {
	mu       sync.RWMutex             // Guards the maps and per-owner order below
	byNumber map[string]*memoryCard   // Card number -> card (numbers are unique)
	byOwner  map[string][]*memoryCard // Owner ID -> cards in creation order
}

// NewMemoryStore returns an empty in-memory ledger store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byNumber: make(map[string]*memoryCard),
		byOwner:  make(map[string][]*memoryCard),
	}
}

// CreateCard creates a new active card for the owner
func (s *MemoryStore) CreateCard(ownerID string) (*domain.Card, error) {
	card := domain.Card{
		ID:         uuid.NewString(), // Opaque unique identifier
		OwnerID:    ownerID,          // Set once, immutable
		CardNumber: newCardNumber(),  // Unique random hex display number
		IsActive:   true,             // Cards start active
		CreatedAt:  time.Now().UTC(), // Listing order follows creation order
	}
	mc := &memoryCard{card: card}
	s.mu.Lock()
	s.byNumber[card.CardNumber] = mc
	s.byOwner[ownerID] = append(s.byOwner[ownerID], mc)
	s.mu.Unlock()
	out := card // Return a copy; the store keeps exclusive ownership
	return &out, nil
}

// ListCardsForOwner returns the owner's cards with balances, creation order
func (s *MemoryStore) ListCardsForOwner(ownerID string) ([]domain.CardBalance, error) {
	s.mu.RLock()
	cards := make([]*memoryCard, len(s.byOwner[ownerID]))
	copy(cards, s.byOwner[ownerID])
	s.mu.RUnlock()

	result := make([]domain.CardBalance, 0, len(cards))
	for _, mc := range cards {
		mc.mu.Lock()
		result = append(result, domain.CardBalance{
			Card:    mc.card,                 // Copied by value
			Balance: BalanceOf(mc.movements), // Fold under the card lock
		})
		mc.mu.Unlock()
	}
	return result, nil
}

// Earn converts the purchase amount to points and appends an earn movement.
// Zero-point earns are recorded too, so the success path is uniform.
func (s *MemoryStore) Earn(ownerID, cardNumber string, purchaseAmount decimal.Decimal) (int64, error) {
	if purchaseAmount.IsNegative() {
		return 0, ErrInvalidAmount
	}
	mc := s.lookup(ownerID, cardNumber)
	if mc == nil {
		return 0, ErrCardNotFound
	}
	points := PointsForPurchase(purchaseAmount)
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if !mc.card.IsActive {
		return 0, ErrCardNotFound // Inactive cards reject all ledger operations
	}
	mc.movements = append(mc.movements, newMovement(mc.card.ID, domain.MovementEarn, points))
	return points, nil
}

// Redeem verifies the balance covers the points, then appends a redeem
// movement. On failure no movement is recorded.
func (s *MemoryStore) Redeem(ownerID, cardNumber string, points int64) (int64, error) {
	if points <= 0 {
		return 0, ErrInvalidAmount
	}
	mc := s.lookup(ownerID, cardNumber)
	if mc == nil {
		return 0, ErrCardNotFound
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if !mc.card.IsActive {
		return 0, ErrCardNotFound
	}
	// Balance check and append are one critical section: two concurrent
	// redeems can never both pass the check on the same balance.
	if BalanceOf(mc.movements) < points {
		return 0, ErrInsufficientBalance
	}
	mc.movements = append(mc.movements, newMovement(mc.card.ID, domain.MovementRedeem, points))
	return points, nil
}

// DeactivateCard marks the card inactive
func (s *MemoryStore) DeactivateCard(ownerID, cardNumber string) error {
	mc := s.lookup(ownerID, cardNumber)
	if mc == nil {
		return ErrCardNotFound
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if !mc.card.IsActive {
		return ErrCardNotFound // Already inactive counts as not found
	}
	mc.card.IsActive = false
	return nil
}

// lookup resolves a card by number scoped to the owner. A card number
// belonging to another owner never matches.
func (s *MemoryStore) lookup(ownerID, cardNumber string) *memoryCard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mc, ok := s.byNumber[cardNumber]
	if !ok || mc.card.OwnerID != ownerID {
		return nil
	}
	return mc
}

// newMovement builds an immutable movement record
func newMovement(cardID string, kind domain.MovementKind, amount int64) domain.Movement {
	return domain.Movement{
		ID:        uuid.NewString(), // Opaque unique identifier
		CardID:    cardID,           // Owning card
		Kind:      kind,             // earn or redeem
		Amount:    amount,           // Non-negative points
		CreatedAt: time.Now().UTC(), // Wall clock; insertion order is the ordering of record
	}
}

// newCardNumber generates a unique 32-char hex display number
func newCardNumber() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
