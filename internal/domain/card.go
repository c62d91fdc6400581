package domain

import "time"

// Card Model
type Card struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`           // Opaque unique identifier (UUID)
	OwnerID    string    `gorm:"index;size:36;not null" json:"-"`        // Owning user, set once at creation
	CardNumber string    `gorm:"uniqueIndex;size:32" json:"card_number"` // Unique display identifier (random hex)
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"` // Inactive cards reject all ledger operations
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"-"`                // Listing order is creation order
}

// CardBalance pairs a card with its computed points balance
type CardBalance struct {
	Card    Card  `json:"card"`    // The card itself
	Balance int64 `json:"balance"` // Fold of all movements: earns minus redeems
}
