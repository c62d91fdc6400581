package domain

import "time"

// MovementKind is the closed set of point movement types
type MovementKind string

const (
	MovementEarn   MovementKind = "earn"   // Adds points to the card balance
	MovementRedeem MovementKind = "redeem" // Subtracts points from the card balance
)

// Movement Model: an immutable signed point-quantity event on a card.
// Movements are append-only; they are never edited or deleted.
type Movement struct {
	ID        string       `gorm:"primaryKey;size:36"`     // Opaque unique identifier (UUID)
	CardID    string       `gorm:"index;size:36;not null"` // Owning card reference
	Kind      MovementKind `gorm:"size:8;not null"`        // earn or redeem
	Amount    int64        `gorm:"not null"`               // Non-negative number of points
	CreatedAt time.Time    `gorm:"autoCreateTime"`         // Set at insertion; insertion order is the ordering of record
}

// Signed returns the movement's contribution to the balance fold
func (m Movement) Signed() int64 {
	if m.Kind == MovementRedeem {
		return -m.Amount // Redeem subtracts
	}
	return m.Amount // Earn adds
}
