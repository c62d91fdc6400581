package domain

// User Model. Users live in the in-memory registry only; identity is an
// external collaborator of the ledger, which sees nothing but the ID.
type User struct {
	ID           string // Opaque unique identifier (UUID)
	Email        string // Unique login email
	Phone        string // Unique login phone
	PasswordHash string // Bcrypt hash of the password
	Tier         string // Loyalty tier: Basic, Gold, Platinum
	Role         string // Role: client or admin
	IsActive     bool   // Deactivated users cannot authenticate
}
