package auth

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"     // UUID generation for user IDs
	"golang.org/x/crypto/bcrypt" // Password hashing

	"loyalty_system/internal/domain" // Importing domain models
)

// DemoPhoneCode is the fixed confirmation code accepted by phone login.
// There is no real SMS delivery in this demo.
const DemoPhoneCode = "1234"

// Errors returned by the registry
var (
	ErrInvalidCredentials = errors.New("invalid credentials") // Unknown login or wrong password
	ErrUserExists         = errors.New("user already exists") // Email or phone already registered
	ErrUserNotFound       = errors.New("user not found")      // No user with that identifier
	ErrUserInactive       = errors.New("account deactivated") // User exists but may not authenticate
)

// Registry is the in-memory user store backing authentication. The ledger
// never sees it; it only consumes the opaque user ID the registry hands out.
type Registry struct {
	mu      sync.RWMutex            // Guards all maps
	byID    map[string]*domain.User // User ID -> user
	byEmail map[string]*domain.User // Lowercased email -> user
	byPhone map[string]*domain.User // Phone -> user
}

// NewRegistry returns an empty user registry
func NewRegistry() *Registry {
	return &Registry{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
		byPhone: make(map[string]*domain.User),
	}
}

// SeedDemoUsers adds the two well-known demo accounts
func (r *Registry) SeedDemoUsers() {
	// Errors ignored: the registry is empty when this runs at startup
	_, _ = r.Register("admin@loyalty.example", "+79998887766", "admin123", "Platinum", "admin")
	_, _ = r.Register("client@loyalty.example", "+79991112233", "client123", "Gold", "client")
}

// Register creates a new active user with a bcrypt-hashed password
func (r *Registry) Register(email, phone, password, tier, role string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email)) // Lowercase email for uniqueness
	phone = strings.TrimSpace(phone)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if tier == "" {
		tier = "Basic" // New users start at the base tier
	}
	if role == "" {
		role = "client"
	}
	user := &domain.User{
		ID:           uuid.NewString(), // Opaque unique identifier
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		Tier:         tier,
		Role:         role,
		IsActive:     true,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// Reject duplicate email or phone
	if _, ok := r.byEmail[email]; ok {
		return nil, ErrUserExists
	}
	if _, ok := r.byPhone[phone]; ok {
		return nil, ErrUserExists
	}
	r.byID[user.ID] = user
	r.byEmail[email] = user
	r.byPhone[phone] = user
	out := *user // Return a copy
	return &out, nil
}

// Authenticate verifies an email-or-phone login against the password
func (r *Registry) Authenticate(login, password string) (*domain.User, error) {
	r.mu.RLock()
	user, ok := r.byEmail[strings.ToLower(strings.TrimSpace(login))]
	if !ok {
		user, ok = r.byPhone[strings.TrimSpace(login)] // Fall back to phone lookup
	}
	r.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidCredentials
	}
	// Compare provided password with stored hash
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	out := *user
	return &out, nil
}

// FindByPhone returns the active user registered with the phone number
func (r *Registry) FindByPhone(phone string) (*domain.User, error) {
	r.mu.RLock()
	user, ok := r.byPhone[strings.TrimSpace(phone)]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	out := *user
	return &out, nil
}

// FindByID returns the user with the given opaque ID
func (r *Registry) FindByID(id string) (*domain.User, error) {
	r.mu.RLock()
	user, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *user
	return &out, nil
}
