package api

import (
	"net/http" // HTTP status codes
	"regexp"   // Regular expressions

	"loyalty_system/internal/auth"  // User registry
	"loyalty_system/internal/utils" // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// Request and Response structs
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Phone    string `json:"phone" binding:"required"`    // Phone must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Request struct for password login; login is email or phone
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`    // Email or phone
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Request struct for phone login with the demo confirmation code
type PhoneLoginRequest struct {
	Phone string `json:"phone" binding:"required"` // Phone must be provided
	Code  string `json:"code" binding:"required"`  // Confirmation code
}

// Response struct for authentication
type AuthResponse struct {
	AccessToken string `json:"access_token"` // JWT token
}

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`) // Minimal email shape
	phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)           // Digits with optional leading plus
)

// isValidPassword checks if the password length is between 8 and 15 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 15 // Return true if length is valid
}

// RegisterHandler creates a new user account
func RegisterHandler(users *auth.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate email, phone and password
		if !emailPattern.MatchString(req.Email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email"})
			return
		}
		if !phonePattern.MatchString(req.Phone) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone"})
			return
		}
		// Validate password length
		if !isValidPassword(req.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-15 characters"})
			return
		}
		// Create the user with default tier and role
		if _, err := users.Register(req.Email, req.Phone, req.Password, "", ""); err != nil {
			// Duplicate email or phone
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
			return
		}
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
	}
}

// LoginHandler authenticates by email or phone plus password and returns a JWT
func LoginHandler(users *auth.Registry, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user, err := users.Authenticate(req.Login, req.Password)
		if err != nil {
			// Unknown login, wrong password or deactivated account
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		issueToken(c, user.ID, user.Tier, user.Role, jwtSecret)
	}
}

// PhoneLoginHandler authenticates by phone and the demo confirmation code.
// No real SMS is sent; the code is fixed.
func PhoneLoginHandler(users *auth.Registry, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PhoneLoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Demo: only the fixed code is accepted
		if req.Code != auth.DemoPhoneCode {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid code"})
			return
		}
		user, err := users.FindByPhone(req.Phone)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		issueToken(c, user.ID, user.Tier, user.Role, jwtSecret)
	}
}

// SendCodeHandler is the demo stand-in for SMS delivery; it always succeeds
func SendCodeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Code sent (demo: " + auth.DemoPhoneCode + ")"})
	}
}

// ProfileHandler returns the authenticated user's profile
func ProfileHandler(users *auth.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, err := users.FindByID(userID.(string))
		if err != nil {
			// Token is valid but the user is gone (process restarted)
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user_id": user.ID,    // Opaque user ID
			"email":   user.Email, // Login email
			"phone":   user.Phone, // Login phone
			"tier":    user.Tier,  // Loyalty tier
			"role":    user.Role,  // Role
		})
	}
}

// issueToken generates the JWT and writes the auth response
func issueToken(c *gin.Context, userID, tier, role, jwtSecret string) {
	token, err := utils.GenerateJWT(userID, tier, role, jwtSecret)
	if err != nil {
		// If token generation fails, return internal server error
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	// Return the token in the response
	c.JSON(http.StatusOK, AuthResponse{AccessToken: token})
}
