package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"loyalty_system/internal/auth"
	"loyalty_system/internal/middleware"

	"github.com/gin-gonic/gin"
)

// newAuthRouter wires the auth and profile routes against a fresh registry
func newAuthRouter(t *testing.T) (*gin.Engine, *auth.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := auth.NewRegistry()
	r := gin.New()
	authGroup := r.Group("/auth")
	authGroup.POST("/register", RegisterHandler(users))
	authGroup.POST("/login", LoginHandler(users, testSecret))
	authGroup.POST("/phone-login", PhoneLoginHandler(users, testSecret))
	authGroup.POST("/send-code", SendCodeHandler())

	loyaltyGroup := r.Group("/loyalty")
	loyaltyGroup.Use(middleware.JWTAuthMiddleware(testSecret))
	loyaltyGroup.GET("/profile", ProfileHandler(users))
	loyaltyGroup.GET("/admin/dashboard", middleware.AdminOnlyMiddleware(), AdminDashboardHandler())
	return r, users
}

func TestRegisterLoginProfile(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"email":    "dave@example.com",
		"phone":    "+79995556677",
		"password": "password-ok",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"login":    "dave@example.com",
		"password": "password-ok",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}
	var resp AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("login returned empty token")
	}

	w = doJSON(t, r, http.MethodGet, "/loyalty/profile", resp.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("profile status = %d: %s", w.Code, w.Body.String())
	}
	var profile struct {
		Email string `json:"email"`
		Tier  string `json:"tier"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.Email != "dave@example.com" {
		t.Errorf("profile email = %q", profile.Email)
	}
	if profile.Tier != "Basic" {
		t.Errorf("profile tier = %q, want Basic", profile.Tier)
	}
}

func TestRegisterValidation(t *testing.T) {
	r, _ := newAuthRouter(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{name: "BadEmail", body: gin.H{"email": "not-an-email", "phone": "+79990000001", "password": "password-ok"}},
		{name: "BadPhone", body: gin.H{"email": "x@example.com", "phone": "abc", "password": "password-ok"}},
		{name: "ShortPassword", body: gin.H{"email": "x@example.com", "phone": "+79990000002", "password": "short"}},
		{name: "MissingFields", body: gin.H{"email": "x@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/auth/register", "", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestPhoneLoginDemoCode(t *testing.T) {
	r, users := newAuthRouter(t)
	users.SeedDemoUsers()

	w := doJSON(t, r, http.MethodPost, "/auth/phone-login", "", gin.H{
		"phone": "+79991112233",
		"code":  auth.DemoPhoneCode,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("phone login status = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/auth/phone-login", "", gin.H{
		"phone": "+79991112233",
		"code":  "0000",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong code status = %d, want 401", w.Code)
	}
}

func TestAdminDashboardRequiresAdminRole(t *testing.T) {
	r, users := newAuthRouter(t)
	users.SeedDemoUsers()

	login := func(email, password string) string {
		w := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{"login": email, "password": password})
		if w.Code != http.StatusOK {
			t.Fatalf("login %s status = %d", email, w.Code)
		}
		var resp AuthResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode login response: %v", err)
		}
		return resp.AccessToken
	}

	clientToken := login("client@loyalty.example", "client123")
	w := doJSON(t, r, http.MethodGet, "/loyalty/admin/dashboard", clientToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("client on admin route status = %d, want 403", w.Code)
	}

	adminToken := login("admin@loyalty.example", "admin123")
	w = doJSON(t, r, http.MethodGet, "/loyalty/admin/dashboard", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin on admin route status = %d, want 200", w.Code)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	r, users := newAuthRouter(t)
	users.SeedDemoUsers()

	w := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"login":    "client@loyalty.example",
		"password": "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
