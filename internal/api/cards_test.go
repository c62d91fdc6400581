package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"loyalty_system/internal/domain"
	"loyalty_system/internal/ledger"
	"loyalty_system/internal/middleware"
	"loyalty_system/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const testSecret = "handler-test-secret"

// newCardRouter wires the card routes against an in-memory ledger with the
// cache disabled, plus a bearer token for the given owner.
func newCardRouter(t *testing.T, ownerID string) (*gin.Engine, ledger.Store, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := ledger.NewMemoryStore()
	token, err := utils.GenerateJWT(ownerID, "Basic", "client", testSecret)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	r := gin.New()
	group := r.Group("/cards")
	group.Use(middleware.JWTAuthMiddleware(testSecret))
	group.POST("", CreateCardHandler(store, nil))
	group.GET("", MyCardsHandler(store, nil))
	group.POST("/earn", EarnHandler(store, nil))
	group.POST("/redeem", RedeemHandler(store, nil))
	group.POST("/deactivate", DeactivateCardHandler(store, nil))
	return r, store, token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateCardAndList(t *testing.T) {
	r, _, token := newCardRouter(t, "owner-1")

	w := doJSON(t, r, http.MethodPost, "/cards", token, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var created struct {
		Card domain.Card `json:"card"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.Card.CardNumber == "" {
		t.Fatal("create response has no card number")
	}
	if !created.Card.IsActive {
		t.Error("new card is not active")
	}

	w = doJSON(t, r, http.MethodGet, "/cards", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", w.Code)
	}
	var listing struct {
		Cards []domain.CardBalance `json:"cards"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listing.Cards) != 1 {
		t.Fatalf("listing has %d cards, want 1", len(listing.Cards))
	}
	if listing.Cards[0].Balance != 0 {
		t.Errorf("new card balance = %d, want 0", listing.Cards[0].Balance)
	}
}

func TestEarnRedeemFlow(t *testing.T) {
	r, store, token := newCardRouter(t, "owner-2")
	card, err := store.CreateCard("owner-2")
	if err != nil {
		t.Fatalf("create card: %v", err)
	}

	w := doJSON(t, r, http.MethodPost, "/cards/earn", token, gin.H{
		"card_number":     card.CardNumber,
		"purchase_amount": 100,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("earn status = %d: %s", w.Code, w.Body.String())
	}
	var earned struct {
		Added int64 `json:"added"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &earned); err != nil {
		t.Fatalf("decode earn response: %v", err)
	}
	if earned.Added != 10 {
		t.Errorf("added = %d, want 10", earned.Added)
	}

	w = doJSON(t, r, http.MethodPost, "/cards/redeem", token, gin.H{
		"card_number": card.CardNumber,
		"points":      4,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("redeem status = %d: %s", w.Code, w.Body.String())
	}

	// Over-redeeming maps to 400 and leaves the balance alone
	w = doJSON(t, r, http.MethodPost, "/cards/redeem", token, gin.H{
		"card_number": card.CardNumber,
		"points":      7,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("over-redeem status = %d, want 400: %s", w.Code, w.Body.String())
	}

	cards, _ := store.ListCardsForOwner("owner-2")
	if cards[0].Balance != 6 {
		t.Errorf("balance = %d, want 6", cards[0].Balance)
	}
}

func TestEarnUnknownCardIs404(t *testing.T) {
	r, _, token := newCardRouter(t, "owner-3")
	w := doJSON(t, r, http.MethodPost, "/cards/earn", token, gin.H{
		"card_number":     "does-not-exist",
		"purchase_amount": 50,
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("earn status = %d, want 404: %s", w.Code, w.Body.String())
	}
}

func TestRedeemRejectsBadBody(t *testing.T) {
	r, store, token := newCardRouter(t, "owner-4")
	card, _ := store.CreateCard("owner-4")

	tests := []struct {
		name string
		body gin.H
	}{
		{name: "ZeroPoints", body: gin.H{"card_number": card.CardNumber, "points": 0}},
		{name: "NegativePoints", body: gin.H{"card_number": card.CardNumber, "points": -3}},
		{name: "MissingCardNumber", body: gin.H{"points": 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/cards/redeem", token, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestEarnRejectsNonPositiveAmount(t *testing.T) {
	r, store, token := newCardRouter(t, "owner-5")
	card, _ := store.CreateCard("owner-5")

	for _, amount := range []any{0, -10} {
		w := doJSON(t, r, http.MethodPost, "/cards/earn", token, gin.H{
			"card_number":     card.CardNumber,
			"purchase_amount": amount,
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("earn(%v) status = %d, want 400", amount, w.Code)
		}
	}
}

func TestCardRoutesRequireToken(t *testing.T) {
	r, _, _ := newCardRouter(t, "owner-6")
	w := doJSON(t, r, http.MethodGet, "/cards", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", w.Code)
	}
}

func TestBalanceSumsAcrossCards(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := ledger.NewMemoryStore()
	token, err := utils.GenerateJWT("owner-b", "Gold", "client", testSecret)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	r := gin.New()
	group := r.Group("/loyalty")
	group.Use(middleware.JWTAuthMiddleware(testSecret))
	group.GET("/balance", BalanceHandler(store))

	first, _ := store.CreateCard("owner-b")
	second, _ := store.CreateCard("owner-b")
	if _, err := store.Earn("owner-b", first.CardNumber, decimal.RequireFromString("100")); err != nil {
		t.Fatalf("earn: %v", err)
	}
	if _, err := store.Earn("owner-b", second.CardNumber, decimal.RequireFromString("50")); err != nil {
		t.Fatalf("earn: %v", err)
	}
	if _, err := store.Redeem("owner-b", first.CardNumber, 3); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	w := doJSON(t, r, http.MethodGet, "/loyalty/balance", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("balance status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Points int64  `json:"points"`
		Tier   string `json:"tier"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode balance response: %v", err)
	}
	if resp.Points != 12 {
		t.Errorf("points = %d, want 12", resp.Points)
	}
	if resp.Tier != "Gold" {
		t.Errorf("tier = %q, want Gold", resp.Tier)
	}
}

func TestDeactivateThenOperationsFail(t *testing.T) {
	r, store, token := newCardRouter(t, "owner-7")
	card, _ := store.CreateCard("owner-7")

	w := doJSON(t, r, http.MethodPost, "/cards/deactivate", token, gin.H{"card_number": card.CardNumber})
	if w.Code != http.StatusOK {
		t.Fatalf("deactivate status = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/cards/earn", token, gin.H{
		"card_number":     card.CardNumber,
		"purchase_amount": 100,
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("earn on inactive card status = %d, want 404", w.Code)
	}
}
