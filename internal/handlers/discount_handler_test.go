package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"parkhub/internal/middleware"
	"parkhub/internal/models"
	"parkhub/internal/services"
	"parkhub/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testJWTSecret = "test-secret"

// stubDiscountService returns canned answers so the handler and
// middleware wiring can be tested without a database.
type stubDiscountService struct {
	services.DiscountService
	estimate *services.DiscountEstimate
	err      error
}

func (s *stubDiscountService) EstimateDiscount(context.Context, string, primitive.ObjectID, float64) (*services.DiscountEstimate, error) {
	return s.estimate, s.err
}

func setupValidateRouter(stub *stubDiscountService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewDiscountHandler(stub)

	group := router.Group("/api/v1/discounts")
	group.Use(middleware.AuthRequired(testJWTSecret))
	group.POST("/validate", handler.ValidateDiscount)

	return router
}

func bearerToken(t *testing.T) string {
	t.Helper()
	tokens, err := utils.GenerateTokenPair(primitive.NewObjectID(), string(models.UserRoleCustomer), "user@example.com", testJWTSecret)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return "Bearer " + tokens.AccessToken
}

func TestValidateDiscountEndpoint(t *testing.T) {
	stub := &stubDiscountService{
		estimate: &services.DiscountEstimate{
			Valid:          true,
			Reason:         "Discount code is valid.",
			DiscountAmount: 12.5,
		},
	}
	router := setupValidateRouter(stub)

	body, _ := json.Marshal(map[string]interface{}{"code": "SUMMER20", "amount": 50.0})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/discounts/validate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp utils.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != utils.StatusSuccess {
		t.Errorf("expected success status, got %q", resp.Status)
	}

	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected data payload: %#v", resp.Data)
	}
	if data["valid"] != true {
		t.Errorf("expected valid=true, got %v", data["valid"])
	}
	if data["discount_amount"] != 12.5 {
		t.Errorf("expected discount_amount 12.5, got %v", data["discount_amount"])
	}
}

func TestValidateDiscountEndpointIneligibleStillOK(t *testing.T) {
	stub := &stubDiscountService{
		estimate: &services.DiscountEstimate{
			Valid:  false,
			Reason: "Discount code has expired.",
		},
	}
	router := setupValidateRouter(stub)

	body, _ := json.Marshal(map[string]interface{}{"code": "EXPIRED"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/discounts/validate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Ineligibility is a successful evaluation, not an HTTP error.
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp utils.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	data := resp.Data.(map[string]interface{})
	if data["valid"] != false {
		t.Errorf("expected valid=false, got %v", data["valid"])
	}
	if data["reason"] != "Discount code has expired." {
		t.Errorf("unexpected reason: %v", data["reason"])
	}
}

func TestValidateDiscountEndpointRequiresAuth(t *testing.T) {
	router := setupValidateRouter(&stubDiscountService{})

	body, _ := json.Marshal(map[string]interface{}{"code": "SUMMER20"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/discounts/validate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a token, got %d", w.Code)
	}
}

func TestValidateDiscountEndpointMissingCode(t *testing.T) {
	router := setupValidateRouter(&stubDiscountService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/discounts/validate", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing code, got %d", w.Code)
	}
}

func TestAuthRequiredRejectsMalformedToken(t *testing.T) {
	router := setupValidateRouter(&stubDiscountService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/discounts/validate", bytes.NewReader([]byte(`{"code":"X"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer not-a-token")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a malformed token, got %d", w.Code)
	}
}
