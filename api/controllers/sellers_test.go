package controllers

import (
	"net/http"
	"testing"

	"github.com/angelmondragon/storefront/internal/seller"
)

func newTestSellerService(t *testing.T) seller.Service {
	t.Helper()
	svc, err := seller.NewService(seller.ServiceParams{Currency: ngn})
	if err != nil {
		t.Fatalf("new seller service: %v", err)
	}
	return svc
}

func TestSellerPlans(t *testing.T) {
	resp := serve(SellerPlans(newTestSellerService(t)), newRequest(t, http.MethodGet, "/api/v1/sellers/plans", "", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var plans []struct {
		ID    string    `json:"id"`
		Price moneyBody `json:"price"`
	}
	decodeData(t, resp, &plans)
	if len(plans) != 2 {
		t.Fatalf("expected 2 plans got %d", len(plans))
	}
	if plans[0].ID != "standard" || plans[0].Price.Amount != "1000.00" {
		t.Fatalf("unexpected first plan %+v", plans[0])
	}
	if plans[1].ID != "premium" || plans[1].Price.Amount != "3000.00" {
		t.Fatalf("unexpected second plan %+v", plans[1])
	}
}

func TestSellerRegister(t *testing.T) {
	handler := SellerRegister(newTestSellerService(t), nil)
	payload := map[string]any{
		"storeName":   "Ada Threads",
		"description": "Handmade clothing",
		"phone":       "08031234567",
		"address":     "4 Broad Street, Lagos",
		"plan":        "premium",
	}

	resp := serve(handler, newRequest(t, http.MethodPost, "/api/v1/sellers", "", payload))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		SellerID  string `json:"sellerId"`
		StoreName string `json:"storeName"`
		Plan      struct {
			ID string `json:"id"`
		} `json:"plan"`
	}
	decodeData(t, resp, &body)
	if body.SellerID == "" || body.Plan.ID != "premium" {
		t.Fatalf("unexpected registration %+v", body)
	}

	resp = serve(handler, newRequest(t, http.MethodPost, "/api/v1/sellers", "", payload))
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for duplicate store got %d", resp.Code)
	}
	if errBody := decodeError(t, resp); errBody.Error.Details[seller.SubmitField] == "" {
		t.Fatalf("expected submit detail, got %+v", errBody.Error.Details)
	}
}

func TestSellerRegisterFieldErrors(t *testing.T) {
	handler := SellerRegister(newTestSellerService(t), nil)

	resp := serve(handler, newRequest(t, http.MethodPost, "/api/v1/sellers", "", map[string]any{"storeName": "  "}))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	details := decodeError(t, resp).Error.Details
	want := map[string]string{
		"storeName":   "Store name is required",
		"description": "Description is required",
		"phone":       "Phone number is required",
		"address":     "Address is required",
		"plan":        "Please select a subscription plan",
	}
	for field, msg := range want {
		if details[field] != msg {
			t.Fatalf("field %s: expected %q got %q", field, msg, details[field])
		}
	}
}
