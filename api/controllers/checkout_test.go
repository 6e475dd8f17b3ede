package controllers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront/internal/session"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

type checkoutBody struct {
	Stage    string            `json:"stage"`
	Step     int               `json:"step"`
	Steps    int               `json:"steps"`
	Errors   map[string]string `json:"errors"`
	Shipping map[string]string `json:"shipping"`
	Payment  struct {
		MaskedCard string `json:"maskedCard"`
		CardLast4  string `json:"cardLast4"`
		HasCVV     bool   `json:"hasCvv"`
	} `json:"payment"`
	Summary summaryBody `json:"summary"`
	Review  *struct {
		MaskedCard string      `json:"maskedCard"`
		Lines      []lineBody  `json:"lines"`
		Summary    summaryBody `json:"summary"`
	} `json:"review"`
	Completed bool `json:"completed"`
}

type confirmationBody struct {
	OrderID   string    `json:"orderId"`
	Total     moneyBody `json:"total"`
	ItemCount int       `json:"itemCount"`
	LineCount int       `json:"lineCount"`
}

var validShipping = map[string]any{
	"fullName": "Ada Obi",
	"address":  "12 Marina Road",
	"city":     "Lagos",
	"state":    "LA",
	"zipCode":  "10001",
	"phone":    "(555) 123-4567",
}

var validPayment = map[string]any{
	"cardNumber":     "4242 4242 4242 4242",
	"expiryDate":     "12/29",
	"cvv":            "123",
	"cardHolderName": "Ada Obi",
}

func beginCheckout(t *testing.T, registry *session.Registry, sessionID string) {
	t.Helper()
	resp := serve(CheckoutBegin(registry, nil), newRequest(t, http.MethodPost, "/checkout", sessionID, nil))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
}

func TestCheckoutBeginRequiresItems(t *testing.T) {
	registry := newTestRegistry(t)
	sess := registry.Create(context.Background())

	resp := serve(CheckoutBegin(registry, nil), newRequest(t, http.MethodPost, "/checkout", sess.ID(), nil))
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeStateConflict), decodeError(t, resp).Error.Code)
}

func TestCheckoutFetchBeforeBegin(t *testing.T) {
	registry := newTestRegistry(t)
	sessionID := sessionWithItems(t, registry)

	resp := serve(CheckoutFetch(registry, nil), newRequest(t, http.MethodGet, "/checkout", sessionID, nil))
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCheckoutNextBlockedByZip(t *testing.T) {
	registry := newTestRegistry(t)
	sessionID := sessionWithItems(t, registry)
	beginCheckout(t, registry, sessionID)

	shipping := map[string]any{}
	for k, v := range validShipping {
		shipping[k] = v
	}
	shipping["zipCode"] = "1234"
	resp := serve(CheckoutSetShipping(registry, nil), newRequest(t, http.MethodPut, "/checkout/shipping", sessionID, shipping))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = serve(CheckoutNext(registry, nil), newRequest(t, http.MethodPost, "/checkout/next", sessionID, nil))
	require.Equal(t, http.StatusBadRequest, resp.Code)
	body := decodeError(t, resp)
	assert.Equal(t, map[string]string{"zipCode": "Invalid ZIP code format"}, body.Error.Details)

	resp = serve(CheckoutFetch(registry, nil), newRequest(t, http.MethodGet, "/checkout", sessionID, nil))
	var state checkoutBody
	decodeData(t, resp, &state)
	assert.Equal(t, "shipping", state.Stage)
	assert.Equal(t, "Invalid ZIP code format", state.Errors["zipCode"])

	resp = serve(CheckoutSetField(registry, nil), newRequest(t, http.MethodPatch, "/checkout/field", sessionID,
		map[string]any{"field": "zipCode", "value": "12345"}))
	require.Equal(t, http.StatusOK, resp.Code)
	var edited checkoutBody
	decodeData(t, resp, &edited)
	assert.Empty(t, edited.Errors)

	resp = serve(CheckoutNext(registry, nil), newRequest(t, http.MethodPost, "/checkout/next", sessionID, nil))
	require.Equal(t, http.StatusOK, resp.Code)
	var advanced checkoutBody
	decodeData(t, resp, &advanced)
	assert.Equal(t, "payment", advanced.Stage)
	assert.Equal(t, 2, advanced.Step)
	assert.Equal(t, 3, advanced.Steps)
	assert.Empty(t, advanced.Errors)
}

func TestCheckoutEndToEnd(t *testing.T) {
	registry := newTestRegistry(t)
	sessionID := sessionWithItems(t, registry)
	beginCheckout(t, registry, sessionID)

	steps := []struct {
		handler http.HandlerFunc
		method  string
		body    any
	}{
		{CheckoutSetShipping(registry, nil), http.MethodPut, validShipping},
		{CheckoutNext(registry, nil), http.MethodPost, nil},
		{CheckoutSetPayment(registry, nil), http.MethodPut, validPayment},
		{CheckoutNext(registry, nil), http.MethodPost, nil},
	}
	var state checkoutBody
	for i, step := range steps {
		resp := serve(step.handler, newRequest(t, step.method, "/checkout", sessionID, step.body))
		require.Equal(t, http.StatusOK, resp.Code, "step %d: %s", i, resp.Body.String())
		decodeData(t, resp, &state)
	}

	assert.Equal(t, "review", state.Stage)
	require.NotNil(t, state.Review)
	assert.Equal(t, "**** **** **** 4242", state.Review.MaskedCard)
	assert.Len(t, state.Review.Lines, 2)
	assert.Equal(t, "25.50", state.Review.Summary.Subtotal.Amount)
	assert.Equal(t, "10.00", state.Review.Summary.Shipping.Amount)
	assert.Equal(t, "35.50", state.Review.Summary.Total.Amount)
	assert.True(t, state.Payment.HasCVV)
	assert.Equal(t, "4242", state.Payment.CardLast4)

	resp := serve(CheckoutPlaceOrder(registry, nil), newRequest(t, http.MethodPost, "/checkout/place-order", sessionID, nil))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var confirmation confirmationBody
	decodeData(t, resp, &confirmation)
	assert.True(t, strings.HasPrefix(confirmation.OrderID, "ORD-"))
	assert.Equal(t, "35.50", confirmation.Total.Amount)
	assert.Equal(t, 3, confirmation.ItemCount)
	assert.Equal(t, 2, confirmation.LineCount)

	resp = serve(CartFetch(registry, nil), newRequest(t, http.MethodGet, "/cart", sessionID, nil))
	var cartState cartBody
	decodeData(t, resp, &cartState)
	assert.Empty(t, cartState.Lines)

	resp = serve(CheckoutPlaceOrder(registry, nil), newRequest(t, http.MethodPost, "/checkout/place-order", sessionID, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestCheckoutResponseHidesCVV(t *testing.T) {
	registry := newTestRegistry(t)
	sessionID := sessionWithItems(t, registry)
	beginCheckout(t, registry, sessionID)
	serve(CheckoutSetShipping(registry, nil), newRequest(t, http.MethodPut, "/checkout/shipping", sessionID, validShipping))
	serve(CheckoutNext(registry, nil), newRequest(t, http.MethodPost, "/checkout/next", sessionID, nil))

	resp := serve(CheckoutSetPayment(registry, nil), newRequest(t, http.MethodPut, "/checkout/payment", sessionID, validPayment))
	require.Equal(t, http.StatusOK, resp.Code)
	raw := resp.Body.String()
	assert.NotContains(t, raw, "4242 4242 4242 4242")
	assert.NotContains(t, raw, `"cvv"`)
}

func TestCheckoutBackKeepsData(t *testing.T) {
	registry := newTestRegistry(t)
	sessionID := sessionWithItems(t, registry)
	beginCheckout(t, registry, sessionID)

	resp := serve(CheckoutBack(registry, nil), newRequest(t, http.MethodPost, "/checkout/back", sessionID, nil))
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	serve(CheckoutSetShipping(registry, nil), newRequest(t, http.MethodPut, "/checkout/shipping", sessionID, validShipping))
	serve(CheckoutNext(registry, nil), newRequest(t, http.MethodPost, "/checkout/next", sessionID, nil))

	resp = serve(CheckoutBack(registry, nil), newRequest(t, http.MethodPost, "/checkout/back", sessionID, nil))
	require.Equal(t, http.StatusOK, resp.Code)
	var state checkoutBody
	decodeData(t, resp, &state)
	assert.Equal(t, "shipping", state.Stage)
	assert.Equal(t, "Ada Obi", state.Shipping["fullName"])
}

func TestCheckoutSetPaymentWrongStage(t *testing.T) {
	registry := newTestRegistry(t)
	sessionID := sessionWithItems(t, registry)
	beginCheckout(t, registry, sessionID)

	resp := serve(CheckoutSetPayment(registry, nil), newRequest(t, http.MethodPut, "/checkout/payment", sessionID, validPayment))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestCheckoutAbandonKeepsCart(t *testing.T) {
	registry := newTestRegistry(t)
	sessionID := sessionWithItems(t, registry)
	beginCheckout(t, registry, sessionID)

	resp := serve(CheckoutAbandon(registry, nil), newRequest(t, http.MethodDelete, "/checkout", sessionID, nil))
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = serve(CheckoutFetch(registry, nil), newRequest(t, http.MethodGet, "/checkout", sessionID, nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = serve(CartFetch(registry, nil), newRequest(t, http.MethodGet, "/cart", sessionID, nil))
	var cartState cartBody
	decodeData(t, resp, &cartState)
	assert.Len(t, cartState.Lines, 2)
}

func TestCheckoutSetFieldPinnedToStage(t *testing.T) {
	registry := newTestRegistry(t)
	sessionID := sessionWithItems(t, registry)
	beginCheckout(t, registry, sessionID)
	handler := CheckoutSetField(registry, nil)

	resp := serve(handler, newRequest(t, http.MethodPatch, "/checkout/field", sessionID,
		map[string]any{"stage": "payment", "field": "cardNumber", "value": "4242-4242-4242-4242"}))
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = serve(handler, newRequest(t, http.MethodPatch, "/checkout/field", sessionID,
		map[string]any{"stage": "billing", "field": "city", "value": "Abuja"}))
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, map[string]string{"stage": "is invalid"}, decodeError(t, resp).Error.Details)

	resp = serve(handler, newRequest(t, http.MethodPatch, "/checkout/field", sessionID,
		map[string]any{"stage": "shipping", "field": "phone", "value": "555-123-4567"}))
	require.Equal(t, http.StatusOK, resp.Code)
	var state checkoutBody
	decodeData(t, resp, &state)
	assert.Equal(t, "(555) 123-4567", state.Shipping["phone"])
}

func TestCheckoutPaymentAcceptsDashedCard(t *testing.T) {
	registry := newTestRegistry(t)
	sessionID := sessionWithItems(t, registry)
	beginCheckout(t, registry, sessionID)

	resp := serve(CheckoutSetShipping(registry, nil), newRequest(t, http.MethodPut, "/checkout/shipping", sessionID, validShipping))
	require.Equal(t, http.StatusOK, resp.Code)
	resp = serve(CheckoutNext(registry, nil), newRequest(t, http.MethodPost, "/checkout/next", sessionID, nil))
	require.Equal(t, http.StatusOK, resp.Code)

	payment := map[string]any{}
	for k, v := range validPayment {
		payment[k] = v
	}
	payment["cardNumber"] = "4242-4242-4242-4242"
	resp = serve(CheckoutSetPayment(registry, nil), newRequest(t, http.MethodPut, "/checkout/payment", sessionID, payment))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = serve(CheckoutNext(registry, nil), newRequest(t, http.MethodPost, "/checkout/next", sessionID, nil))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var state checkoutBody
	decodeData(t, resp, &state)
	assert.Equal(t, "review", state.Stage)
	assert.Equal(t, "**** **** **** 4242", state.Payment.MaskedCard)
}
