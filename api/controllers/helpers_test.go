package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/orders"
	"github.com/angelmondragon/storefront/internal/session"
)

var ngn = currency.MustParseISO("NGN")

type moneyBody struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type summaryBody struct {
	Subtotal  moneyBody `json:"subtotal"`
	Shipping  moneyBody `json:"shipping"`
	Total     moneyBody `json:"total"`
	ItemCount int       `json:"itemCount"`
	LineCount int       `json:"lineCount"`
}

type lineBody struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	LineTotal moneyBody `json:"lineTotal"`
}

type cartBody struct {
	SessionID string      `json:"sessionId"`
	Lines     []lineBody  `json:"lines"`
	Summary   summaryBody `json:"summary"`
}

type errorBody struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newTestRegistry(t *testing.T) *session.Registry {
	t.Helper()
	registry, err := session.NewRegistry(session.RegistryParams{
		Pricing: cart.Pricing{
			Currency:    ngn,
			ShippingFee: decimal.RequireFromString("10.00"),
		},
		Submitter: orders.NewSimulatedSubmitter(0, "ORD"),
	})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return registry
}

// sessionWithItems creates a session holding 10.00 x2 and 5.50 x1.
func sessionWithItems(t *testing.T, registry *session.Registry) string {
	t.Helper()
	sess := registry.Create(context.Background())
	store := sess.Cart()
	if _, err := store.AddItem(cart.Product{ID: "p1", Name: "Tee", UnitPrice: decimal.RequireFromString("10.00")}, 2); err != nil {
		t.Fatalf("add p1: %v", err)
	}
	if _, err := store.AddItem(cart.Product{ID: "p2", Name: "Cap", UnitPrice: decimal.RequireFromString("5.50")}, 1); err != nil {
		t.Fatalf("add p2: %v", err)
	}
	return sess.ID()
}

// newRequest builds a request already bound to sessionID, with optional chi
// URL params given as key/value pairs.
func newRequest(t *testing.T, method, target, sessionID string, body any, params ...string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(params); i += 2 {
		rctx.URLParams.Add(params[i], params[i+1])
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = middleware.WithSessionID(ctx, sessionID)
	return req.WithContext(ctx)
}

func serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data any `json:"data"`
	}{Data: dest}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return body
}
