package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	pkgredis "github.com/angelmondragon/storefront/pkg/redis"
)

const placeOrderPattern = "/api/v1/sessions/{sessionId}/checkout/place-order"

type memoryReplies struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newMemoryReplies() *memoryReplies {
	return &memoryReplies{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryReplies) Get(_ context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", pkgredis.Nil
}

func (m *memoryReplies) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return true, nil
}

func (m *memoryReplies) IdempotencyKey(scope, id string) string {
	return "test:" + scope + ":" + id
}

func withRoutePattern(req *http.Request, pattern string) *http.Request {
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func placeOrderRequest(sessionID, key, body string) *http.Request {
	target := "/api/v1/sessions/" + sessionID + "/checkout/place-order"
	req := withRoutePattern(httptest.NewRequest(http.MethodPost, target, strings.NewReader(body)), placeOrderPattern)
	req = req.WithContext(WithSessionID(req.Context(), sessionID))
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}
	return req
}

func orderHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, fmt.Sprintf(`{"data":{"orderId":"ORD-%d"}}`, *calls))
	})
}

func TestMatchRule(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		pattern string
		ttl     time.Duration
		ok      bool
	}{
		{"place order", http.MethodPost, placeOrderPattern, criticalIdempotencyTTL, true},
		{"seller registration", http.MethodPost, "/api/v1/sellers", defaultIdempotencyTTL, true},
		{"seller registration subrouter", http.MethodPost, "/api/v1/sellers/", defaultIdempotencyTTL, true},
		{"seller plans", http.MethodGet, "/api/v1/sellers", 0, false},
		{"cart add", http.MethodPost, "/api/v1/sessions/{sessionId}/cart/items", 0, false},
		{"root", http.MethodPost, "/", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := matchRule(tt.method, tt.pattern)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.ttl, rule.ttl)
		})
	}
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	var calls int
	resp := httptest.NewRecorder()
	Idempotency(newMemoryReplies(), 0, nil)(orderHandler(&calls)).ServeHTTP(resp, placeOrderRequest("s-1", "", `{}`))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Zero(t, calls)
}

func TestIdempotencyWithoutStorePassesThrough(t *testing.T) {
	var calls int
	Idempotency(nil, 0, nil)(orderHandler(&calls)).ServeHTTP(httptest.NewRecorder(), placeOrderRequest("s-1", "", `{}`))
	assert.Equal(t, 1, calls)
}

func TestIdempotencyReplaysStoredReply(t *testing.T) {
	store := newMemoryReplies()
	handler := Idempotency(store, time.Hour, nil)
	var calls int

	first := httptest.NewRecorder()
	handler(orderHandler(&calls)).ServeHTTP(first, placeOrderRequest("s-1", "abc", `{}`))
	require.Equal(t, http.StatusCreated, first.Code)

	replay := httptest.NewRecorder()
	handler(orderHandler(&calls)).ServeHTTP(replay, placeOrderRequest("s-1", "abc", `{}`))

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "application/json", replay.Header().Get("Content-Type"))
	assert.Equal(t, "true", replay.Header().Get(replayHeader))
	assert.Equal(t, `{"data":{"orderId":"ORD-1"}}`, replay.Body.String())
	for key, ttl := range store.ttls {
		assert.Equal(t, time.Hour, ttl, key)
	}
}

func TestIdempotencyKeysAreScopedPerSession(t *testing.T) {
	handler := Idempotency(newMemoryReplies(), 0, nil)
	var calls int

	handler(orderHandler(&calls)).ServeHTTP(httptest.NewRecorder(), placeOrderRequest("s-1", "same", `{}`))
	other := httptest.NewRecorder()
	handler(orderHandler(&calls)).ServeHTTP(other, placeOrderRequest("s-2", "same", `{}`))

	assert.Equal(t, 2, calls)
	assert.Empty(t, other.Header().Get(replayHeader))
	assert.Contains(t, other.Body.String(), "ORD-2")
}

func TestIdempotencySkipsServerErrors(t *testing.T) {
	handler := Idempotency(newMemoryReplies(), 0, nil)
	var calls int
	flaky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	handler(flaky).ServeHTTP(httptest.NewRecorder(), placeOrderRequest("s-1", "retry-me", `{}`))
	resp := httptest.NewRecorder()
	handler(flaky).ServeHTTP(resp, placeOrderRequest("s-1", "retry-me", `{}`))

	assert.Equal(t, 2, calls)
	assert.Equal(t, http.StatusCreated, resp.Code)
}

func TestIdempotencyRejectsChangedBody(t *testing.T) {
	handler := Idempotency(newMemoryReplies(), 0, nil)
	var calls int

	handler(orderHandler(&calls)).ServeHTTP(httptest.NewRecorder(), placeOrderRequest("s-1", "xyz", `{"a":1}`))
	resp := httptest.NewRecorder()
	handler(orderHandler(&calls)).ServeHTTP(resp, placeOrderRequest("s-1", "xyz", `{"a":2}`))

	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), string(pkgerrors.CodeIdempotency))
	assert.Equal(t, 1, calls)
}
