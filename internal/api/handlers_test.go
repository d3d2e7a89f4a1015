// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/mvallor/personalize/internal/catalog"
	"github.com/mvallor/personalize/internal/interaction"
	"github.com/mvallor/personalize/internal/observable"
	"github.com/mvallor/personalize/internal/recommend"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func testProducts() []catalog.Product {
	return []catalog.Product{
		{ID: "p1", Name: "Heritage Chronograph", Category: "timepieces", Price: 12500},
		{ID: "p2", Name: "Grand Tourbillon", Category: "timepieces", Price: 48000},
		{ID: "p3", Name: "Calfskin Tote", Category: "leather goods", Price: 2900},
		{ID: "p4", Name: "Silk Foulard", Category: "accessories", Price: 450},
		{ID: "p5", Name: "Cashmere Overcoat", Category: "ready to wear", Price: 5200},
		{ID: "p6", Name: "Python Clutch", Category: "leather goods", Price: 3400},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *interaction.Store) {
	t.Helper()
	store := interaction.NewStore(interaction.NewMemoryKV(0),
		interaction.WithIdentity(func() string { return "user-test" }))
	engine := recommend.NewEngine(recommend.WithSeed(42))
	catalogStore := observable.New(testProducts())
	h := NewHandler(store, engine, catalogStore, nil, 4, 5)
	router := NewRouter(h, RouterConfig{
		RateLimit:       1000,
		RateLimitWindow: time.Minute,
		CORSOrigins:     []string{"*"},
		Timeout:         5 * time.Second,
	})
	return router, store
}

func doRequest(t *testing.T, router http.Handler, method, path string, body []byte) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope from %q: %v", rec.Body.String(), err)
	}
	return rec, env
}

func TestRecordInteraction(t *testing.T) {
	router, store := newTestRouter(t)

	body := []byte(`{"productId": "p1", "action": "view"}`)
	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/interactions", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if !env.Success {
		t.Fatalf("success = false, error = %+v", env.Error)
	}

	var entry interaction.Interaction
	if err := json.Unmarshal(env.Data, &entry); err != nil {
		t.Fatal(err)
	}
	if entry.ProductID != "p1" || entry.Action != interaction.ActionView {
		t.Errorf("entry = %+v", entry)
	}
	if entry.UserID != "user-test" {
		t.Errorf("user id = %q, want user-test", entry.UserID)
	}
	if entry.SessionID != store.SessionID() {
		t.Errorf("session id = %q, want %q", entry.SessionID, store.SessionID())
	}
	if store.Len() != 1 {
		t.Errorf("store length = %d, want 1", store.Len())
	}
}

func TestRecordInteractionWithProductData(t *testing.T) {
	router, store := newTestRouter(t)

	body := []byte(`{"productId": "p1", "action": "like", "productData": {"name": "Heritage Chronograph", "category": "timepieces", "price": 12500}}`)
	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/interactions", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var entry interaction.Interaction
	if err := json.Unmarshal(env.Data, &entry); err != nil {
		t.Fatal(err)
	}
	if entry.ProductData == nil {
		t.Fatal("response entry missing product snapshot")
	}
	if entry.ProductData.Name != "Heritage Chronograph" || entry.ProductData.Category != "timepieces" || entry.ProductData.Price != 12500 {
		t.Errorf("snapshot = %+v", entry.ProductData)
	}

	stored := store.List()
	if len(stored) != 1 || stored[0].ProductData == nil || stored[0].ProductData.Category != "timepieces" {
		t.Errorf("stored entry = %+v, want snapshot retained", stored)
	}
}

func TestRecordInteractionUnknownActionAccepted(t *testing.T) {
	router, _ := newTestRouter(t)

	body := []byte(`{"productId": "p1", "action": "wishlist"}`)
	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/interactions", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 for unknown action", rec.Code)
	}
	if !env.Success {
		t.Errorf("success = false, error = %+v", env.Error)
	}
}

func TestRecordInteractionValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"malformed json", `{not json`, ErrCodeBadRequest},
		{"missing product id", `{"action": "view"}`, ErrCodeValidationFailed},
		{"missing action", `{"productId": "p1"}`, ErrCodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doRequest(t, router, http.MethodPost, "/api/v1/interactions", []byte(tt.body))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
		})
	}
}

func TestListAndClearInteractions(t *testing.T) {
	router, _ := newTestRouter(t)

	doRequest(t, router, http.MethodPost, "/api/v1/interactions", []byte(`{"productId": "p1", "action": "view"}`))
	doRequest(t, router, http.MethodPost, "/api/v1/interactions", []byte(`{"productId": "p2", "action": "like"}`))

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/interactions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if env.Meta == nil || env.Meta.Count != 2 {
		t.Errorf("meta = %+v, want count 2", env.Meta)
	}

	rec, _ = doRequest(t, router, http.MethodDelete, "/api/v1/interactions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear status = %d", rec.Code)
	}

	_, env = doRequest(t, router, http.MethodGet, "/api/v1/interactions", nil)
	if env.Meta == nil || env.Meta.Count != 0 {
		t.Errorf("meta after clear = %+v, want count 0", env.Meta)
	}
}

func TestIdentity(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/identity", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var identity IdentityResponse
	if err := json.Unmarshal(env.Data, &identity); err != nil {
		t.Fatal(err)
	}
	if identity.UserID != "user-test" {
		t.Errorf("user id = %q, want user-test", identity.UserID)
	}
	if identity.SessionID == "" {
		t.Error("session id empty")
	}
}

func TestProducts(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/products", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var products []catalog.Product
	if err := json.Unmarshal(env.Data, &products); err != nil {
		t.Fatal(err)
	}
	if len(products) != 6 {
		t.Errorf("returned %d products, want 6", len(products))
	}
}

func TestRecommendationsAlgorithms(t *testing.T) {
	router, _ := newTestRouter(t)
	doRequest(t, router, http.MethodPost, "/api/v1/interactions", []byte(`{"productId": "p3", "action": "view"}`))

	for _, algorithm := range []string{"", "hybrid", "collaborative", "content"} {
		path := "/api/v1/recommendations"
		if algorithm != "" {
			path += "?algorithm=" + algorithm
		}
		rec, env := doRequest(t, router, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("algorithm %q status = %d, want 200", algorithm, rec.Code)
		}
		if !env.Success {
			t.Errorf("algorithm %q error = %+v", algorithm, env.Error)
		}
	}
}

func TestRecommendationsRejectsBadParams(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/recommendations?algorithm=astrology", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad algorithm status = %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Code != ErrCodeValidationFailed {
		t.Errorf("error = %+v", env.Error)
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/api/v1/recommendations?limit=0", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rec.Code)
	}
	rec, _ = doRequest(t, router, http.MethodGet, "/api/v1/recommendations?limit=oodles", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric limit status = %d, want 400", rec.Code)
	}
}

func TestRecommendationsDropDanglingProducts(t *testing.T) {
	router, _ := newTestRouter(t)
	// Heavy activity on a product that is not in the catalog.
	doRequest(t, router, http.MethodPost, "/api/v1/interactions", []byte(`{"productId": "ghost", "action": "purchase"}`))
	doRequest(t, router, http.MethodPost, "/api/v1/interactions", []byte(`{"productId": "ghost", "action": "view"}`))

	_, env := doRequest(t, router, http.MethodGet, "/api/v1/recommendations", nil)
	var resolved []recommend.Resolved
	if err := json.Unmarshal(env.Data, &resolved); err != nil {
		t.Fatal(err)
	}
	for _, r := range resolved {
		if r.Product.ID == "ghost" {
			t.Error("dangling product id surfaced in recommendations")
		}
	}
}

func TestShelfAlwaysFull(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/recommendations/shelf", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var shelf []recommend.Resolved
	if err := json.Unmarshal(env.Data, &shelf); err != nil {
		t.Fatal(err)
	}
	if len(shelf) != 4 {
		t.Fatalf("shelf size = %d, want 4", len(shelf))
	}
	for _, item := range shelf {
		if item.Reason != recommend.ReasonRandom {
			t.Errorf("reason = %q, want %q with empty log", item.Reason, recommend.ReasonRandom)
		}
	}
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !env.Success {
		t.Errorf("error = %+v", env.Error)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "trace-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "trace-123" {
		t.Errorf("request id header = %q, want trace-123", got)
	}

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Meta == nil || env.Meta.RequestID != "trace-123" {
		t.Errorf("meta = %+v, want request id trace-123", env.Meta)
	}
}

func TestNotFoundEnvelope(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/unknown", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if env.Error == nil || env.Error.Code != ErrCodeNotFound {
		t.Errorf("error = %+v, want NOT_FOUND", env.Error)
	}
}
