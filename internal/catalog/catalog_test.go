// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mvallor/personalize/internal/observable"
)

func TestBuildIndex(t *testing.T) {
	products := []Product{
		{ID: "p1", Name: "Heritage Chronograph"},
		{ID: "p2", Name: "Calfskin Tote"},
		{ID: "p1", Name: "Heritage Chronograph II"},
	}

	idx := BuildIndex(products)
	if len(idx) != 2 {
		t.Fatalf("index size = %d, want 2", len(idx))
	}
	if idx["p1"].Name != "Heritage Chronograph II" {
		t.Errorf("duplicate id resolution = %q, want later entry to win", idx["p1"].Name)
	}
}

func TestFixtureSourceLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	data := `[
		{"id": "p1", "name": "Heritage Chronograph", "category": "timepieces", "price": 12500},
		{"id": "p2", "name": "Calfskin Tote", "category": "leather goods", "price": 2900}
	]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := NewFixtureSource(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d products, want 2", len(got))
	}
	if got[0].ID != "p1" || got[0].Price != 12500 {
		t.Errorf("first product = %+v", got[0])
	}
}

func TestFixtureSourceErrors(t *testing.T) {
	if _, err := NewFixtureSource("/nonexistent/catalog.json").Load(context.Background()); err == nil {
		t.Error("Load() of missing file succeeded")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`[{"name": "No ID"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFixtureSource(path).Load(context.Background()); err == nil {
		t.Error("Load() of product without id succeeded")
	}
}

func TestCMSSourceLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": "p1", "name": "Heritage Chronograph", "category": "timepieces", "price": 12500}]`))
	}))
	defer srv.Close()

	got, err := NewCMSSource(srv.URL, time.Second).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "p1" {
		t.Errorf("loaded %+v, want single p1", got)
	}
}

func TestCMSSourceErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{not json`))
			},
		},
		{
			name: "empty catalog",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[]`))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			if _, err := NewCMSSource(srv.URL, time.Second).Load(context.Background()); err == nil {
				t.Error("Load() succeeded, want error")
			}
		})
	}
}

func TestRefresherFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	fallback := StaticSource{{ID: "p1", Name: "Heritage Chronograph", Category: "timepieces", Price: 12500}}
	store := observable.New[[]Product](nil)
	r := NewRefresher(NewCMSSource(srv.URL, time.Second), fallback, store, time.Minute)

	r.refresh(context.Background())

	got := store.Get()
	if len(got) != 1 || got[0].ID != "p1" {
		t.Errorf("snapshot = %+v, want fallback catalog", got)
	}
}

func TestRefresherKeepsLastGoodSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	store := observable.New([]Product{{ID: "p1", Name: "Heritage Chronograph"}})
	fallback := StaticSource{{ID: "other", Name: "Other"}}
	r := NewRefresher(NewCMSSource(srv.URL, time.Second), fallback, store, time.Minute)

	r.refresh(context.Background())

	got := store.Get()
	if len(got) != 1 || got[0].ID != "p1" {
		t.Errorf("snapshot = %+v, want last good snapshot retained", got)
	}
}

func TestRefresherPublishesPrimary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": "p2", "name": "Grand Tourbillon", "category": "timepieces", "price": 48000}]`))
	}))
	defer srv.Close()

	store := observable.New[[]Product](nil)
	r := NewRefresher(NewCMSSource(srv.URL, time.Second), nil, store, time.Minute)

	r.refresh(context.Background())

	got := store.Get()
	if len(got) != 1 || got[0].ID != "p2" {
		t.Errorf("snapshot = %+v, want primary catalog", got)
	}
}
