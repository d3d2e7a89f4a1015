// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

package recommend

import (
	"reflect"
	"testing"

	"github.com/mvallor/personalize/internal/catalog"
	"github.com/mvallor/personalize/internal/interaction"
)

func TestResolveDropsDanglingIDs(t *testing.T) {
	idx := catalog.BuildIndex(testCatalog())
	recs := []Recommendation{
		{ProductID: "p1", Score: 0.9, Reason: ReasonCollaborative},
		{ProductID: "discontinued", Score: 0.8, Reason: ReasonCollaborative},
		{ProductID: "p3", Score: 0.7, Reason: ReasonContent},
	}

	got := Resolve(recs, idx)
	if len(got) != 2 {
		t.Fatalf("resolved %d recommendations, want 2", len(got))
	}
	if got[0].Product.ID != "p1" || got[1].Product.ID != "p3" {
		t.Errorf("resolved ids = [%s %s], want [p1 p3]", got[0].Product.ID, got[1].Product.ID)
	}
	if got[0].Product.Name == "" {
		t.Error("resolved product missing catalog fields")
	}
}

func TestBuildShelfEmptyLogIsAllRandom(t *testing.T) {
	e := NewEngine(WithSeed(42))

	shelf := e.BuildShelf(nil, testCatalog(), "u1", 4)
	if len(shelf) != 4 {
		t.Fatalf("shelf size = %d, want 4", len(shelf))
	}
	seen := make(map[string]bool)
	for _, r := range shelf {
		if r.Reason != ReasonRandom {
			t.Errorf("reason = %q, want %q", r.Reason, ReasonRandom)
		}
		if r.Score != RandomPickScore {
			t.Errorf("score = %v, want %v", r.Score, RandomPickScore)
		}
		if seen[r.Product.ID] {
			t.Errorf("duplicate product %s", r.Product.ID)
		}
		seen[r.Product.ID] = true
	}
}

func TestBuildShelfNeverSurfacesDanglingIDs(t *testing.T) {
	// Every interaction references a product that has left the
	// catalog. The shelf must still fill from the live catalog.
	log := []interaction.Interaction{
		entry("u1", "ghost", interaction.ActionView),
		entry("u1", "ghost", interaction.ActionPurchase),
		entry("u2", "ghost", interaction.ActionPurchase),
	}
	e := NewEngine(WithSeed(42))

	shelf := e.BuildShelf(log, testCatalog(), "u1", 4)
	if len(shelf) != 4 {
		t.Fatalf("shelf size = %d, want 4", len(shelf))
	}
	for _, r := range shelf {
		if r.Product.ID == "ghost" {
			t.Error("dangling product surfaced on shelf")
		}
	}
}

func TestBuildShelfBackfillsWithContent(t *testing.T) {
	// A lone shopper has no collaborative neighbours, so the shelf
	// relies on content similarity to their viewed product before
	// falling back to random picks.
	log := []interaction.Interaction{
		entry("u1", "p3", interaction.ActionView),
	}
	e := NewEngine(WithSeed(42))

	shelf := e.BuildShelf(log, testCatalog(), "u1", 4)
	if len(shelf) != 4 {
		t.Fatalf("shelf size = %d, want 4", len(shelf))
	}
	var contentSlots int
	for _, r := range shelf {
		if r.Reason == ReasonContent {
			contentSlots++
		}
		if r.Product.ID == "p3" {
			t.Error("viewed product surfaced on shelf")
		}
	}
	if contentSlots == 0 {
		t.Error("no content-based slots on shelf")
	}
}

func TestBuildShelfDeterministicWithSeed(t *testing.T) {
	log := []interaction.Interaction{
		entry("u1", "p1", interaction.ActionView),
	}

	a := NewEngine(WithSeed(7)).BuildShelf(log, testCatalog(), "u1", 4)
	b := NewEngine(WithSeed(7)).BuildShelf(log, testCatalog(), "u1", 4)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same seed produced different shelves:\n%+v\n%+v", a, b)
	}
}

func TestBuildShelfSmallCatalog(t *testing.T) {
	small := []catalog.Product{
		{ID: "p1", Name: "Heritage Chronograph", Category: "timepieces", Price: 12500},
		{ID: "p2", Name: "Grand Tourbillon", Category: "timepieces", Price: 48000},
	}
	e := NewEngine(WithSeed(42))

	shelf := e.BuildShelf(nil, small, "u1", 4)
	if len(shelf) != 2 {
		t.Errorf("shelf size = %d, want 2 with a two-product catalog", len(shelf))
	}
}
