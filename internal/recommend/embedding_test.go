// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

package recommend

import (
	"testing"

	"github.com/mvallor/personalize/internal/catalog"
)

func TestHashStringStable(t *testing.T) {
	first := hashString("timepieces")
	second := hashString("timepieces")
	if first != second {
		t.Errorf("hashString unstable: %d then %d", first, second)
	}
	if first < 0 {
		t.Errorf("hashString returned negative value %d", first)
	}
	if hashString("timepieces") == hashString("leather goods") {
		t.Error("distinct categories hashed identically")
	}
}

func TestHashEmbeddingShape(t *testing.T) {
	p := catalog.Product{ID: "p1", Category: "timepieces", Price: 12500}
	vec := HashEmbedding(p)
	if len(vec) != 10 {
		t.Fatalf("embedding length = %d, want 10", len(vec))
	}

	again := HashEmbedding(p)
	for i := range vec {
		if vec[i] != again[i] {
			t.Errorf("embedding dim %d unstable: %v then %v", i, vec[i], again[i])
		}
	}
}

func TestEmbeddingSimilarity(t *testing.T) {
	a := HashEmbedding(catalog.Product{Category: "timepieces", Price: 12500})
	b := HashEmbedding(catalog.Product{Category: "timepieces", Price: 12520})

	sim := embeddingSimilarity(a, b)
	if sim < 0 || sim > 1 {
		t.Fatalf("similarity %v outside [0, 1]", sim)
	}
	if sim < 0.9 {
		t.Errorf("same category near price similarity = %v, want near 1", sim)
	}

	if got := embeddingSimilarity(a, a); got < 1-1e-9 {
		t.Errorf("self similarity = %v, want 1", got)
	}
	if got := embeddingSimilarity(a, nil); got != 0 {
		t.Errorf("nil vector similarity = %v, want 0", got)
	}
	if got := embeddingSimilarity(a, []float64{1, 2}); got != 0 {
		t.Errorf("mismatched length similarity = %v, want 0", got)
	}
	zero := make([]float64, 10)
	if got := embeddingSimilarity(zero, zero); got != 0 {
		t.Errorf("zero vector similarity = %v, want 0", got)
	}
}
