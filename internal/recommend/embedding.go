// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

package recommend

import (
	"math"

	"github.com/mvallor/personalize/internal/catalog"
)

// EmbeddingFunc maps a product to a fixed-width feature vector. All
// products must produce vectors of the same length.
type EmbeddingFunc func(p catalog.Product) []float64

// HashEmbedding is the default embedding: ten features derived from a
// category hash and the price. Products sharing a category land close
// together; nearby prices pull them closer still.
func HashEmbedding(p catalog.Product) []float64 {
	h := float64(hashString(p.Category))
	normPrice := math.Min(p.Price/10000, 1)

	return []float64{
		math.Mod(h, 10) / 10,
		math.Mod(h*7, 10) / 10,
		normPrice,
		math.Sin(h),
		math.Cos(h),
		math.Sin(p.Price / 100),
		math.Cos(p.Price / 100),
		math.Mod(h, 2),
		math.Mod(h, 3) / 3,
		normPrice*2 - 1,
	}
}

// hashString hashes s with 32-bit wraparound and returns the absolute
// value. Stable across runs and platforms.
func hashString(s string) int64 {
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

// embeddingSimilarity is the cosine similarity of two embedding
// vectors, clamped to [0, 1]. Mismatched or zero vectors yield zero.
func embeddingSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(0, math.Min(1, sim))
}
