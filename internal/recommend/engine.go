// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

package recommend

import (
	"math/rand"
	"sync"
	"time"

	"github.com/mvallor/personalize/internal/catalog"
	"github.com/mvallor/personalize/internal/interaction"
	"github.com/mvallor/personalize/internal/metrics"
)

// Algorithm names accepted by the API surface.
const (
	AlgorithmHybrid        = "hybrid"
	AlgorithmCollaborative = "collaborative"
	AlgorithmContent       = "content"
)

// Engine computes recommendations. It caches product embeddings and
// owns the random source used for shelf backfill. Safe for
// concurrent use.
type Engine struct {
	mu         sync.Mutex
	rng        *rand.Rand
	embed      EmbeddingFunc
	embeddings map[string]cachedEmbedding
}

// cachedEmbedding remembers the inputs the vector was derived from.
// Embeddings are pure functions of category and price, so a cached
// vector is reused only while both still match the catalog.
type cachedEmbedding struct {
	category string
	price    float64
	vec      []float64
}

// Option customises an Engine.
type Option func(*Engine)

// WithSeed fixes the random source for shelf backfill. Zero keeps the
// time-based default.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		if seed != 0 {
			e.rng = rand.New(rand.NewSource(seed))
		}
	}
}

// WithEmbedding replaces the default embedding function.
func WithEmbedding(fn EmbeddingFunc) Option {
	return func(e *Engine) { e.embed = fn }
}

// NewEngine returns an Engine with the hash embedding and a
// time-seeded random source.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		embed:      HashEmbedding,
		embeddings: make(map[string]cachedEmbedding),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Collaborative returns up to n collaborative filtering
// recommendations for userID.
func (e *Engine) Collaborative(log []interaction.Interaction, products []catalog.Product, userID string, n int) []Recommendation {
	defer observe(AlgorithmCollaborative, time.Now())
	byUser, byItem := buildMatrices(log)
	out := collaborative(byUser, byItem, products, userID, n)
	metrics.RecommendationResults.WithLabelValues(AlgorithmCollaborative).Observe(float64(len(out)))
	return out
}

// ContentBased returns up to n recommendations similar to the
// products the shopper has viewed.
func (e *Engine) ContentBased(log []interaction.Interaction, products []catalog.Product, userID string, n int) []Recommendation {
	defer observe(AlgorithmContent, time.Now())
	e.mu.Lock()
	out := e.contentBased(products, viewedProducts(log, userID), n)
	e.mu.Unlock()
	metrics.RecommendationResults.WithLabelValues(AlgorithmContent).Observe(float64(len(out)))
	return out
}

// Hybrid max-merges collaborative and content-based results: each
// source contributes up to 2n candidates and the higher score wins
// per product.
func (e *Engine) Hybrid(log []interaction.Interaction, products []catalog.Product, userID string, n int) []Recommendation {
	defer observe(AlgorithmHybrid, time.Now())
	e.mu.Lock()
	out := e.hybrid(log, products, userID, n)
	e.mu.Unlock()
	metrics.RecommendationResults.WithLabelValues(AlgorithmHybrid).Observe(float64(len(out)))
	return out
}

func (e *Engine) hybrid(log []interaction.Interaction, products []catalog.Product, userID string, n int) []Recommendation {
	byUser, byItem := buildMatrices(log)
	collab := collaborative(byUser, byItem, products, userID, n*2)
	content := e.contentBased(products, viewedProducts(log, userID), n*2)

	merged := make(map[string]Recommendation, len(collab)+len(content))
	for _, r := range append(collab, content...) {
		if existing, ok := merged[r.ProductID]; !ok || existing.Score < r.Score {
			merged[r.ProductID] = r
		}
	}
	return topN(merged, n)
}

// viewedProducts lists the product ids userID has viewed, in log
// order, duplicates included.
func viewedProducts(log []interaction.Interaction, userID string) []string {
	var out []string
	for _, entry := range log {
		if entry.UserID == userID && entry.Action == interaction.ActionView {
			out = append(out, entry.ProductID)
		}
	}
	return out
}

func observe(algorithm string, start time.Time) {
	metrics.RecommendationRequests.WithLabelValues(algorithm).Inc()
	metrics.RecommendationDuration.WithLabelValues(algorithm).Observe(time.Since(start).Seconds())
}
