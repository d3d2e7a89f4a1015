// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

package recommend

import (
	"github.com/mvallor/personalize/internal/catalog"
	"github.com/mvallor/personalize/internal/interaction"
	"github.com/mvallor/personalize/internal/metrics"
)

// RandomPickScore is the score assigned to random shelf backfill.
const RandomPickScore = 0.1

// BuildShelf assembles a fully resolved recommendation shelf of
// exactly size products when the catalog allows it. Hybrid results
// come first; content-based results fill remaining slots, then
// random catalog picks. Recommendations whose product has left the
// catalog are dropped, never surfaced. No product appears twice.
func (e *Engine) BuildShelf(log []interaction.Interaction, products []catalog.Product, userID string, size int) []Resolved {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := catalog.BuildIndex(products)
	shelf := Resolve(e.hybrid(log, products, userID, size), idx)

	selected := make(map[string]bool, size)
	for _, r := range shelf {
		selected[r.Product.ID] = true
	}

	if len(shelf) < size {
		content := Resolve(e.contentBased(products, viewedProducts(log, userID), size), idx)
		for _, r := range content {
			if len(shelf) >= size {
				break
			}
			if selected[r.Product.ID] {
				continue
			}
			shelf = append(shelf, r)
			selected[r.Product.ID] = true
			metrics.RecommendationBackfills.WithLabelValues("content").Inc()
		}
	}

	if len(shelf) < size {
		var pool []catalog.Product
		for _, p := range products {
			if !selected[p.ID] {
				pool = append(pool, p)
			}
		}
		e.rng.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
		for _, p := range pool {
			if len(shelf) >= size {
				break
			}
			shelf = append(shelf, Resolved{Product: p, Score: RandomPickScore, Reason: ReasonRandom})
			selected[p.ID] = true
			metrics.RecommendationBackfills.WithLabelValues("random").Inc()
		}
	}

	return shelf
}
