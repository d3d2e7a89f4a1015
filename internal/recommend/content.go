// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

package recommend

import "github.com/mvallor/personalize/internal/catalog"

// minContentSimilarity filters weakly related products out of
// content-based results.
const minContentSimilarity = 0.3

// contentBased scores catalog products by embedding similarity to the
// seed products. Seeds and products the shopper has already seen are
// excluded. Seeds missing from the catalog contribute nothing.
// Callers must hold e.mu.
func (e *Engine) contentBased(products []catalog.Product, seeds []string, n int) []Recommendation {
	if len(seeds) == 0 {
		return nil
	}

	for _, p := range products {
		cached, ok := e.embeddings[p.ID]
		if !ok || cached.category != p.Category || cached.price != p.Price {
			e.embeddings[p.ID] = cachedEmbedding{category: p.Category, price: p.Price, vec: e.embed(p)}
		}
	}

	seen := make(map[string]bool, len(seeds))
	for _, id := range seeds {
		seen[id] = true
	}

	recs := make(map[string]Recommendation)
	for _, seed := range seeds {
		cached, ok := e.embeddings[seed]
		if !ok {
			continue
		}
		for _, p := range products {
			if seen[p.ID] {
				continue
			}
			sim := embeddingSimilarity(cached.vec, e.embeddings[p.ID].vec)
			if sim <= minContentSimilarity {
				continue
			}
			if existing, ok := recs[p.ID]; !ok || existing.Score < sim {
				recs[p.ID] = Recommendation{ProductID: p.ID, Score: sim, Reason: ReasonContent}
			}
		}
	}

	return topN(recs, n)
}
