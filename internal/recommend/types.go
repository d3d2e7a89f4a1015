// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

// Package recommend computes product recommendations from the
// interaction log. Three algorithms are available: collaborative
// filtering (user-user with an item-item fallback and a popularity
// cold start), content-based filtering over product embeddings, and a
// hybrid that max-merges the two. Output is deterministic for a given
// log and catalog.
package recommend

import (
	"sort"

	"github.com/mvallor/personalize/internal/catalog"
)

// Recommendation is a scored product reference. Score is in [0, 1]
// for popularity, content and random picks; collaborative scores
// can exceed 1 when repeated interactions inflate summed ratings.
type Recommendation struct {
	ProductID string  `json:"productId"`
	Score     float64 `json:"score"`
	Reason    string  `json:"reason"`
}

// Resolved is a recommendation joined with its catalog product.
type Resolved struct {
	Product catalog.Product `json:"product"`
	Score   float64         `json:"score"`
	Reason  string          `json:"reason"`
}

// Human-readable reasons surfaced to shoppers. These strings are part
// of the client contract.
const (
	ReasonPopular       = "Popular item"
	ReasonCollaborative = "Recommended by users with similar tastes"
	ReasonItemBased     = "Similar to items you've shown interest in"
	ReasonContent       = "Similar category and price range"
	ReasonRandom        = "Random selection"
)

// sortRecommendations orders by score descending, breaking ties by
// product id so identical inputs always produce identical output.
func sortRecommendations(recs []Recommendation) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].ProductID < recs[j].ProductID
	})
}

// topN flattens a recommendation set, sorts it and keeps the best n.
func topN(recs map[string]Recommendation, n int) []Recommendation {
	out := make([]Recommendation, 0, len(recs))
	for _, r := range recs {
		out = append(out, r)
	}
	sortRecommendations(out)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Resolve joins recommendations with catalog products, dropping any
// whose product id is no longer in the catalog.
func Resolve(recs []Recommendation, idx catalog.Index) []Resolved {
	out := make([]Resolved, 0, len(recs))
	for _, r := range recs {
		p, ok := idx[r.ProductID]
		if !ok {
			continue
		}
		out = append(out, Resolved{Product: p, Score: r.Score, Reason: r.Reason})
	}
	return out
}
