// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

package recommend

import (
	"math"

	"github.com/mvallor/personalize/internal/catalog"
)

// Thresholds for the collaborative pipeline. Users correlate when
// Pearson exceeds minUserSimilarity; a neighbour's item is a
// candidate when its summed rating reaches minNeighborRating; items
// the subject rated at least minSeedRating seed the item-item
// fallback, which keeps pairs above minItemSimilarity.
const (
	minUserSimilarity = 0.1
	minNeighborRating = 3
	minSeedRating     = 2
	minItemSimilarity = 0.3
)

// collaborative runs user-user filtering for userID. Users with no
// rating history get popularity instead. When user-user filtering
// yields fewer than n candidates, item-item filtering over the
// catalog fills in.
func collaborative(byUser, byItem ratings, products []catalog.Product, userID string, n int) []Recommendation {
	userRatings := byUser[userID]
	if len(userRatings) == 0 {
		return popularity(byItem, n)
	}

	recs := make(map[string]Recommendation)

	for other, otherRatings := range byUser {
		if other == userID {
			continue
		}
		sim := pearson(userRatings, otherRatings)
		if sim <= minUserSimilarity {
			continue
		}
		for item, rating := range otherRatings {
			if _, rated := userRatings[item]; rated || rating < minNeighborRating {
				continue
			}
			score := sim * (rating / 5)
			if existing, ok := recs[item]; !ok || existing.Score < score {
				recs[item] = Recommendation{ProductID: item, Score: score, Reason: ReasonCollaborative}
			}
		}
	}

	if len(recs) < n {
		for seed, seedRating := range userRatings {
			if seedRating < minSeedRating {
				continue
			}
			for _, p := range products {
				if p.ID == seed {
					continue
				}
				if _, rated := userRatings[p.ID]; rated {
					continue
				}
				sim := itemCosine(byItem[seed], byItem[p.ID])
				if sim <= minItemSimilarity {
					continue
				}
				score := sim * (seedRating / 5)
				if existing, ok := recs[p.ID]; !ok || existing.Score < score {
					recs[p.ID] = Recommendation{ProductID: p.ID, Score: score, Reason: ReasonItemBased}
				}
			}
		}
	}

	return topN(recs, n)
}

// popularity ranks products by total accumulated rating across all
// users. Ranking uses the raw totals; the reported score normalises
// to [0, 1] at ten rating points.
func popularity(byItem ratings, n int) []Recommendation {
	totals := make(map[string]Recommendation, len(byItem))
	for item, userRatings := range byItem {
		var total float64
		for _, r := range userRatings {
			total += r
		}
		totals[item] = Recommendation{ProductID: item, Score: total, Reason: ReasonPopular}
	}
	out := topN(totals, n)
	for i := range out {
		out[i].Score = math.Min(out[i].Score/10, 1)
	}
	return out
}
