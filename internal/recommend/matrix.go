// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

package recommend

import (
	"math"

	"github.com/mvallor/personalize/internal/interaction"
)

// ratings maps an outer key to inner key to summed rating weight.
// Used both as user->product and product->user.
type ratings map[string]map[string]float64

func (r ratings) add(outer, inner string, w float64) {
	m, ok := r[outer]
	if !ok {
		m = make(map[string]float64)
		r[outer] = m
	}
	m[inner] += w
}

// buildMatrices folds the interaction log into a user-item matrix and
// its transpose. Repeated interactions accumulate.
func buildMatrices(log []interaction.Interaction) (byUser, byItem ratings) {
	byUser = make(ratings)
	byItem = make(ratings)
	for _, entry := range log {
		w := entry.Action.Weight()
		byUser.add(entry.UserID, entry.ProductID, w)
		byItem.add(entry.ProductID, entry.UserID, w)
	}
	return byUser, byItem
}

// pearson computes the Pearson correlation between two users over the
// products both have rated. Fewer than two common products, or zero
// variance on either side, yields zero.
func pearson(a, b map[string]float64) float64 {
	var common []string
	for item := range a {
		if _, ok := b[item]; ok {
			common = append(common, item)
		}
	}
	if len(common) < 2 {
		return 0
	}

	var sumA, sumB float64
	for _, item := range common {
		sumA += a[item]
		sumB += b[item]
	}
	n := float64(len(common))
	meanA := sumA / n
	meanB := sumB / n

	var num, denA, denB float64
	for _, item := range common {
		da := a[item] - meanA
		db := b[item] - meanB
		num += da * db
		denA += da * da
		denB += db * db
	}
	if denA == 0 || denB == 0 {
		return 0
	}
	return num / (math.Sqrt(denA) * math.Sqrt(denB))
}

// itemCosine computes the cosine similarity between two products over
// the users who rated both. Fewer than two co-rating users yields
// zero: a single shared rater is not evidence of affinity.
func itemCosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	co := 0
	for user, ra := range a {
		rb, ok := b[user]
		if !ok {
			continue
		}
		co++
		dot += ra * rb
		normA += ra * ra
		normB += rb * rb
	}
	if co < 2 || normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
