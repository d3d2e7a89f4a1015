// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

// Package catalog models the product catalog and its sources. The
// catalog is held as an immutable snapshot in an observable store and
// refreshed in the background from a CMS, with a bundled fixture as
// fallback.
package catalog

import "context"

// Product is a single catalog entry. Price is in the store currency's
// major unit.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// Source loads a product catalog snapshot.
type Source interface {
	Load(ctx context.Context) ([]Product, error)
}

// Index maps product ids to products for O(1) resolution.
type Index map[string]Product

// BuildIndex builds an Index over products. Later duplicates win.
func BuildIndex(products []Product) Index {
	idx := make(Index, len(products))
	for _, p := range products {
		idx[p.ID] = p
	}
	return idx
}
