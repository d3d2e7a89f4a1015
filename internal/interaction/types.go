// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

// Package interaction implements the append-only interaction log that
// feeds the recommendation engine. The log is bounded, persisted to a
// key-value store and survives storage quota exhaustion by shedding
// its oldest entries.
package interaction

import "time"

// Action identifies the kind of shopper interaction with a product.
type Action string

const (
	ActionView      Action = "view"
	ActionLike      Action = "like"
	ActionAddToCart Action = "add_to_cart"
	ActionPurchase  Action = "purchase"
	ActionShare     Action = "share"
)

// Weight returns the preference signal strength for the action.
// Unknown actions carry a weak positive weight so that forward
// compatible clients still contribute signal.
func (a Action) Weight() float64 {
	switch a {
	case ActionView:
		return 1
	case ActionLike:
		return 2
	case ActionAddToCart:
		return 3
	case ActionPurchase:
		return 5
	default:
		return 0.5
	}
}

// Known reports whether the action is one of the defined kinds.
func (a Action) Known() bool {
	switch a {
	case ActionView, ActionLike, ActionAddToCart, ActionPurchase, ActionShare:
		return true
	}
	return false
}

// MetricLabel returns the action for metric labels, folding unknown
// actions into a single bucket to keep cardinality bounded.
func (a Action) MetricLabel() string {
	if a.Known() {
		return string(a)
	}
	return "other"
}

// ProductSnapshot captures the product attributes at interaction time,
// so recorded history stays interpretable even after the catalog
// changes.
type ProductSnapshot struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// Interaction is a single recorded event. Entries are immutable once
// appended.
type Interaction struct {
	UserID      string           `json:"userId"`
	SessionID   string           `json:"sessionId"`
	ProductID   string           `json:"productId"`
	Action      Action           `json:"action"`
	Timestamp   time.Time        `json:"timestamp"`
	ProductData *ProductSnapshot `json:"productData,omitempty"`
}
