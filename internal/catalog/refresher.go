// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

package catalog

import (
	"context"
	"time"

	"github.com/mvallor/personalize/internal/logging"
	"github.com/mvallor/personalize/internal/metrics"
	"github.com/mvallor/personalize/internal/observable"
)

// Refresher keeps an observable catalog snapshot up to date. It loads
// from the primary source on an interval and falls back to the
// fallback source only while no snapshot has ever been published.
// Once a snapshot exists, a failed refresh keeps the last good one.
type Refresher struct {
	primary  Source
	fallback Source
	store    *observable.Store[[]Product]
	interval time.Duration
}

// NewRefresher builds a Refresher publishing into store. fallback may
// be nil. A non-positive interval defaults to five minutes.
func NewRefresher(primary, fallback Source, store *observable.Store[[]Product], interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Refresher{
		primary:  primary,
		fallback: fallback,
		store:    store,
		interval: interval,
	}
}

func (r *Refresher) String() string { return "catalog-refresher" }

// Serve implements suture.Service. It refreshes immediately, then on
// every interval tick until the context is cancelled.
func (r *Refresher) Serve(ctx context.Context) error {
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	products, err := r.primary.Load(ctx)
	if err == nil {
		r.publish(products)
		metrics.CatalogRefreshes.WithLabelValues("primary", "success").Inc()
		return
	}
	logging.Warn().Err(err).Msg("Catalog refresh from primary source failed")
	metrics.CatalogRefreshes.WithLabelValues("primary", "failure").Inc()

	if len(r.store.Get()) > 0 {
		// Keep serving the last good snapshot.
		return
	}
	if r.fallback == nil {
		return
	}

	products, err = r.fallback.Load(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Catalog fallback source failed, no snapshot available")
		metrics.CatalogRefreshes.WithLabelValues("fallback", "failure").Inc()
		return
	}
	r.publish(products)
	metrics.CatalogRefreshes.WithLabelValues("fallback", "fallback").Inc()
	logging.Info().Int("products", len(products)).Msg("Catalog loaded from fallback source")
}

func (r *Refresher) publish(products []Product) {
	r.store.Set(products)
	metrics.CatalogSnapshotSize.Set(float64(len(products)))
	logging.Debug().Int("products", len(products)).Msg("Catalog snapshot published")
}
