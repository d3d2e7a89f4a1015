// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig carries the HTTP-surface settings.
type RouterConfig struct {
	RateLimit       int
	RateLimitWindow time.Duration
	CORSOrigins     []string
	Timeout         time.Duration
}

// NewRouter assembles the chi router. Metrics and health live
// outside the rate-limited API group so probes and scrapes never
// starve.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(requestID)
	r.Use(corsMiddleware(cfg.CORSOrigins))
	r.Use(requestLogger)

	r.Get("/healthz", h.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit(cfg.RateLimit, cfg.RateLimitWindow))
		if cfg.Timeout > 0 {
			r.Use(chimiddleware.Timeout(cfg.Timeout))
		}

		r.Route("/interactions", func(r chi.Router) {
			r.Post("/", h.handleRecordInteraction)
			r.Get("/", h.handleListInteractions)
			r.Delete("/", h.handleClearInteractions)
		})

		r.Get("/identity", h.handleIdentity)
		r.Get("/products", h.handleProducts)
		r.Get("/recommendations", h.handleRecommendations)
		r.Get("/recommendations/shelf", h.handleShelf)
		r.Get("/ws", h.handleWebSocket)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Resource not found", nil)
	})

	return r
}
