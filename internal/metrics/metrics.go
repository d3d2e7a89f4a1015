// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

// Package metrics provides Prometheus instrumentation for the
// personalization service:
//   - interaction log writes, retention truncation and persistence failures
//   - recommendation request latency and throughput per algorithm
//   - catalog source health (circuit breaker state, snapshot size)
//   - API endpoint latency and throughput
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Interaction Store Metrics
	InteractionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interactions_recorded_total",
			Help: "Total number of interactions appended to the log",
		},
		[]string{"action"},
	)

	InteractionLogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "interaction_log_entries",
			Help: "Current number of entries in the in-memory interaction log",
		},
	)

	InteractionLogTruncations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interaction_log_truncations_total",
			Help: "Total number of retention truncations by ladder stage",
		},
		[]string{"stage"}, // "cap", "quota_retry", "clear"
	)

	InteractionPersistErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interaction_persist_errors_total",
			Help: "Total number of interaction log persistence failures",
		},
		[]string{"kind"}, // "quota", "other"
	)

	// Recommendation Engine Metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total number of recommendation requests by algorithm",
		},
		[]string{"algorithm"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Recommendation computation duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
		[]string{"algorithm"},
	)

	RecommendationResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_results",
			Help:    "Number of results returned per recommendation request",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
		},
		[]string{"algorithm"},
	)

	RecommendationBackfills = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_backfills_total",
			Help: "Total number of shelf slots filled by fallback source",
		},
		[]string{"source"}, // "content", "random"
	)

	// Catalog Metrics
	CatalogSnapshotSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_snapshot_products",
			Help: "Number of products in the current catalog snapshot",
		},
	)

	CatalogRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_refreshes_total",
			Help: "Total number of catalog snapshot refreshes by outcome",
		},
		[]string{"source", "outcome"}, // outcome: "success", "failure", "fallback"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	// WebSocket Metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of connected websocket clients",
		},
	)

	WebSocketMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of messages broadcast to websocket clients",
		},
	)
)
