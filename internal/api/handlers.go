// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/mvallor/personalize/internal/catalog"
	"github.com/mvallor/personalize/internal/interaction"
	"github.com/mvallor/personalize/internal/logging"
	"github.com/mvallor/personalize/internal/observable"
	"github.com/mvallor/personalize/internal/recommend"
	"github.com/mvallor/personalize/internal/validation"
	"github.com/mvallor/personalize/internal/websocket"
)

// Handler bundles the personalization subsystems behind the HTTP
// surface.
type Handler struct {
	store     *interaction.Store
	engine    *recommend.Engine
	catalog   *observable.Store[[]catalog.Product]
	hub       *websocket.Hub
	shelfSize int
	topN      int
}

// NewHandler wires the handler. hub may be nil when the live socket
// is disabled.
func NewHandler(store *interaction.Store, engine *recommend.Engine, catalogStore *observable.Store[[]catalog.Product], hub *websocket.Hub, shelfSize, topN int) *Handler {
	return &Handler{
		store:     store,
		engine:    engine,
		catalog:   catalogStore,
		hub:       hub,
		shelfSize: shelfSize,
		topN:      topN,
	}
}

// RecordInteractionRequest is the POST /interactions body. Action is
// free-form on purpose: unknown actions still carry a weak signal, so
// newer storefront clients keep working against older servers.
type RecordInteractionRequest struct {
	ProductID   string                       `json:"productId" validate:"required,min=1,max=128"`
	Action      string                       `json:"action" validate:"required,min=1,max=64"`
	ProductData *interaction.ProductSnapshot `json:"productData" validate:"omitempty"`
}

func (h *Handler) handleRecordInteraction(w http.ResponseWriter, r *http.Request) {
	var req RecordInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request body", nil)
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		var verrs *validation.Errors
		if errors.As(err, &verrs) {
			respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, verrs.Error(), verrs.Fields())
			return
		}
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, err.Error(), nil)
		return
	}

	entry, outcome := h.store.Append(req.ProductID, interaction.Action(req.Action), req.ProductData)
	if outcome != interaction.PersistOK {
		logging.Debug().Stringer("outcome", outcome).Msg("Interaction persisted degraded")
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.MessageTypeInteraction, entry)
	}
	respondJSON(w, r, http.StatusCreated, entry)
}

func (h *Handler) handleListInteractions(w http.ResponseWriter, r *http.Request) {
	entries := h.store.List()
	respondList(w, r, http.StatusOK, entries, len(entries))
}

func (h *Handler) handleClearInteractions(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(); err != nil {
		logging.Error().Err(err).Msg("Failed to clear interaction log")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to clear interactions", nil)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "cleared"})
}

// IdentityResponse reports the shopper and session identifiers.
type IdentityResponse struct {
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
}

func (h *Handler) handleIdentity(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, IdentityResponse{
		UserID:    h.store.Identify(),
		SessionID: h.store.SessionID(),
	})
}

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	products := h.catalog.Get()
	respondList(w, r, http.StatusOK, products, len(products))
}

func (h *Handler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	algorithm := r.URL.Query().Get("algorithm")
	if algorithm == "" {
		algorithm = recommend.AlgorithmHybrid
	}

	limit := h.topN
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 50 {
			respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, "limit must be an integer between 1 and 50", nil)
			return
		}
		limit = parsed
	}

	log := h.store.List()
	products := h.catalog.Get()
	userID := h.store.Identify()

	var recs []recommend.Recommendation
	switch algorithm {
	case recommend.AlgorithmHybrid:
		recs = h.engine.Hybrid(log, products, userID, limit)
	case recommend.AlgorithmCollaborative:
		recs = h.engine.Collaborative(log, products, userID, limit)
	case recommend.AlgorithmContent:
		recs = h.engine.ContentBased(log, products, userID, limit)
	default:
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, "algorithm must be one of: hybrid, collaborative, content", nil)
		return
	}

	resolved := recommend.Resolve(recs, catalog.BuildIndex(products))
	respondList(w, r, http.StatusOK, resolved, len(resolved))
}

func (h *Handler) handleShelf(w http.ResponseWriter, r *http.Request) {
	shelf := h.engine.BuildShelf(h.store.List(), h.catalog.Get(), h.store.Identify(), h.shelfSize)
	respondList(w, r, http.StatusOK, shelf, len(shelf))
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"products": len(h.catalog.Get()),
		"log_size": h.store.Len(),
	})
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Live updates are disabled", nil)
		return
	}
	websocket.ServeWS(h.hub, w, r)
}
