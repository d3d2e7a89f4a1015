// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

// Package api exposes the personalization HTTP surface: the
// interaction log, per-algorithm recommendations, the resolved shelf,
// the product catalog and the live event socket. All endpoints share
// one response envelope.
package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/mvallor/personalize/internal/logging"
)

// APIResponse is the response wrapper for all endpoints.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError carries a machine-readable code and a human message.
type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// APIMeta carries response metadata.
type APIMeta struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count,omitempty"`
}

// Error codes for API responses.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	resp := APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			RequestID: requestIDFrom(r),
			Timestamp: time.Now().UTC(),
		},
	}
	writeResponse(w, status, resp)
}

func respondList(w http.ResponseWriter, r *http.Request, status int, data interface{}, count int) {
	resp := APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			RequestID: requestIDFrom(r),
			Timestamp: time.Now().UTC(),
			Count:     count,
		},
	}
	writeResponse(w, status, resp)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details interface{}) {
	resp := APIResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: requestIDFrom(r),
		},
	}
	writeResponse(w, status, resp)
}

func writeResponse(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("Failed to encode API response")
	}
}
