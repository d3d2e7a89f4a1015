// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

package interaction

import (
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/mvallor/personalize/internal/logging"
	"github.com/mvallor/personalize/internal/metrics"
)

// Storage keys within the KV namespace.
const (
	kvKeyLog    = "log"
	kvKeyUserID = "user_id"
)

// Store is the append-only interaction log. All methods are safe for
// concurrent use. The in-memory log is authoritative; the KV copy is
// best effort and shrinks under quota pressure.
type Store struct {
	mu        sync.RWMutex
	kv        KV
	log       []Interaction
	userID    string
	sessionID string
	identity  IdentityProvider
	now       func() time.Time
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithClock overrides the timestamp source. Test hook.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithIdentity overrides the identifier generator.
func WithIdentity(p IdentityProvider) StoreOption {
	return func(s *Store) { s.identity = p }
}

// NewStore builds a Store backed by kv and loads any persisted log.
// Corrupt persisted data is dropped and the store starts empty.
func NewStore(kv KV, opts ...StoreOption) *Store {
	s := &Store{
		kv:        kv,
		sessionID: "session-" + uuid.NewString(),
		identity:  UUIDIdentity,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

func (s *Store) load() {
	raw, err := s.kv.Get(kvKeyLog)
	if errors.Is(err, ErrNotFound) {
		return
	}
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to read persisted interaction log, starting empty")
		return
	}

	var log []Interaction
	if err := json.Unmarshal(raw, &log); err != nil {
		logging.Warn().Err(err).Msg("Persisted interaction log is corrupt, discarding")
		if derr := s.kv.Delete(kvKeyLog); derr != nil {
			logging.Warn().Err(derr).Msg("Failed to delete corrupt interaction log")
		}
		return
	}

	s.log = tail(log, MaxEntries)
	metrics.InteractionLogSize.Set(float64(len(s.log)))
	logging.Debug().Int("entries", len(s.log)).Msg("Loaded persisted interaction log")
}

// Identify returns the stable user identifier, minting and persisting
// one on first use. When the newly minted identifier cannot be
// persisted the shared anonymous identity is returned so interactions
// still accumulate, just without cross-session continuity.
func (s *Store) Identify() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identifyLocked()
}

func (s *Store) identifyLocked() string {
	if s.userID != "" {
		return s.userID
	}

	if raw, err := s.kv.Get(kvKeyUserID); err == nil && len(raw) > 0 {
		s.userID = string(raw)
		return s.userID
	}

	id := s.identity()
	if err := s.kv.Set(kvKeyUserID, []byte(id)); err != nil {
		logging.Warn().Err(err).Msg("Failed to persist user identity, using anonymous")
		s.userID = AnonymousUserID
		return s.userID
	}
	s.userID = id
	return s.userID
}

// SessionID returns the identifier for this process lifetime.
func (s *Store) SessionID() string {
	return s.sessionID
}

// Append records an interaction for the current user and persists the
// log. The returned Interaction carries the assigned user and session
// identifiers and timestamp. product may be nil when the caller has no
// snapshot to attach. Persistence failures never fail the append; the
// outcome reports how the write resolved.
func (s *Store) Append(productID string, action Action, product *ProductSnapshot) (Interaction, PersistOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Interaction{
		UserID:      s.identifyLocked(),
		SessionID:   s.sessionID,
		ProductID:   productID,
		Action:      action,
		Timestamp:   s.now().UTC(),
		ProductData: product,
	}

	s.log = append(s.log, entry)
	if len(s.log) > MaxEntries {
		s.log = tail(s.log, MaxEntries)
		metrics.InteractionLogTruncations.WithLabelValues("cap").Inc()
	}

	outcome := s.persistLocked()
	metrics.InteractionsRecorded.WithLabelValues(action.MetricLabel()).Inc()
	metrics.InteractionLogSize.Set(float64(len(s.log)))
	return entry, outcome
}

// persistLocked writes the log to the KV, walking the quota recovery
// ladder: full log, then the newest QuotaRetryEntries, then nothing.
func (s *Store) persistLocked() PersistOutcome {
	err := s.setLogLocked()
	if err == nil {
		return PersistOK
	}
	if !errors.Is(err, ErrQuotaExceeded) {
		metrics.InteractionPersistErrors.WithLabelValues("other").Inc()
		logging.Warn().Err(err).Msg("Failed to persist interaction log")
		return PersistFailed
	}

	metrics.InteractionPersistErrors.WithLabelValues("quota").Inc()
	s.log = tail(s.log, QuotaRetryEntries)
	metrics.InteractionLogTruncations.WithLabelValues("quota_retry").Inc()
	logging.Warn().Int("entries", len(s.log)).Msg("Storage quota exceeded, truncated interaction log")

	err = s.setLogLocked()
	if err == nil {
		return PersistTruncated
	}
	if errors.Is(err, ErrQuotaExceeded) {
		metrics.InteractionPersistErrors.WithLabelValues("quota").Inc()
	} else {
		metrics.InteractionPersistErrors.WithLabelValues("other").Inc()
	}

	s.log = nil
	metrics.InteractionLogTruncations.WithLabelValues("clear").Inc()
	if derr := s.kv.Delete(kvKeyLog); derr != nil {
		logging.Warn().Err(derr).Msg("Failed to clear persisted interaction log")
	}
	logging.Warn().Msg("Storage quota still exceeded after truncation, cleared interaction log")
	return PersistCleared
}

func (s *Store) setLogLocked() error {
	raw, err := json.Marshal(s.log)
	if err != nil {
		return err
	}
	return s.kv.Set(kvKeyLog, raw)
}

// List returns a snapshot copy of the log, oldest first.
func (s *Store) List() []Interaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Interaction, len(s.log))
	copy(out, s.log)
	return out
}

// Len returns the current number of log entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.log)
}

// Clear empties the log in memory and storage. The user identity is
// preserved.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = nil
	metrics.InteractionLogSize.Set(0)
	return s.kv.Delete(kvKeyLog)
}
