// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

package interaction

import (
	"errors"
	"sync"
)

// KV is the minimal key-value surface the store persists through.
// Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) ([]byte, error)
	// Set stores value under key. Returns ErrQuotaExceeded when the
	// backing store is out of space.
	Set(key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}

var (
	// ErrNotFound is returned by KV.Get for missing keys.
	ErrNotFound = errors.New("interaction: key not found")

	// ErrQuotaExceeded is returned by KV.Set when the backing store
	// has no capacity left. The store reacts by shedding entries.
	ErrQuotaExceeded = errors.New("interaction: storage quota exceeded")
)

// MemoryKV is an in-memory KV with an optional byte budget. A zero
// budget means unlimited. It backs tests and ephemeral deployments.
type MemoryKV struct {
	mu     sync.RWMutex
	data   map[string][]byte
	budget int

	// failNext forces the next N Set calls to fail with the given
	// error regardless of budget. Used by tests to drive the
	// quota recovery ladder.
	failNext int
	failErr  error
}

// NewMemoryKV returns an empty MemoryKV limited to budget bytes of
// stored values, or unlimited when budget is zero.
func NewMemoryKV(budget int) *MemoryKV {
	return &MemoryKV{
		data:   make(map[string][]byte),
		budget: budget,
	}
}

func (m *MemoryKV) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryKV) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext > 0 {
		m.failNext--
		return m.failErr
	}
	if m.budget > 0 {
		total := len(value)
		for k, v := range m.data {
			if k == key {
				continue
			}
			total += len(v)
		}
		if total > m.budget {
			return ErrQuotaExceeded
		}
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// FailNext makes the next n Set calls return err. Test hook.
func (m *MemoryKV) FailNext(n int, err error) {
	m.mu.Lock()
	m.failNext = n
	m.failErr = err
	m.mu.Unlock()
}
