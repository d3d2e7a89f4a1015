// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

// Package observable provides a small generic snapshot store with
// change notification. Writers replace the snapshot atomically and
// subscribers receive the new value on a buffered channel. Slow
// subscribers never block a writer: a pending notification is
// coalesced with the next one.
package observable

import "sync"

// Store holds a snapshot of T guarded by a mutex. The zero value is
// not usable; construct with New.
type Store[T any] struct {
	mu    sync.RWMutex
	value T
	subs  map[int]chan T
	next  int
}

// New returns a Store seeded with the given initial value.
func New[T any](initial T) *Store[T] {
	return &Store[T]{
		value: initial,
		subs:  make(map[int]chan T),
	}
}

// Get returns the current snapshot.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the snapshot and notifies subscribers.
func (s *Store[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	s.notifyLocked(v)
	s.mu.Unlock()
}

// Update applies fn to the current snapshot, stores the result and
// notifies subscribers. fn must not retain the argument.
func (s *Store[T]) Update(fn func(T) T) T {
	s.mu.Lock()
	v := fn(s.value)
	s.value = v
	s.notifyLocked(v)
	s.mu.Unlock()
	return v
}

// Subscribe registers a listener for snapshot changes. The returned
// channel has a buffer of one; if a notification is already pending
// it is dropped in favour of the newer value. The cancel function
// removes the subscription and closes the channel.
func (s *Store[T]) Subscribe() (<-chan T, func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	ch := make(chan T, 1)
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Store[T]) notifyLocked(v T) {
	for _, ch := range s.subs {
		select {
		case ch <- v:
		default:
			// Drain the stale value and replace it.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}
