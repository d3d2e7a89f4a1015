// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

package interaction

import (
	"errors"
	"syscall"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerKV adapts a Badger database to the KV interface. Keys are
// namespaced with a fixed prefix so the database can be shared with
// other subsystems.
type BadgerKV struct {
	db     *badger.DB
	prefix []byte
}

// NewBadgerKV wraps db. The prefix is prepended to every key.
func NewBadgerKV(db *badger.DB, prefix string) *BadgerKV {
	return &BadgerKV{db: db, prefix: []byte(prefix)}
}

func (b *BadgerKV) key(k string) []byte {
	out := make([]byte, 0, len(b.prefix)+len(k))
	out = append(out, b.prefix...)
	return append(out, k...)
}

func (b *BadgerKV) Get(key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.key(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (b *BadgerKV) Set(key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(b.key(key), value)
	})
	if isQuotaError(err) {
		return ErrQuotaExceeded
	}
	return err
}

func (b *BadgerKV) Delete(key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(b.key(key))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

// isQuotaError reports whether err indicates exhausted storage
// capacity rather than a transient or structural failure.
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, badger.ErrTxnTooBig) {
		return true
	}
	return errors.Is(err, syscall.ENOSPC)
}
