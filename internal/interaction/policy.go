// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

package interaction

// Retention ladder bounds. The log never holds more than MaxEntries.
// When persistence hits a quota error the log is cut to
// QuotaRetryEntries and persisted again; a second quota error clears
// it entirely.
const (
	MaxEntries        = 100
	QuotaRetryEntries = 50
)

// PersistOutcome describes how a persistence attempt resolved.
type PersistOutcome int

const (
	// PersistOK means the full log was written.
	PersistOK PersistOutcome = iota
	// PersistTruncated means the first write hit a quota error and
	// the log was cut to QuotaRetryEntries before a successful retry.
	PersistTruncated
	// PersistCleared means both writes hit quota errors and the log
	// was dropped from memory and storage.
	PersistCleared
	// PersistFailed means a non-quota error occurred. The in-memory
	// log is kept and the write is abandoned.
	PersistFailed
)

func (o PersistOutcome) String() string {
	switch o {
	case PersistOK:
		return "ok"
	case PersistTruncated:
		return "truncated"
	case PersistCleared:
		return "cleared"
	case PersistFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// tail returns the newest n entries of log, sharing no memory with
// the input beyond the element values.
func tail(log []Interaction, n int) []Interaction {
	if len(log) <= n {
		return log
	}
	out := make([]Interaction, n)
	copy(out, log[len(log)-n:])
	return out
}
