// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

package interaction

import "github.com/google/uuid"

// AnonymousUserID is the identity assigned when the backing store
// cannot persist a generated one. All unidentifiable shoppers share
// it, so their signals pool into a single profile.
const AnonymousUserID = "anonymous"

// IdentityProvider mints new user identifiers.
type IdentityProvider func() string

// UUIDIdentity returns identifiers of the form "user-<uuid>".
func UUIDIdentity() string {
	return "user-" + uuid.NewString()
}
