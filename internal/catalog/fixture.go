// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// FixtureSource loads the catalog from a JSON file bundled with the
// deployment. It serves as the cold-start catalog and as the fallback
// when the CMS is unreachable.
type FixtureSource struct {
	path string
}

// NewFixtureSource returns a source reading from path.
func NewFixtureSource(path string) *FixtureSource {
	return &FixtureSource{path: path}
}

func (f *FixtureSource) Load(_ context.Context) ([]Product, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog fixture: %w", err)
	}

	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("parse catalog fixture %s: %w", f.path, err)
	}

	for i, p := range products {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog fixture %s: product %d has no id", f.path, i)
		}
	}
	return products, nil
}

// StaticSource serves a fixed product slice. Test helper and default
// for embedded catalogs.
type StaticSource []Product

func (s StaticSource) Load(_ context.Context) ([]Product, error) {
	out := make([]Product, len(s))
	copy(out, s)
	return out, nil
}
