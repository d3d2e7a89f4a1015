// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

// Package config defines the service configuration and its layered
// loader. Precedence is environment variables over config file over
// built-in defaults.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Store     StoreConfig     `koanf:"store"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Recommend RecommendConfig `koanf:"recommend"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// StoreConfig controls interaction log persistence.
type StoreConfig struct {
	// Path is the Badger database directory. Ignored when InMemory
	// is set.
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// CatalogConfig controls the product catalog sources.
type CatalogConfig struct {
	// CMSURL is the catalog endpoint. Empty disables the CMS source
	// and serves the fixture only.
	CMSURL          string        `koanf:"cms_url"`
	FixturePath     string        `koanf:"fixture_path"`
	RefreshInterval time.Duration `koanf:"refresh_interval"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
}

// RecommendConfig controls the recommendation engine.
type RecommendConfig struct {
	// ShelfSize is the number of products on the personalized shelf.
	ShelfSize int `koanf:"shelf_size"`
	// TopN bounds per-algorithm API results.
	TopN int `koanf:"top_n"`
	// Seed fixes the random source for shelf backfill. Zero means
	// time-seeded.
	Seed int64 `koanf:"seed"`
}

// APIConfig controls rate limiting and CORS.
type APIConfig struct {
	RateLimit       int           `koanf:"rate_limit"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8480,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Store: StoreConfig{
			Path:     "/data/personalize",
			InMemory: false,
		},
		Catalog: CatalogConfig{
			CMSURL:          "",
			FixturePath:     "catalog.json",
			RefreshInterval: 5 * time.Minute,
			RequestTimeout:  10 * time.Second,
		},
		Recommend: RecommendConfig{
			ShelfSize: 4,
			TopN:      5,
			Seed:      0,
		},
		API: APIConfig{
			RateLimit:       100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks invariants the loader cannot express through types.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %v", c.Server.Timeout)
	}
	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("store.path required unless store.in_memory is set")
	}
	if c.Catalog.CMSURL == "" && c.Catalog.FixturePath == "" {
		return fmt.Errorf("catalog needs at least one of cms_url or fixture_path")
	}
	if c.Catalog.RefreshInterval <= 0 {
		return fmt.Errorf("catalog.refresh_interval must be positive, got %v", c.Catalog.RefreshInterval)
	}
	if c.Recommend.ShelfSize < 1 {
		return fmt.Errorf("recommend.shelf_size must be at least 1, got %d", c.Recommend.ShelfSize)
	}
	if c.Recommend.TopN < 1 {
		return fmt.Errorf("recommend.top_n must be at least 1, got %d", c.Recommend.TopN)
	}
	if c.API.RateLimit < 1 {
		return fmt.Errorf("api.rate_limit must be at least 1, got %d", c.API.RateLimit)
	}
	if c.API.RateLimitWindow <= 0 {
		return fmt.Errorf("api.rate_limit_window must be positive, got %v", c.API.RateLimitWindow)
	}
	return nil
}
