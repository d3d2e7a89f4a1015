// Personalize - Storefront Personalization Service
// Copyright 2026 Maison Vallor
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvallor/personalize

// Command server runs the storefront personalization service: it
// records shopper interactions, keeps a catalog snapshot fresh and
// serves recommendations over HTTP and websocket.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/mvallor/personalize/internal/api"
	"github.com/mvallor/personalize/internal/catalog"
	"github.com/mvallor/personalize/internal/config"
	"github.com/mvallor/personalize/internal/interaction"
	"github.com/mvallor/personalize/internal/logging"
	"github.com/mvallor/personalize/internal/observable"
	"github.com/mvallor/personalize/internal/recommend"
	"github.com/mvallor/personalize/internal/supervisor"
	"github.com/mvallor/personalize/internal/websocket"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Service failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("Starting personalization service")

	// Interaction persistence.
	var kv interaction.KV
	if cfg.Store.InMemory {
		kv = interaction.NewMemoryKV(0)
	} else {
		opts := badger.DefaultOptions(cfg.Store.Path).WithLogger(nil)
		db, err := badger.Open(opts)
		if err != nil {
			return fmt.Errorf("open interaction database: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logging.Error().Err(err).Msg("Failed to close interaction database")
			}
		}()
		kv = interaction.NewBadgerKV(db, "interaction/")
	}
	store := interaction.NewStore(kv)

	// Recommendation engine.
	engine := recommend.NewEngine(recommend.WithSeed(cfg.Recommend.Seed))

	// Catalog sources and snapshot store.
	catalogStore := observable.New[[]catalog.Product](nil)
	var primary, fallback catalog.Source
	if cfg.Catalog.FixturePath != "" {
		fallback = catalog.NewFixtureSource(cfg.Catalog.FixturePath)
	}
	if cfg.Catalog.CMSURL != "" {
		primary = catalog.NewCMSSource(cfg.Catalog.CMSURL, cfg.Catalog.RequestTimeout)
	} else {
		primary = fallback
		fallback = nil
	}
	if primary == nil {
		return errors.New("no catalog source configured")
	}
	refresher := catalog.NewRefresher(primary, fallback, catalogStore, cfg.Catalog.RefreshInterval)

	// Live update hub.
	hub := websocket.NewHub()

	// HTTP surface.
	handler := api.NewHandler(store, engine, catalogStore, hub, cfg.Recommend.ShelfSize, cfg.Recommend.TopN)
	router := api.NewRouter(handler, api.RouterConfig{
		RateLimit:       cfg.API.RateLimit,
		RateLimitWindow: cfg.API.RateLimitWindow,
		CORSOrigins:     cfg.API.CORSOrigins,
		Timeout:         cfg.Server.Timeout,
	})
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	// Push catalog changes to connected clients.
	catalogEvents, cancelCatalogEvents := catalogStore.Subscribe()
	defer cancelCatalogEvents()
	go func() {
		for products := range catalogEvents {
			hub.Broadcast(websocket.MessageTypeCatalogUpdate, map[string]int{"products": len(products)})
		}
	}()

	// Supervision tree.
	treeCfg := supervisor.DefaultTreeConfig()
	slogLogger := slog.New(logging.NewSlogHandler())
	tree := supervisor.NewTree(slogLogger, treeCfg)
	tree.AddBackgroundService(refresher)
	tree.AddBackgroundService(hub)
	tree.AddAPIService(supervisor.NewHTTPServerService(server, treeCfg.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}
	logging.Info().Msg("Service stopped")
	return nil
}
