package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/jobscout/internal/config"
	"github.com/jonathan/jobscout/internal/db"
	"github.com/jonathan/jobscout/internal/fetch"
	"github.com/jonathan/jobscout/internal/generation"
	"github.com/jonathan/jobscout/internal/ingestion"
	"github.com/jonathan/jobscout/internal/insights"
	"github.com/jonathan/jobscout/internal/llm"
	"github.com/jonathan/jobscout/internal/localdb"
	"github.com/jonathan/jobscout/internal/results"
	"github.com/jonathan/jobscout/internal/retry"
)

// stores bundles the storage collaborators of one driver.
type stores struct {
	cache    results.Store
	listings ingestion.ListingLookup
	profiles insights.ProfileLookup
	close    func()
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, err
		}
		logger.Info("using postgres store")
		return &stores{cache: database, listings: database, profiles: database, close: database.Close}, nil

	case config.DriverSQLite, "":
		store, err := localdb.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("using sqlite store", "path", cfg.SQLitePath)
		return &stores{cache: store, listings: store, profiles: store, close: func() { _ = store.Close() }}, nil

	case config.DriverMemory:
		// No listings or profiles: listing requests report not found.
		logger.Warn("using in-memory store; results are lost on restart")
		return &stores{cache: results.NewMemoryStore(), close: func() {}}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// buildService wires the generation pipeline from configuration. The
// returned cleanup releases the store and the model client.
func buildService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*insights.Service, func(), error) {
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := st.close

	var client llm.Client
	if cfg.ModelConfigured() {
		c, err := llm.NewClient(ctx, llm.NewConfig(cfg.Model, cfg.FallbackModel), cfg.APIKey)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		client = c
		cleanup = func() {
			if err := c.Close(); err != nil {
				logger.Warn("failed to close model client", "error", err)
			}
			st.close()
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set; only cached results can be served")
	}

	engine := generation.NewEngine(client, generation.Options{
		Policy: retry.Policy{
			MaxAttempts: cfg.GenerationMaxAttempts,
			BaseDelay:   time.Duration(cfg.GenerationBaseDelay),
			Fallback:    true,
		},
		AttemptTimeout: time.Duration(cfg.GenerationTimeout),
		Logger:         logger,
	})

	fetchOpts := fetch.DefaultOptions()
	fetchOpts.Timeout = time.Duration(cfg.RemoteFetchTimeout)
	var renderer fetch.Renderer
	if cfg.UseBrowser {
		renderer = fetch.NewChromeRenderer(logger)
	}
	pages := fetch.NewPageFetcher(fetchOpts, renderer, logger)

	svc := insights.NewService(insights.Deps{
		Resolver: ingestion.NewResolver(st.listings, pages, time.Duration(cfg.RemoteFetchTimeout), logger),
		Cache:    results.NewCache(st.cache, time.Duration(cfg.CacheTTL), logger),
		Profiles: st.profiles,
		Engine:   engine,
		Logger:   logger,
	})
	return svc, cleanup, nil
}
