package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/tastelondon/enrich-cli/internal/directory"
	"github.com/tastelondon/enrich-cli/internal/enrich"
	"github.com/tastelondon/enrich-cli/internal/match"
	"github.com/tastelondon/enrich-cli/internal/store"
	"github.com/tastelondon/enrich-cli/internal/webscrape"
)

// pipelineEnv holds the store and assembled pipeline needed by the enrich,
// batch, tertiary, and serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *enrich.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens the configured database backend.
func initStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
}

// initPipeline validates config for the given mode, opens and migrates the
// store, and wires the scraper, directory client, and evaluator into a
// pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context, mode string) (*pipelineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	matchCfg, err := cfg.MatchConfig()
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	evaluator, err := match.NewEvaluator(matchCfg)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	scraper := webscrape.NewScraper(webscrape.Options{
		UserAgent:  cfg.Website.UserAgent,
		Timeout:    time.Duration(cfg.Website.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Website.MaxRetries,
	})

	finder := directory.NewClient(directory.Options{
		BaseURL:           cfg.Directory.BaseURL,
		UserAgent:         cfg.Directory.UserAgent,
		RequestsPerSecond: cfg.Directory.RequestsPerSecond,
		Burst:             cfg.Directory.Burst,
		Timeout:           time.Duration(cfg.Directory.TimeoutSecs) * time.Second,
		MaxRetries:        cfg.Directory.MaxRetries,
	})

	return &pipelineEnv{
		Store:    st,
		Pipeline: enrich.NewPipeline(st, scraper, finder, evaluator),
	}, nil
}
