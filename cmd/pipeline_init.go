package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadspider-cli/internal/crawl"
	"github.com/sells-group/leadspider-cli/internal/pipeline"
	"github.com/sells-group/leadspider-cli/internal/store"
	"github.com/sells-group/leadspider-cli/pkg/fingerprint"
	"github.com/sells-group/leadspider-cli/pkg/sheets"
)

// initStore opens the configured observation store. SQL backends are
// migrated before use.
func initStore(ctx context.Context) (store.ObservationStore, error) {
	switch cfg.Store.Driver {
	case "csvdir":
		return store.NewCSVDir(cfg.Store.Dir)
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "leadspider.db"
		}
		st, err := store.NewSQLite(dsn)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
		return st, nil
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
		return st, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// pipelineEnv bundles the wired pipeline with everything that needs
// closing when a command finishes.
type pipelineEnv struct {
	Store    store.ObservationStore
	Crawler  *crawl.Crawler
	Pipeline *pipeline.Pipeline
}

func (e *pipelineEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initPipeline wires store, crawler, fingerprint client and pipeline
// from config.
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	crawler, err := crawl.New(cfg.Crawl, cfg.Lexicon)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	// Fingerprinting is optional; without a service URL the technology
	// columns simply stay empty.
	var fp fingerprint.Client = fingerprint.Stub{}
	if cfg.Fingerprint.BaseURL != "" {
		fp, err = fingerprint.New(cfg.Fingerprint.BaseURL,
			fingerprint.WithAPIKey(cfg.Fingerprint.Key),
			fingerprint.WithRateLimit(cfg.Fingerprint.RatePerSec),
			fingerprint.WithCacheSize(cfg.Fingerprint.CacheSize),
		)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
	} else {
		zap.L().Info("fingerprint service not configured, technology lookup disabled")
	}

	p, err := pipeline.New(cfg, st, crawler, fp)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &pipelineEnv{Store: st, Crawler: crawler, Pipeline: p}, nil
}

// resolveStartURLs picks crawl start URLs from, in order: the --url
// flags, an xlsx worksheet, the config file.
func resolveStartURLs(urls []string, xlsxPath, sheetName, column string) ([]string, error) {
	if len(urls) > 0 {
		return urls, nil
	}
	if xlsxPath != "" {
		return sheets.ReadURLColumn(xlsxPath, sheetName, column)
	}
	if len(cfg.Crawl.StartURLs) > 0 {
		return cfg.Crawl.StartURLs, nil
	}
	return nil, eris.New("no start urls: pass --url, --xlsx or set crawl.start_urls")
}
