package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/gotourney/internal/config"
	"github.com/jonesrussell/gotourney/internal/extractor"
	"github.com/jonesrussell/gotourney/internal/llm"
	"github.com/jonesrussell/gotourney/internal/logger"
	"github.com/jonesrussell/gotourney/internal/pipeline"
	"github.com/jonesrussell/gotourney/internal/queries"
	"github.com/jonesrussell/gotourney/internal/scraper"
	"github.com/jonesrussell/gotourney/internal/search"
	"github.com/jonesrussell/gotourney/internal/storage"
)

// newCompleter builds the language-model client. A missing credential
// returns a nil Completer so stages that can degrade (query enhancement)
// still run; stages that cannot must check for nil.
func newCompleter(cfg *config.Config, log logger.Interface) (llm.Completer, error) {
	client, err := llm.NewClient(cfg.Anthropic)
	if err != nil {
		if errors.Is(err, llm.ErrMissingAPIKey) {
			log.Warn("No Anthropic API key configured")
			return nil, nil
		}
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	return client, nil
}

func newGenerator(cfg *config.Config, completer llm.Completer, log logger.Interface) *queries.Generator {
	return queries.NewGenerator(cfg.Pipeline, cfg.Anthropic, completer, log)
}

func newCollector(cfg *config.Config, log logger.Interface) (*search.Collector, error) {
	client, err := search.NewClient(cfg.Serper)
	if err != nil {
		return nil, fmt.Errorf("create search client: %w", err)
	}
	return search.NewCollector(client, cfg.Serper.RequestDelay, log), nil
}

func newScraper(cfg *config.Config, log logger.Interface) (*scraper.Scraper, error) {
	client, err := scraper.NewClient(cfg.Firecrawl)
	if err != nil {
		return nil, fmt.Errorf("create scrape client: %w", err)
	}
	return scraper.New(client, log), nil
}

func newExtractor(cfg *config.Config, completer llm.Completer, log logger.Interface) (*extractor.Extractor, error) {
	if completer == nil {
		return nil, llm.ErrMissingAPIKey
	}
	return extractor.New(completer, cfg.Anthropic, cfg.Pipeline.ConfidenceThreshold, log), nil
}

// openStore connects to PostgreSQL, applies the schema, and returns the
// repository. The caller owns the database handle.
func openStore(ctx context.Context, cfg *config.Config, log logger.Interface) (*sqlx.DB, *storage.Repository, error) {
	db, err := storage.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	if err := storage.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}

	return db, storage.NewRepository(db, log), nil
}

// buildPipeline wires every collection stage plus storage. The returned
// database handle must be closed by the caller.
func buildPipeline(ctx context.Context, cfg *config.Config, log logger.Interface) (*pipeline.Pipeline, *storage.Repository, *sqlx.DB, error) {
	completer, err := newCompleter(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}

	collector, err := newCollector(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}

	scr, err := newScraper(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}

	ext, err := newExtractor(cfg, completer, log)
	if err != nil {
		return nil, nil, nil, err
	}

	db, repo, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}

	p := pipeline.New(
		cfg.Pipeline,
		newGenerator(cfg, completer, log),
		collector,
		scr,
		ext,
		repo,
		log,
	)

	return p, repo, db, nil
}
