// Package pipeline orchestrates the five collection stages: query
// generation, web search, content scraping, model extraction, and
// database storage.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jonesrussell/gotourney/internal/config"
	"github.com/jonesrussell/gotourney/internal/domain"
	"github.com/jonesrussell/gotourney/internal/extractor"
	"github.com/jonesrussell/gotourney/internal/jsondoc"
	"github.com/jonesrussell/gotourney/internal/logger"
	"github.com/jonesrussell/gotourney/internal/queries"
	"github.com/jonesrussell/gotourney/internal/scraper"
	"github.com/jonesrussell/gotourney/internal/search"
	"github.com/jonesrussell/gotourney/internal/storage"
)

// batchScrapeCount limits the full batch run to the single best result,
// keeping provider usage predictable across a large query sweep.
const batchScrapeCount = 1

// onDemandScrapeCount is the per-pair scrape budget for interactive
// discovery, where depth matters more than sweep coverage.
const onDemandScrapeCount = 5

// Store is the persistence surface the pipeline writes through.
type Store interface {
	InsertBatch(ctx context.Context, tournaments []domain.Tournament) domain.InsertStats
	InsertRunStats(ctx context.Context, stats *domain.RunStats) error
	LogSearch(ctx context.Context, entry *storage.SearchLog) error
}

// Pipeline wires the collection stages together.
type Pipeline struct {
	cfg       config.PipelineConfig
	generator *queries.Generator
	collector *search.Collector
	scraper   *scraper.Scraper
	extractor *extractor.Extractor
	store     Store
	logger    logger.Interface
}

// Result summarizes a completed run.
type Result struct {
	RunStats    domain.RunStats
	InsertStats domain.InsertStats
	Tournaments []domain.Tournament
}

func New(
	cfg config.PipelineConfig,
	generator *queries.Generator,
	collector *search.Collector,
	scr *scraper.Scraper,
	ext *extractor.Extractor,
	store Store,
	log logger.Interface,
) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		generator: generator,
		collector: collector,
		scraper:   scr,
		extractor: ext,
		store:     store,
		logger:    log.WithComponent("pipeline"),
	}
}

// Run executes the full batch pipeline across every configured sport and
// level: all queries are generated and searched, but only the single top
// result is scraped and extracted. Each stage's document is written to the
// output directory so stages can also be rerun individually.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	started := time.Now()

	queryDoc := p.generator.GenerateAll(ctx)
	if err := jsondoc.Save(p.outputPath(p.cfg.QueriesFile), queryDoc); err != nil {
		return nil, fmt.Errorf("save queries: %w", err)
	}
	p.logger.Info("Stage complete: query generation",
		"queries", queryDoc.Metadata.TotalQueries,
		"elapsed", time.Since(started).Round(time.Millisecond),
	)

	searchStarted := time.Now()
	searchDoc := p.collector.Run(ctx, queryDoc.Queries, p.cfg.SearchLimit)
	if err := jsondoc.Save(p.outputPath(p.cfg.SearchResultsFile), searchDoc); err != nil {
		return nil, fmt.Errorf("save search results: %w", err)
	}
	p.logSearches(ctx, queryDoc.Queries, searchDoc, time.Since(searchStarted))
	p.logger.Info("Stage complete: search collection",
		"results", searchDoc.Metadata.TotalResults,
		"elapsed", time.Since(searchStarted).Round(time.Millisecond),
	)
	if len(searchDoc.Results) == 0 {
		return nil, fmt.Errorf("no relevant search results collected")
	}

	scrapeStarted := time.Now()
	scrapeDoc := p.scraper.ScrapeTop(ctx, searchDoc.Results, batchScrapeCount)
	if err := jsondoc.Save(p.outputPath(p.cfg.ScrapedContentFile), scrapeDoc); err != nil {
		return nil, fmt.Errorf("save scraped content: %w", err)
	}
	p.logger.Info("Stage complete: content scraping",
		"pages", scrapeDoc.Metadata.SuccessfulExtractions,
		"elapsed", time.Since(scrapeStarted).Round(time.Millisecond),
	)
	if len(scrapeDoc.Scraped) == 0 {
		return nil, fmt.Errorf("no relevant content scraped")
	}

	extractStarted := time.Now()
	tournaments := p.extractTournaments(ctx, scrapeDoc.Scraped)
	tournamentDoc := extractor.BuildDocument(tournaments, p.cfg.ConfidenceThreshold)
	if err := jsondoc.Save(p.outputPath(p.cfg.TournamentDataFile), tournamentDoc); err != nil {
		return nil, fmt.Errorf("save tournament data: %w", err)
	}
	p.logger.Info("Stage complete: model extraction",
		"tournaments", len(tournaments),
		"elapsed", time.Since(extractStarted).Round(time.Millisecond),
	)
	if len(tournaments) == 0 {
		return nil, fmt.Errorf("no tournaments extracted")
	}

	insertStats := p.store.InsertBatch(ctx, tournaments)
	p.logger.Info("Stage complete: database storage",
		"inserted", insertStats.Inserted,
		"duplicates", insertStats.Duplicates,
		"failed", insertStats.Failed,
	)

	runStats := domain.RunStats{
		TotalQueries:              queryDoc.Metadata.TotalQueries,
		TotalSearchResults:        searchDoc.Metadata.TotalResults,
		TotalScrapedPages:         scrapeDoc.Metadata.TotalPagesScraped,
		TotalTournamentsExtracted: len(tournaments),
		AverageConfidenceScore:    tournamentDoc.Metadata.AverageConfidence,
		RunDate:                   started.UTC().Truncate(24 * time.Hour),
		ExecutionTimeSeconds:      int(time.Since(started).Seconds()),
	}
	if err := p.store.InsertRunStats(ctx, &runStats); err != nil {
		p.logger.Warn("Failed to record run statistics", "error", err)
	}

	return &Result{
		RunStats:    runStats,
		InsertStats: insertStats,
		Tournaments: tournaments,
	}, nil
}

// RunForPair executes the pipeline for one sport/level combination on
// demand. Unlike the batch run it scrapes several results deep, since a
// single pair's queries surface far fewer pages.
func (p *Pipeline) RunForPair(ctx context.Context, sport, level string) (*Result, error) {
	started := time.Now()
	p.logger.Info("Running on-demand pipeline", "sport", sport, "level", level)

	pairQueries := p.generator.ForPair(sport, level)

	searchDoc := p.collector.Run(ctx, pairQueries, len(pairQueries))
	if len(searchDoc.Results) == 0 {
		return nil, fmt.Errorf("no search results found for %s - %s", sport, level)
	}

	scrapeDoc := p.scraper.ScrapeTop(ctx, searchDoc.Results, onDemandScrapeCount)
	if len(scrapeDoc.Scraped) == 0 {
		return nil, fmt.Errorf("no content could be scraped for %s - %s", sport, level)
	}

	tournaments := p.extractTournaments(ctx, scrapeDoc.Scraped)
	if len(tournaments) == 0 {
		return nil, fmt.Errorf("no tournaments could be extracted for %s - %s", sport, level)
	}

	insertStats := p.store.InsertBatch(ctx, tournaments)

	runStats := domain.RunStats{
		TotalQueries:              len(pairQueries),
		TotalSearchResults:        searchDoc.Metadata.TotalResults,
		TotalScrapedPages:         scrapeDoc.Metadata.TotalPagesScraped,
		TotalTournamentsExtracted: len(tournaments),
		AverageConfidenceScore:    extractor.BuildDocument(tournaments, p.cfg.ConfidenceThreshold).Metadata.AverageConfidence,
		RunDate:                   started.UTC().Truncate(24 * time.Hour),
		ExecutionTimeSeconds:      int(time.Since(started).Seconds()),
	}

	return &Result{
		RunStats:    runStats,
		InsertStats: insertStats,
		Tournaments: tournaments,
	}, nil
}

// extractTournaments runs model extraction over every scraped page,
// enhancing, filtering, and validating the combined record set. A page
// that fails extraction is skipped, not fatal.
func (p *Pipeline) extractTournaments(ctx context.Context, scraped []domain.ScrapedContent) []domain.Tournament {
	var all []domain.Tournament
	for i := range scraped {
		content := &scraped[i]

		records, err := p.extractor.Extract(ctx, content)
		if err != nil {
			p.logger.Warn("Extraction failed for page, skipping",
				"url", content.TournamentInfo.URL,
				"error", err,
			)
			continue
		}
		all = append(all, extractor.Enhance(records, content.SearchContext)...)
	}

	confident := extractor.FilterByConfidence(all, p.cfg.ConfidenceThreshold)
	if dropped := len(all) - len(confident); dropped > 0 {
		p.logger.Info("Dropped low-confidence tournaments", "count", dropped)
	}
	return extractor.Validate(confident)
}

// logSearches writes one audit row per executed query.
func (p *Pipeline) logSearches(ctx context.Context, executed []domain.Query, doc domain.SearchDocument, elapsed time.Duration) {
	perQuery := make(map[string]int)
	for i := range doc.Results {
		perQuery[doc.Results[i].Query]++
	}

	limit := p.cfg.SearchLimit
	if limit > len(executed) {
		limit = len(executed)
	}
	for _, q := range executed[:limit] {
		entry := &storage.SearchLog{
			Query:         q.Text,
			Sport:         q.Sport,
			Level:         q.Level,
			ResultsFound:  perQuery[q.Text],
			ExecutionTime: elapsed.Seconds() / float64(limit),
			Success:       true,
		}
		if err := p.store.LogSearch(ctx, entry); err != nil {
			p.logger.Warn("Failed to log search", "query", q.Text, "error", err)
			return
		}
	}
}

func (p *Pipeline) outputPath(name string) string {
	return filepath.Join(p.cfg.OutputDir, name)
}
