package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/gotourney/internal/config"
	"github.com/jonesrussell/gotourney/internal/domain"
	"github.com/jonesrussell/gotourney/internal/extractor"
	"github.com/jonesrussell/gotourney/internal/llm"
	"github.com/jonesrussell/gotourney/internal/logger"
	"github.com/jonesrussell/gotourney/internal/pipeline"
	"github.com/jonesrussell/gotourney/internal/queries"
	"github.com/jonesrussell/gotourney/internal/scraper"
	"github.com/jonesrussell/gotourney/internal/search"
	"github.com/jonesrussell/gotourney/internal/storage"
)

type fakeSearcher struct{}

func (fakeSearcher) Search(_ context.Context, query string) ([]search.OrganicResult, error) {
	return []search.OrganicResult{
		{
			Title:    "National Badminton Championship registration",
			Link:     "https://badminton.example/" + query,
			Snippet:  "Official tournament schedule and entry details",
			Position: 1,
		},
	}, nil
}

type fakeFetcher struct{}

func (fakeFetcher) Scrape(_ context.Context, _ string) (string, string, map[string]any, error) {
	markdown := `National Badminton Championship 2025
Venue: Siri Fort Sports Complex, Delhi, India
Registration deadline 15/01/2025 via tournament entry form`
	metadata := map[string]any{"title": "National Badminton Championship"}
	return markdown, "", metadata, nil
}

type fakeCompleter struct{}

func (fakeCompleter) Complete(_ context.Context, _ llm.Request) (string, error) {
	return `[{"name": "National Badminton Championship", "tournament_date": "January 2025", "venue": "Delhi", "confidence_score": 0.9}]`, nil
}

type fakeStore struct {
	inserted   []domain.Tournament
	runStats   []domain.RunStats
	searchLogs []storage.SearchLog
}

func (s *fakeStore) InsertBatch(_ context.Context, tournaments []domain.Tournament) domain.InsertStats {
	s.inserted = append(s.inserted, tournaments...)
	return domain.InsertStats{Processed: len(tournaments), Inserted: len(tournaments)}
}

func (s *fakeStore) InsertRunStats(_ context.Context, stats *domain.RunStats) error {
	s.runStats = append(s.runStats, *stats)
	return nil
}

func (s *fakeStore) LogSearch(_ context.Context, entry *storage.SearchLog) error {
	s.searchLogs = append(s.searchLogs, *entry)
	return nil
}

func testPipelineConfig(t *testing.T) config.PipelineConfig {
	t.Helper()
	return config.PipelineConfig{
		Sports:              []string{"Badminton"},
		Levels:              []string{"National"},
		LocalLevels:         []string{"District"},
		SearchLimit:         3,
		ConfidenceThreshold: 0.7,
		OutputDir:           t.TempDir(),
		QueriesFile:         "queries.json",
		SearchResultsFile:   "search_results.json",
		ScrapedContentFile:  "scraped_content.json",
		TournamentDataFile:  "tournament_data.json",
	}
}

func newTestPipeline(t *testing.T, cfg config.PipelineConfig, store pipeline.Store) *pipeline.Pipeline {
	t.Helper()
	log := logger.NewNoOp()
	llmCfg := config.AnthropicConfig{ExtractTemp: 0.1, ExtractMaxTokens: 1500}

	return pipeline.New(
		cfg,
		queries.NewGenerator(cfg, llmCfg, nil, log),
		search.NewCollector(fakeSearcher{}, 0, log),
		scraper.New(fakeFetcher{}, log),
		extractor.New(fakeCompleter{}, llmCfg, cfg.ConfidenceThreshold, log),
		store,
		log,
	)
}

func TestRunExecutesAllStages(t *testing.T) {
	cfg := testPipelineConfig(t)
	store := &fakeStore{}
	p := newTestPipeline(t, cfg, store)

	result, err := p.Run(context.Background())

	require.NoError(t, err)
	require.NotEmpty(t, result.Tournaments)
	assert.Equal(t, "National Badminton Championship", result.Tournaments[0].Name)
	// One sport across two levels (National + District), three templates each.
	assert.Equal(t, 2*queries.TemplatesPerPair, result.RunStats.TotalQueries)
	assert.Equal(t, 1, result.RunStats.TotalScrapedPages)
	assert.Positive(t, result.RunStats.TotalSearchResults)
	assert.Equal(t, len(store.inserted), result.InsertStats.Inserted)
	require.Len(t, store.runStats, 1)
	assert.NotEmpty(t, store.searchLogs)

	for _, name := range []string{cfg.QueriesFile, cfg.SearchResultsFile, cfg.ScrapedContentFile, cfg.TournamentDataFile} {
		_, statErr := os.Stat(filepath.Join(cfg.OutputDir, name))
		assert.NoError(t, statErr, "expected stage output %s", name)
	}
}

func TestRunScrapesOnlyTopResult(t *testing.T) {
	cfg := testPipelineConfig(t)
	store := &fakeStore{}
	p := newTestPipeline(t, cfg, store)

	result, err := p.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.RunStats.TotalScrapedPages)
}

func TestRunForPairScrapesDeeper(t *testing.T) {
	cfg := testPipelineConfig(t)
	store := &fakeStore{}
	p := newTestPipeline(t, cfg, store)

	result, err := p.RunForPair(context.Background(), "Badminton", "National")

	require.NoError(t, err)
	require.NotEmpty(t, result.Tournaments)
	assert.Equal(t, 3, result.RunStats.TotalQueries)
	// Each query yields a distinct link, all within the on-demand budget.
	assert.Equal(t, 3, result.RunStats.TotalScrapedPages)
	assert.Equal(t, "Badminton", result.Tournaments[0].SourceSport)
	assert.Equal(t, "National", result.Tournaments[0].SourceLevel)
}
