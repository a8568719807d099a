package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/jonesrussell/gotourney/internal/domain"
	"github.com/jonesrussell/gotourney/internal/logger"
)

// Fetcher is the provider call the scraper depends on.
type Fetcher interface {
	Scrape(ctx context.Context, pageURL string) (markdown, html string, metadata map[string]any, err error)
}

// Scraper turns prioritized search results into quality-filtered page
// content ready for extraction.
type Scraper struct {
	fetcher Fetcher
	logger  logger.Interface
}

func New(fetcher Fetcher, log logger.Interface) *Scraper {
	return &Scraper{
		fetcher: fetcher,
		logger:  log.WithComponent("scraper"),
	}
}

// ScrapePage fetches one result's page and assembles the content bundle.
// Returns (nil, nil) when the page fetched fine but failed the quality or
// minimum-data checks, so callers can distinguish irrelevant from broken.
func (s *Scraper) ScrapePage(ctx context.Context, result domain.SearchResult) (*domain.ScrapedContent, error) {
	s.logger.Info("Scraping page", "url", result.Link, "sport", result.Sport, "level", result.Level)

	markdown, html, metadata, err := s.fetcher.Scrape(ctx, result.Link)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}

	page := &domain.ScrapedPage{
		URL:      result.Link,
		Title:    metaString(metadata, "title"),
		Markdown: markdown,
		HTML:     html,
		Success:  true,
	}
	page.Description = metaString(metadata, "description")
	if page.Title == "" {
		page.Title = titleFromHTML(html)
	}
	if page.Description == "" {
		page.Description = descriptionFromHTML(html)
	}

	quality := AssessQuality(page)
	s.logger.Info("Assessed content quality",
		"url", result.Link,
		"score", quality.TotalQualityScore,
		"relevant", quality.IsRelevant,
	)
	if !quality.IsRelevant {
		return nil, nil
	}

	extract := ExtractFields(page)
	if extract.TournamentName == "" && len(extract.Dates) == 0 && len(extract.Location) == 0 {
		s.logger.Warn("Page passed quality check but yielded no tournament fields", "url", result.Link)
		return nil, nil
	}

	return &domain.ScrapedContent{
		TournamentInfo: extract,
		QualityMetrics: quality,
		SearchContext: domain.SearchContext{
			Sport:      result.Sport,
			Level:      result.Level,
			Query:      result.Query,
			SearchRank: result.PriorityRank,
		},
		ExtractedAt: time.Now().UTC(),
	}, nil
}

// ScrapeTop scrapes up to n results in priority order, skipping failures
// and irrelevant pages.
func (s *Scraper) ScrapeTop(ctx context.Context, results []domain.SearchResult, n int) domain.ScrapeDocument {
	if n > len(results) {
		n = len(results)
	}

	doc := domain.ScrapeDocument{
		Metadata: domain.ScrapeMetadata{ScrapedAt: time.Now().UTC()},
	}
	for _, r := range results[:n] {
		doc.Metadata.TotalPagesScraped++

		content, err := s.ScrapePage(ctx, r)
		if err != nil {
			s.logger.Warn("Scrape failed, skipping result", "url", r.Link, "error", err)
			continue
		}
		if content == nil {
			continue
		}

		doc.Metadata.SuccessfulExtractions++
		doc.Scraped = append(doc.Scraped, *content)
	}

	s.logger.Info("Scraping complete",
		"attempted", doc.Metadata.TotalPagesScraped,
		"extracted", doc.Metadata.SuccessfulExtractions,
	)
	return doc
}

func metaString(metadata map[string]any, key string) string {
	if v, ok := metadata[key].(string); ok {
		return v
	}
	return ""
}
