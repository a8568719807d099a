package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jonesrussell/gotourney/internal/domain"
	"github.com/jonesrussell/gotourney/internal/logger"
)

// Keywords that indicate tournament/competition relevance in a title or
// snippet.
var tournamentKeywords = []string{
	"tournament", "championship", "competition", "league", "cup",
	"series", "match", "fixtures", "schedule", "registration",
	"entry", "participate", "event", "contest", "trophy",
}

// Keywords that indicate official or reliable sources. Matched against the
// link as well since federations tend to carry them in their domains.
var officialKeywords = []string{
	"official", "federation", "association", "board", "council",
	"organization", "govt", "government", "ministry", "sports",
	"academy", "club", "university", "college", "school",
}

// officialWeight discounts official-source hits relative to direct
// tournament keyword hits.
const officialWeight = 0.5

// topDomainCount bounds the domain frequency list in the saved summary.
const topDomainCount = 5

// Searcher is the provider call the collector depends on.
type Searcher interface {
	Search(ctx context.Context, query string) ([]OrganicResult, error)
}

// Collector drives search collection over a query list.
type Collector struct {
	searcher Searcher
	delay    time.Duration
	logger   logger.Interface
}

// NewCollector creates a collector. delay is the fixed courtesy pause
// between consecutive provider requests.
func NewCollector(searcher Searcher, delay time.Duration, log logger.Interface) *Collector {
	return &Collector{
		searcher: searcher,
		delay:    delay,
		logger:   log.WithComponent("search"),
	}
}

// Collect issues one search per query, up to limit queries, flattening
// organic results into tagged SearchResults. A failed search is logged and
// skipped; the loop continues over the remaining queries.
func (c *Collector) Collect(ctx context.Context, queries []domain.Query, limit int) []domain.SearchResult {
	if limit > len(queries) {
		limit = len(queries)
	}

	var results []domain.SearchResult
	for i, q := range queries[:limit] {
		c.logger.Info("Searching",
			"sport", q.Sport,
			"level", q.Level,
			"progress", i+1,
			"total", limit,
		)

		organic, err := c.searcher.Search(ctx, q.Text)
		if err != nil {
			c.logger.Warn("Search failed, skipping query", "query", q.Text, "error", err)
		} else {
			for _, r := range organic {
				results = append(results, domain.SearchResult{
					Sport:    q.Sport,
					Level:    q.Level,
					Query:    q.Text,
					Title:    r.Title,
					Link:     r.Link,
					Snippet:  r.Snippet,
					Position: r.Position,
				})
			}
		}

		// Courtesy delay between provider requests, not after the last one.
		if i < limit-1 {
			select {
			case <-ctx.Done():
				c.logger.Warn("Collection cancelled", "error", ctx.Err())
				return results
			case <-time.After(c.delay):
			}
		}
	}

	c.logger.Info("Collected search results", "count", len(results))
	return results
}

// Relevance computes the keyword-hit score for one result: one point per
// tournament keyword found in title or snippet, half a point per official
// keyword found in title, snippet, or link.
func Relevance(r *domain.SearchResult) float64 {
	title := strings.ToLower(r.Title)
	snippet := strings.ToLower(r.Snippet)
	link := strings.ToLower(r.Link)

	var tournamentHits int
	for _, kw := range tournamentKeywords {
		if strings.Contains(title, kw) || strings.Contains(snippet, kw) {
			tournamentHits++
		}
	}

	var officialHits int
	for _, kw := range officialKeywords {
		if strings.Contains(title, kw) || strings.Contains(snippet, kw) || strings.Contains(link, kw) {
			officialHits++
		}
	}

	return float64(tournamentHits) + officialWeight*float64(officialHits)
}

// FilterRelevant keeps only results with a positive relevance score,
// recording the score on each kept result.
func FilterRelevant(results []domain.SearchResult) []domain.SearchResult {
	out := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		score := Relevance(&r)
		if score > 0 {
			r.RelevanceScore = score
			out = append(out, r)
		}
	}
	return out
}

// Prioritize stable-sorts by relevance descending then provider position
// ascending, and assigns 1-based priority ranks.
func Prioritize(results []domain.SearchResult) []domain.SearchResult {
	out := make([]domain.SearchResult, len(results))
	copy(out, results)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RelevanceScore != out[j].RelevanceScore {
			return out[i].RelevanceScore > out[j].RelevanceScore
		}
		return out[i].Position < out[j].Position
	})

	for i := range out {
		out[i].PriorityRank = i + 1
	}
	return out
}

// DedupByLink keeps the first occurrence per unique link, preserving order.
func DedupByLink(results []domain.SearchResult) []domain.SearchResult {
	seen := make(map[string]struct{}, len(results))
	out := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		if _, ok := seen[r.Link]; ok {
			continue
		}
		seen[r.Link] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Summarize builds the persisted document around a final result list.
func Summarize(results []domain.SearchResult) domain.SearchDocument {
	bySport := make(map[string]int)
	byLevel := make(map[string]int)
	for i := range results {
		bySport[results[i].Sport]++
		byLevel[results[i].Level]++
	}

	return domain.SearchDocument{
		Metadata: domain.SearchMetadata{
			TotalResults:  len(results),
			SportsCovered: len(bySport),
			LevelsCovered: len(byLevel),
			TopDomains:    domain.TopDomains(results, topDomainCount),
			GeneratedAt:   time.Now().UTC(),
		},
		Summary: domain.SearchSummary{
			BySport: bySport,
			ByLevel: byLevel,
		},
		Results: results,
	}
}

// Run executes the full stage over a query list: collect, filter,
// prioritize, dedup, summarize.
func (c *Collector) Run(ctx context.Context, queries []domain.Query, limit int) domain.SearchDocument {
	raw := c.Collect(ctx, queries, limit)

	filtered := FilterRelevant(raw)
	c.logger.Info("Filtered relevant results", "kept", len(filtered), "dropped", len(raw)-len(filtered))

	prioritized := Prioritize(filtered)
	deduped := DedupByLink(prioritized)
	if removed := len(prioritized) - len(deduped); removed > 0 {
		c.logger.Info("Removed duplicate links", "count", removed)
	}

	return Summarize(deduped)
}
