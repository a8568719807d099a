// Package domain defines the entities that flow through the tournament
// data pipeline and the envelopes of the intermediate JSON documents each
// stage persists for the next.
package domain

import (
	"net/url"
	"sort"
	"time"
)

// QuerySource identifies how a query was produced.
type QuerySource string

const (
	// SourceTemplate marks queries built from the fixed template sets.
	SourceTemplate QuerySource = "template"
	// SourceModel marks queries suggested by the language model.
	SourceModel QuerySource = "model_generated"
)

// TemplateKind identifies which template set produced a query.
type TemplateKind string

const (
	// TemplateRegular is the standard tournament template set.
	TemplateRegular TemplateKind = "regular"
	// TemplateLocal is the template set for local competition tiers.
	TemplateLocal TemplateKind = "local"
)

// Query is a single search query targeting one sport/level pair.
type Query struct {
	Sport        string       `json:"sport"`
	Level        string       `json:"level"`
	Text         string       `json:"query"`
	Source       QuerySource  `json:"source"`
	TemplateKind TemplateKind `json:"template_type,omitempty"`
}

// QueryDocument is the persisted output of the query generation stage.
type QueryDocument struct {
	Metadata QueryMetadata `json:"metadata"`
	Queries  []Query       `json:"queries"`
}

// QueryMetadata describes a generated query set.
type QueryMetadata struct {
	TotalQueries int       `json:"total_queries"`
	Sports       []string  `json:"sports"`
	Levels       []string  `json:"levels"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// SearchResult is one organic result returned for a query, tagged with the
// sport/level context that produced it. RelevanceScore and PriorityRank are
// derived during filtering and prioritization, not provider-supplied.
type SearchResult struct {
	Sport          string  `json:"sport"`
	Level          string  `json:"level"`
	Query          string  `json:"query"`
	Title          string  `json:"title"`
	Link           string  `json:"link"`
	Snippet        string  `json:"snippet"`
	Position       int     `json:"position"`
	RelevanceScore float64 `json:"relevance_score,omitempty"`
	PriorityRank   int     `json:"priority_rank,omitempty"`
}

// SearchDocument is the persisted output of the search collection stage.
type SearchDocument struct {
	Metadata SearchMetadata `json:"metadata"`
	Summary  SearchSummary  `json:"summary"`
	Results  []SearchResult `json:"results"`
}

// SearchMetadata describes a collected result set.
type SearchMetadata struct {
	TotalResults  int           `json:"total_results"`
	SportsCovered int           `json:"sports_covered"`
	LevelsCovered int           `json:"levels_covered"`
	TopDomains    []DomainCount `json:"top_domains"`
	GeneratedAt   time.Time     `json:"generated_at"`
}

// SearchSummary groups result counts by sport and by level.
type SearchSummary struct {
	BySport map[string]int `json:"by_sport"`
	ByLevel map[string]int `json:"by_level"`
}

// DomainCount is a domain with its occurrence count in a result set.
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// ScrapedPage holds the content of one fetched URL.
type ScrapedPage struct {
	URL         string            `json:"url"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Markdown    string            `json:"markdown"`
	HTML        string            `json:"html"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Success     bool              `json:"success"`
}

// QualityAssessment scores how likely a scraped page is to describe a
// tournament. Derived purely from the page content.
type QualityAssessment struct {
	TournamentRelevance int     `json:"tournament_relevance"`
	DateInformation     int     `json:"date_information"`
	LocationInformation int     `json:"location_information"`
	ContentLengthScore  float64 `json:"content_length_score"`
	TotalQualityScore   float64 `json:"total_quality_score"`
	IsRelevant          bool    `json:"is_relevant"`
	ContentLength       int     `json:"content_length"`
}

// PageExtract holds the coarse tournament fields recovered from a page by
// keyword and regex scanning. It feeds the language-model prompt.
type PageExtract struct {
	Title            string   `json:"title"`
	URL              string   `json:"url"`
	TournamentName   string   `json:"tournament_name"`
	Dates            []string `json:"dates"`
	Location         []string `json:"location"`
	RegistrationInfo []string `json:"registration_info"`
	ContactInfo      []string `json:"contact_info"`
	Eligibility      []string `json:"eligibility"`
	PrizeInfo        []string `json:"prize_info"`
	RawContent       string   `json:"raw_content"`
}

// SearchContext records which query led to a scraped page.
type SearchContext struct {
	Sport      string `json:"sport"`
	Level      string `json:"level"`
	Query      string `json:"original_query"`
	SearchRank int    `json:"search_rank"`
}

// ScrapedContent couples a page extract with its quality assessment and
// search context. One per page that survived quality filtering.
type ScrapedContent struct {
	TournamentInfo PageExtract       `json:"tournament_info"`
	QualityMetrics QualityAssessment `json:"quality_metrics"`
	SearchContext  SearchContext     `json:"search_context"`
	ExtractedAt    time.Time         `json:"extraction_timestamp"`
}

// ScrapeDocument is the persisted output of the scraping stage.
type ScrapeDocument struct {
	Metadata ScrapeMetadata   `json:"metadata"`
	Scraped  []ScrapedContent `json:"scraped_data"`
}

// ScrapeMetadata describes a scraping run.
type ScrapeMetadata struct {
	ScrapedAt             time.Time `json:"scraped_at"`
	TotalPagesScraped     int       `json:"total_pages_scraped"`
	SuccessfulExtractions int       `json:"successful_extractions"`
}

// Tournament is the persisted tournament record. (Name, Sport, Level) is
// the uniqueness key; ConfidenceScore is clamped to [0,1] at write time.
type Tournament struct {
	ID                   int64     `json:"id" db:"id"`
	Name                 string    `json:"name" db:"name"`
	Sport                string    `json:"sport" db:"sport"`
	Level                string    `json:"level" db:"level"`
	DateInfo             []string  `json:"date_info"`
	RegistrationDeadline string    `json:"registration_deadline,omitempty" db:"registration_deadline"`
	Venue                []string  `json:"venue"`
	Link                 string    `json:"link,omitempty" db:"link"`
	StreamingLinks       string    `json:"streaming_links,omitempty" db:"streaming_links"`
	Summary              string    `json:"summary,omitempty" db:"summary"`
	EntryFees            string    `json:"entry_fees,omitempty" db:"entry_fees"`
	ContactInformation   []string  `json:"contact_information"`
	Eligibility          []string  `json:"eligibility"`
	Prizes               []string  `json:"prizes"`
	ConfidenceScore      float64   `json:"confidence_score" db:"confidence_score"`
	SourceURL            string    `json:"source_url,omitempty" db:"source_url"`
	SourceSport          string    `json:"source_sport,omitempty" db:"source_sport"`
	SourceLevel          string    `json:"source_level,omitempty" db:"source_level"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// TournamentDocument is the persisted output of the extraction stage.
type TournamentDocument struct {
	Metadata    ExtractionMetadata   `json:"metadata"`
	Statistics  ExtractionStatistics `json:"statistics"`
	Tournaments []Tournament         `json:"tournaments"`
}

// ExtractionMetadata describes an extraction run.
type ExtractionMetadata struct {
	TotalTournaments       int                `json:"total_tournaments"`
	AverageConfidence      float64            `json:"average_confidence"`
	ConfidenceDistribution ConfidenceBuckets  `json:"confidence_distribution"`
	MinConfidenceThreshold float64            `json:"min_confidence_threshold"`
	ExtractedAt            time.Time          `json:"extraction_timestamp"`
}

// ConfidenceBuckets counts tournaments per confidence band.
type ConfidenceBuckets struct {
	High   int `json:"high_confidence"`
	Medium int `json:"medium_confidence"`
	Low    int `json:"low_confidence"`
}

// ExtractionStatistics summarizes field coverage of an extraction run.
type ExtractionStatistics struct {
	BySport      map[string]int `json:"by_sport"`
	ByLevel      map[string]int `json:"by_level"`
	WithDates    int            `json:"tournaments_with_dates"`
	WithVenues   int            `json:"tournaments_with_venues"`
	WithContact  int            `json:"tournaments_with_contact"`
	WithPrizes   int            `json:"tournaments_with_prizes"`
}

// InsertStats reports the outcome of a batch insert.
type InsertStats struct {
	Processed  int `json:"total_processed"`
	Inserted   int `json:"successful_inserts"`
	Duplicates int `json:"duplicates_found"`
	Failed     int `json:"failed_inserts"`
}

// RunStats is the per-run summary row written to the statistics table.
type RunStats struct {
	TotalQueries              int       `json:"total_queries" db:"total_queries"`
	TotalSearchResults        int       `json:"total_search_results" db:"total_search_results"`
	TotalScrapedPages         int       `json:"total_scraped_pages" db:"total_scraped_pages"`
	TotalTournamentsExtracted int       `json:"total_tournaments_extracted" db:"total_tournaments_extracted"`
	AverageConfidenceScore    float64   `json:"average_confidence_score" db:"average_confidence_score"`
	RunDate                   time.Time `json:"pipeline_run_date" db:"pipeline_run_date"`
	ExecutionTimeSeconds      int       `json:"execution_time_seconds" db:"execution_time_seconds"`
}

// SportCount is a sport with its stored tournament count and average
// confidence, served by the sports listing endpoint.
type SportCount struct {
	Sport           string  `json:"sport" db:"sport"`
	TournamentCount int     `json:"tournament_count" db:"tournament_count"`
	AvgConfidence   float64 `json:"avg_confidence" db:"avg_confidence"`
}

// LevelCount is a level with its stored tournament count and average
// confidence, served by the levels listing endpoint.
type LevelCount struct {
	Level           string  `json:"level" db:"level"`
	TournamentCount int     `json:"tournament_count" db:"tournament_count"`
	AvgConfidence   float64 `json:"avg_confidence" db:"avg_confidence"`
}

// TopDomains counts result links per host and returns the topN most
// frequent. Unparseable links are skipped.
func TopDomains(results []SearchResult, topN int) []DomainCount {
	counts := make(map[string]int)
	for i := range results {
		u, err := url.Parse(results[i].Link)
		if err != nil || u.Host == "" {
			continue
		}
		counts[u.Host]++
	}

	domains := make([]DomainCount, 0, len(counts))
	for d, c := range counts {
		domains = append(domains, DomainCount{Domain: d, Count: c})
	}
	sort.Slice(domains, func(i, j int) bool {
		if domains[i].Count != domains[j].Count {
			return domains[i].Count > domains[j].Count
		}
		return domains[i].Domain < domains[j].Domain
	})

	if len(domains) > topN {
		domains = domains[:topN]
	}
	return domains
}
