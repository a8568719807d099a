package scraper

import (
	"strings"

	"github.com/jonesrussell/gotourney/internal/domain"
)

// Keyword sets scored against the whole page. Each keyword counts at most
// once regardless of how often it appears.
var (
	qualityTournamentKeywords = []string{
		"tournament", "championship", "competition", "league", "cup",
		"series", "match", "fixtures", "schedule", "registration",
		"entry", "participate", "event", "contest", "trophy", "games",
	}
	qualityDateKeywords = []string{
		"2025", "2024", "january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december",
		"date", "time", "when", "schedule", "calendar",
	}
	qualityLocationKeywords = []string{
		"india", "indian", "delhi", "mumbai", "bangalore", "chennai", "kolkata",
		"hyderabad", "pune", "ahmedabad", "venue", "location", "where",
	}
)

const (
	lengthScoreDivisor = 1000
	lengthScoreCap     = 10
	relevanceThreshold = 3
)

// AssessQuality scores a scraped page for tournament relevance. The score
// is keyword coverage across title, description, and markdown plus a
// capped content-length component; pages scoring under the threshold are
// marked not relevant.
func AssessQuality(page *domain.ScrapedPage) domain.QualityAssessment {
	title := strings.ToLower(page.Title)
	description := strings.ToLower(page.Description)
	markdown := strings.ToLower(page.Markdown)

	count := func(keywords []string) int {
		var n int
		for _, kw := range keywords {
			if strings.Contains(title, kw) || strings.Contains(description, kw) || strings.Contains(markdown, kw) {
				n++
			}
		}
		return n
	}

	tournamentScore := count(qualityTournamentKeywords)
	dateScore := count(qualityDateKeywords)
	locationScore := count(qualityLocationKeywords)

	contentLength := len(markdown)
	lengthScore := float64(contentLength) / lengthScoreDivisor
	if lengthScore > lengthScoreCap {
		lengthScore = lengthScoreCap
	}

	total := float64(tournamentScore+dateScore+locationScore) + lengthScore

	return domain.QualityAssessment{
		TournamentRelevance: tournamentScore,
		DateInformation:     dateScore,
		LocationInformation: locationScore,
		ContentLengthScore:  lengthScore,
		TotalQualityScore:   total,
		IsRelevant:          total >= relevanceThreshold,
		ContentLength:       contentLength,
	}
}
