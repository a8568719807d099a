package extractor

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jonesrussell/gotourney/internal/domain"
)

const maxFieldLength = 500

// Placeholder values the model emits for absent information. Treated the
// same as an empty field.
var placeholderValues = map[string]struct{}{
	"N/A":           {},
	"Not available": {},
	"Not specified": {},
	"":              {},
}

// Enhance converts loosely-typed model records into Tournament values,
// stamped with the search context they came from. Field values are
// trimmed, capped, and cleared of placeholder noise; confidence scores are
// normalized into [0,1].
func Enhance(records []map[string]any, sc domain.SearchContext) []domain.Tournament {
	now := time.Now().UTC()

	tournaments := make([]domain.Tournament, 0, len(records))
	for _, rec := range records {
		t := domain.Tournament{
			Name:                 cleanString(rec["name"]),
			Sport:                sc.Sport,
			Level:                cleanString(rec["level"]),
			DateInfo:             cleanList(firstPresent(rec, "date", "tournament_date")),
			RegistrationDeadline: cleanString(rec["registration_deadline"]),
			Venue:                cleanList(rec["venue"]),
			Link:                 cleanString(rec["link"]),
			StreamingLinks:       cleanString(rec["streaming_links"]),
			Summary:              cleanString(rec["summary"]),
			EntryFees:            cleanString(rec["entry_fees"]),
			ContactInformation:   cleanList(rec["contact_information"]),
			Eligibility:          cleanList(rec["eligibility"]),
			Prizes:               cleanList(rec["prizes"]),
			ConfidenceScore:      normalizeConfidence(rec["confidence_score"]),
			SourceURL:            sc.Query,
			SourceSport:          sc.Sport,
			SourceLevel:          sc.Level,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if t.Level == "" {
			t.Level = sc.Level
		}
		tournaments = append(tournaments, t)
	}
	return tournaments
}

// FilterByConfidence drops records scoring under the threshold.
func FilterByConfidence(tournaments []domain.Tournament, threshold float64) []domain.Tournament {
	out := make([]domain.Tournament, 0, len(tournaments))
	for _, t := range tournaments {
		if t.ConfidenceScore >= threshold {
			out = append(out, t)
		}
	}
	return out
}

// Validate keeps records with a name and at least one of a date or a
// venue. Anything less is too thin to store.
func Validate(tournaments []domain.Tournament) []domain.Tournament {
	out := make([]domain.Tournament, 0, len(tournaments))
	for _, t := range tournaments {
		if t.Name == "" {
			continue
		}
		if len(t.DateInfo) == 0 && len(t.Venue) == 0 {
			continue
		}
		out = append(out, t)
	}
	return out
}

// BuildDocument assembles the persisted extraction document with summary
// metadata and field-coverage statistics.
func BuildDocument(tournaments []domain.Tournament, threshold float64) domain.TournamentDocument {
	meta := domain.ExtractionMetadata{
		TotalTournaments:       len(tournaments),
		MinConfidenceThreshold: threshold,
		ExtractedAt:            time.Now().UTC(),
	}
	stats := domain.ExtractionStatistics{
		BySport: make(map[string]int),
		ByLevel: make(map[string]int),
	}

	var confidenceSum float64
	for i := range tournaments {
		t := &tournaments[i]
		confidenceSum += t.ConfidenceScore

		switch {
		case t.ConfidenceScore >= 0.8:
			meta.ConfidenceDistribution.High++
		case t.ConfidenceScore >= 0.6:
			meta.ConfidenceDistribution.Medium++
		default:
			meta.ConfidenceDistribution.Low++
		}

		stats.BySport[t.SourceSport]++
		stats.ByLevel[t.SourceLevel]++
		if len(t.DateInfo) > 0 {
			stats.WithDates++
		}
		if len(t.Venue) > 0 {
			stats.WithVenues++
		}
		if len(t.ContactInformation) > 0 {
			stats.WithContact++
		}
		if len(t.Prizes) > 0 {
			stats.WithPrizes++
		}
	}
	if len(tournaments) > 0 {
		meta.AverageConfidence = math.Round(confidenceSum/float64(len(tournaments))*1000) / 1000
	}

	return domain.TournamentDocument{
		Metadata:    meta,
		Statistics:  stats,
		Tournaments: tournaments,
	}
}

// normalizeConfidence clamps a numeric or numeric-string confidence into
// [0,1]. Unparseable values get the fallback score.
func normalizeConfidence(v any) float64 {
	var score float64
	switch c := v.(type) {
	case float64:
		score = c
	case int:
		score = float64(c)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return fallbackConfidence
		}
		score = parsed
	default:
		return 0
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func firstPresent(rec map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := rec[k]; ok {
			return v
		}
	}
	return nil
}

// cleanString trims, caps, and clears placeholder noise from a scalar
// value.
func cleanString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if _, placeholder := placeholderValues[s]; placeholder {
		return ""
	}
	if len(s) > maxFieldLength {
		s = s[:maxFieldLength]
	}
	return s
}

// cleanList accepts either a scalar or a list value and returns cleaned
// strings, dropping whatever reduces to nothing.
func cleanList(v any) []string {
	var items []any
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		items = val
	default:
		items = []any{val}
	}

	var out []string
	for _, item := range items {
		if s := cleanString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
