package scraper

import (
	"regexp"
	"strings"

	"github.com/jonesrussell/gotourney/internal/domain"
)

const (
	maxNameLength   = 100
	maxLineLength   = 150
	maxLocLength    = 100
	maxDates        = 5
	maxLinesPerKind = 3
	maxContacts     = 2
	rawContentChars = 2000
)

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{4}`),
	regexp.MustCompile(`\d{4}[/-]\d{1,2}[/-]\d{1,2}`),
	regexp.MustCompile(`(?i)\d{1,2}\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4}`),
	regexp.MustCompile(`(?i)(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}`),
}

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`(\+91|91)?[\s-]?[6-9]\d{9}`)
)

// Line-scan keyword kinds. A line matches a kind when it contains any of
// the kind's keywords; each kind keeps at most maxLinesPerKind lines.
var (
	locationLineKeywords     = []string{"venue", "location", "place", "address", "city", "state"}
	registrationLineKeywords = []string{"registration", "register", "entry", "application", "form", "deadline"}
	eligibilityLineKeywords  = []string{"eligibility", "eligible", "criteria", "qualification", "age", "category"}
	prizeLineKeywords        = []string{"prize", "award", "reward", "cash", "trophy", "medal", "certificate"}
)

// ExtractFields recovers coarse tournament fields from a scraped page by
// regex and keyword-line scanning. It never fails; missing information just
// yields empty fields.
func ExtractFields(page *domain.ScrapedPage) domain.PageExtract {
	markdown := page.Markdown

	raw := markdown
	if len(raw) > rawContentChars {
		raw = raw[:rawContentChars]
	}

	return domain.PageExtract{
		Title:            page.Title,
		URL:              page.URL,
		TournamentName:   extractName(page.Title),
		Dates:            extractDates(markdown),
		Location:         scanLines(markdown, locationLineKeywords, maxLocLength),
		RegistrationInfo: scanLines(markdown, registrationLineKeywords, maxLineLength),
		ContactInfo:      extractContacts(markdown),
		Eligibility:      scanLines(markdown, eligibilityLineKeywords, maxLineLength),
		PrizeInfo:        scanLines(markdown, prizeLineKeywords, maxLineLength),
		RawContent:       raw,
	}
}

// extractName cleans a page title into a tournament name: separator noise
// removed, truncated at the first bullet, capped in length.
func extractName(title string) string {
	name := strings.ReplaceAll(title, " - ", " ")
	name = strings.ReplaceAll(name, "|", " ")
	if idx := strings.Index(name, "•"); idx >= 0 {
		name = name[:idx]
	}
	name = strings.TrimSpace(name)
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}
	return name
}

func extractDates(content string) []string {
	seen := make(map[string]struct{})
	var dates []string
	for _, p := range datePatterns {
		for _, m := range p.FindAllString(content, -1) {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			dates = append(dates, m)
			if len(dates) == maxDates {
				return dates
			}
		}
	}
	return dates
}

// scanLines keeps the first few distinct lines containing any keyword,
// trimmed and capped to maxLen characters.
func scanLines(content string, keywords []string, maxLen int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, line := range strings.Split(content, "\n") {
		lower := strings.ToLower(line)
		for _, kw := range keywords {
			if !strings.Contains(lower, kw) {
				continue
			}
			trimmed := strings.TrimSpace(line)
			if len(trimmed) > maxLen {
				trimmed = trimmed[:maxLen]
			}
			if _, ok := seen[trimmed]; !ok {
				seen[trimmed] = struct{}{}
				out = append(out, trimmed)
			}
			break
		}
		if len(out) == maxLinesPerKind {
			break
		}
	}
	return out
}

func extractContacts(content string) []string {
	var contacts []string
	for i, email := range emailPattern.FindAllString(content, -1) {
		if i == maxContacts {
			break
		}
		contacts = append(contacts, "Email: "+email)
	}
	for i, phone := range phonePattern.FindAllString(content, -1) {
		if i == maxContacts {
			break
		}
		contacts = append(contacts, "Phone: "+strings.TrimSpace(phone))
	}
	return contacts
}
