package extractor

import (
	"regexp"
	"strings"
)

// fallbackConfidence marks records recovered without a clean JSON parse.
const fallbackConfidence = 0.5

// fixJSON repairs the malformations the model most often produces:
// trailing commas before closing brackets and unterminated string values.
func fixJSON(s string) string {
	s = strings.ReplaceAll(s, ",]", "]")
	s = strings.ReplaceAll(s, ",}", "}")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.Count(line, `"`)%2 == 0 {
			continue
		}
		trimmed := strings.TrimRight(line, " \t")
		if strings.HasSuffix(trimmed, ",") {
			lines[i] = trimmed[:len(trimmed)-1] + `",`
		} else {
			lines[i] = trimmed + `"`
		}
	}
	return strings.Join(lines, "\n")
}

var fallbackNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)["']name["']:\s*["']([^"']+)["']`),
	regexp.MustCompile(`(?i)Tournament[:\s]+([^\n,]+)`),
	regexp.MustCompile(`(?i)Championship[:\s]+([^\n,]+)`),
}

// fallbackParse salvages records from an unparseable model response using
// name patterns, at most one per pattern, tagged with a low confidence
// score.
func fallbackParse(response string) []map[string]any {
	var tournaments []map[string]any
	for _, p := range fallbackNamePatterns {
		for _, m := range p.FindAllStringSubmatch(response, -1) {
			name := strings.TrimSpace(m[1])
			if len(name) > 3 {
				tournaments = append(tournaments, map[string]any{
					"name":             name,
					"confidence_score": fallbackConfidence,
					"summary":          "Extracted via fallback parsing",
				})
				break
			}
		}
	}
	return tournaments
}
