package extractor

import (
	"sort"
	"strings"
)

// maxPromptContent bounds how much page content goes into the model prompt.
const maxPromptContent = 6000

// Keywords that mark a paragraph as likely to carry tournament details.
var promptKeywords = []string{
	"tournament", "championship", "competition", "league", "cup", "open",
	"registration", "entry", "participate", "eligibility", "venue", "date",
	"prize", "award", "fee", "contact", "schedule", "format", "rules",
}

// minParagraphLength skips headings and stray fragments when scoring.
const minParagraphLength = 20

// TrimForPrompt reduces page content to at most maxLen characters, keeping
// the paragraphs most likely to describe a tournament. Paragraphs are
// scored by keyword occurrences and greedily packed in score order; if the
// selection comes up short the beginning of the original content is
// prepended to fill the budget.
func TrimForPrompt(content string, maxLen int) string {
	if len(content) <= maxLen {
		return content
	}

	type scored struct {
		score int
		index int
		text  string
	}

	var paragraphs []scored
	for i, para := range strings.Split(content, "\n") {
		if len(strings.TrimSpace(para)) < minParagraphLength {
			continue
		}
		lower := strings.ToLower(para)
		var score int
		for _, kw := range promptKeywords {
			score += strings.Count(lower, kw)
		}
		paragraphs = append(paragraphs, scored{score: score, index: i, text: para})
	}

	sort.SliceStable(paragraphs, func(i, j int) bool {
		return paragraphs[i].score > paragraphs[j].score
	})

	var selected []string
	var total int
	for _, p := range paragraphs {
		if total+len(p.text) > maxLen {
			break
		}
		selected = append(selected, p.text)
		total += len(p.text)
	}

	result := strings.Join(selected, "\n")
	if len(result) < maxLen/2 {
		remaining := maxLen - len(result)
		result = content[:remaining] + "\n" + result
	}

	if len(result) > maxLen {
		result = result[:maxLen]
	}
	return result
}
