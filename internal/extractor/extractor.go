package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonesrussell/gotourney/internal/config"
	"github.com/jonesrussell/gotourney/internal/domain"
	"github.com/jonesrussell/gotourney/internal/llm"
	"github.com/jonesrussell/gotourney/internal/logger"
)

const extractPrompt = `Extract tournament details from this content. Return only valid JSON.

Content: %s

Find tournaments and return JSON array with format:
[{"name": "Tournament Name", "tournament_date": "Date", "registration_deadline": "Deadline", "level": "Level", "venue": "Venue", "summary": "Description", "confidence_score": 0.8}]

Look for registration deadlines with keywords: deadline, last date, closing date, apply by, registration closes.

Return only JSON array or [] if no tournaments found.`

// Extractor turns scraped page content into structured tournament records
// through a language model.
type Extractor struct {
	completer llm.Completer
	llmCfg    config.AnthropicConfig
	threshold float64
	logger    logger.Interface
}

// New creates an extractor. threshold is the minimum confidence score a
// record needs to survive filtering.
func New(completer llm.Completer, llmCfg config.AnthropicConfig, threshold float64, log logger.Interface) *Extractor {
	return &Extractor{
		completer: completer,
		llmCfg:    llmCfg,
		threshold: threshold,
		logger:    log.WithComponent("extractor"),
	}
}

// Extract asks the model for tournament records in one page's content.
// Returns loosely-typed records; Enhance turns them into Tournament values.
// A response that cannot be parsed falls back to pattern salvage rather
// than failing the page.
func (e *Extractor) Extract(ctx context.Context, content *domain.ScrapedContent) ([]map[string]any, error) {
	raw := content.TournamentInfo.RawContent
	trimmed := TrimForPrompt(raw, maxPromptContent)
	e.logger.Debug("Trimmed content for prompt", "original", len(raw), "trimmed", len(trimmed))

	response, err := e.completer.Complete(ctx, llm.Request{
		Prompt:      fmt.Sprintf(extractPrompt, trimmed),
		Temperature: e.llmCfg.ExtractTemp,
		MaxTokens:   e.llmCfg.ExtractMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("model extraction: %w", err)
	}

	tournaments := parseResponse(response)
	e.logger.Info("Extracted tournament records", "url", content.TournamentInfo.URL, "count", len(tournaments))
	return tournaments, nil
}

// parseResponse recovers a record list from a model response: code fences
// stripped, the outermost JSON array isolated, common malformations
// repaired, pattern salvage as the last resort. A single object is
// promoted to a one-element list.
func parseResponse(response string) []map[string]any {
	cleaned := stripCodeFences(strings.TrimSpace(response))

	jsonStr := cleaned
	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start != -1 && end > start {
		jsonStr = cleaned[start : end+1]
	}
	jsonStr = fixJSON(jsonStr)

	var tournaments []map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &tournaments); err == nil {
		return tournaments
	}

	var single map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &single); err == nil && single != nil {
		return []map[string]any{single}
	}

	return fallbackParse(cleaned)
}

func stripCodeFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
