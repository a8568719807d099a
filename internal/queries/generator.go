// Package queries implements the first pipeline stage: building the
// search query set covering every configured sport/level pair.
package queries

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jonesrussell/gotourney/internal/config"
	"github.com/jonesrussell/gotourney/internal/domain"
	"github.com/jonesrussell/gotourney/internal/llm"
	"github.com/jonesrussell/gotourney/internal/logger"
)

// Template sets. Local tiers get their own phrasing because "State level
// cricket tournament" style queries surface nothing useful for society or
// neighborhood events.
var regularTemplates = []string{
	"{sport} tournament {level} India 2025 registration",
	"{sport} championship {level} 2025 official schedule",
	"India {sport} {level} competition 2025 venues dates",
}

var localTemplates = []string{
	"{sport} local {level} tournament India 2025",
	"India {level} {sport} community competition 2025",
	"{level} level {sport} tournament India cities 2025",
}

// expandTemplate substitutes the sport and level placeholders.
func expandTemplate(tmpl, sport, level string) string {
	out := strings.ReplaceAll(tmpl, "{sport}", sport)
	return strings.ReplaceAll(out, "{level}", level)
}

// TemplatesPerPair is the number of queries each template set yields for
// one sport/level pair.
const TemplatesPerPair = 3

// Generator builds, enhances, and deduplicates search queries.
type Generator struct {
	cfg       config.PipelineConfig
	llmCfg    config.AnthropicConfig
	completer llm.Completer
	logger    logger.Interface
}

// NewGenerator creates a query generator. completer may be nil, in which
// case Enhance is a no-op passthrough.
func NewGenerator(cfg config.PipelineConfig, llmCfg config.AnthropicConfig, completer llm.Completer, log logger.Interface) *Generator {
	return &Generator{
		cfg:       cfg,
		llmCfg:    llmCfg,
		completer: completer,
		logger:    log.WithComponent("queries"),
	}
}

// GenerateBase emits TemplatesPerPair queries for every configured
// sport/level pair, choosing the template set by the level's kind.
func (g *Generator) GenerateBase() []domain.Query {
	var out []domain.Query
	for _, sport := range g.cfg.Sports {
		for _, level := range g.cfg.AllLevels() {
			out = append(out, g.ForPair(sport, level)...)
		}
	}

	g.logger.Info("Generated base queries",
		"count", len(out),
		"sports", len(g.cfg.Sports),
		"levels", len(g.cfg.AllLevels()),
	)
	return out
}

// ForPair emits the template queries for a single sport/level pair.
func (g *Generator) ForPair(sport, level string) []domain.Query {
	templates := regularTemplates
	kind := domain.TemplateRegular
	if g.cfg.IsLocalLevel(level) {
		templates = localTemplates
		kind = domain.TemplateLocal
	}

	out := make([]domain.Query, 0, len(templates))
	for _, tmpl := range templates {
		text := expandTemplate(tmpl, sport, level)
		out = append(out, domain.Query{
			Sport:        sport,
			Level:        level,
			Text:         text,
			Source:       domain.SourceTemplate,
			TemplateKind: kind,
		})
	}
	return out
}

// enhancePrompt asks for additional queries over the whole coverage space
// in a strict JSON shape.
const enhancePrompt = `Generate 3 additional search queries for finding tournament information for each sport-level combination.
Focus on finding official tournament websites, registration pages, and schedule information.

Make queries specific to India and include year 2025.
Vary the language and terms used (tournament, championship, competition, league, cup, series, etc.).

Sports: %s
Levels: %s

Return only the additional queries in this exact JSON format:
[
    {"sport": "Cricket", "level": "School", "query": "example query"},
    ...
]`

// Enhance asks the language model for additional queries covering the same
// sport/level space. Best-effort: any failure (no client, transport error,
// malformed response) returns the input unchanged.
func (g *Generator) Enhance(ctx context.Context, base []domain.Query) []domain.Query {
	if g.completer == nil {
		g.logger.Info("No language model configured, skipping query enhancement")
		return base
	}

	prompt := fmt.Sprintf(enhancePrompt,
		strings.Join(g.cfg.Sports, ", "),
		strings.Join(g.cfg.AllLevels(), ", "),
	)

	resp, err := g.completer.Complete(ctx, llm.Request{
		Prompt:      prompt,
		Temperature: g.llmCfg.EnhanceTemp,
		MaxTokens:   g.llmCfg.EnhanceMaxTokens,
	})
	if err != nil {
		g.logger.Warn("Query enhancement failed, keeping base queries", "error", err)
		return base
	}

	var extra []domain.Query
	if err := json.Unmarshal([]byte(stripCodeFences(resp)), &extra); err != nil {
		g.logger.Warn("Could not parse enhanced queries, keeping base queries", "error", err)
		return base
	}

	for i := range extra {
		extra[i].Source = domain.SourceModel
	}

	g.logger.Info("Added model-generated queries", "count", len(extra))
	return append(base, extra...)
}

// Dedup removes duplicate queries by case-insensitive, whitespace-trimmed
// text match, keeping the first occurrence and preserving order.
func Dedup(in []domain.Query) []domain.Query {
	seen := make(map[string]struct{}, len(in))
	out := make([]domain.Query, 0, len(in))
	for _, q := range in {
		key := strings.ToLower(strings.TrimSpace(q.Text))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
	}
	return out
}

// GenerateAll runs the full stage: base generation, best-effort model
// enhancement, and deduplication.
func (g *Generator) GenerateAll(ctx context.Context) domain.QueryDocument {
	queries := g.GenerateBase()
	queries = g.Enhance(ctx, queries)

	before := len(queries)
	queries = Dedup(queries)
	if removed := before - len(queries); removed > 0 {
		g.logger.Info("Removed duplicate queries", "count", removed)
	}

	return domain.QueryDocument{
		Metadata: domain.QueryMetadata{
			TotalQueries: len(queries),
			Sports:       g.cfg.Sports,
			Levels:       g.cfg.AllLevels(),
			GeneratedAt:  time.Now().UTC(),
		},
		Queries: queries,
	}
}

// stripCodeFences removes markdown code fence markers from a model reply.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
