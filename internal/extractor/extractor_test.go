package extractor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/gotourney/internal/config"
	"github.com/jonesrussell/gotourney/internal/domain"
	"github.com/jonesrussell/gotourney/internal/extractor"
	"github.com/jonesrussell/gotourney/internal/llm"
	"github.com/jonesrussell/gotourney/internal/logger"
)

type fakeCompleter struct {
	response string
	err      error
	lastReq  llm.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	f.lastReq = req
	return f.response, f.err
}

func newExtractor(completer llm.Completer) *extractor.Extractor {
	cfg := config.AnthropicConfig{ExtractTemp: 0.1, ExtractMaxTokens: 1500}
	return extractor.New(completer, cfg, 0.7, logger.NewNoOp())
}

func pageContent(raw string) *domain.ScrapedContent {
	return &domain.ScrapedContent{
		TournamentInfo: domain.PageExtract{URL: "https://x.example", RawContent: raw},
	}
}

func TestExtractParsesCleanArray(t *testing.T) {
	completer := &fakeCompleter{
		response: `[{"name": "State Open", "tournament_date": "March 2026", "venue": "Pune", "confidence_score": 0.9}]`,
	}
	e := newExtractor(completer)

	records, err := e.Extract(context.Background(), pageContent("tournament content"))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "State Open", records[0]["name"])
	assert.InDelta(t, 0.1, completer.lastReq.Temperature, 0.001)
	assert.Equal(t, 1500, completer.lastReq.MaxTokens)
}

func TestExtractStripsCodeFences(t *testing.T) {
	completer := &fakeCompleter{
		response: "```json\n[{\"name\": \"City Cup\", \"confidence_score\": 0.8}]\n```",
	}
	e := newExtractor(completer)

	records, err := e.Extract(context.Background(), pageContent("content"))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "City Cup", records[0]["name"])
}

func TestExtractRepairsTrailingCommas(t *testing.T) {
	completer := &fakeCompleter{
		response: `[{"name": "District League", "confidence_score": 0.75,},]`,
	}
	e := newExtractor(completer)

	records, err := e.Extract(context.Background(), pageContent("content"))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "District League", records[0]["name"])
}

func TestExtractPromotesSingleObject(t *testing.T) {
	completer := &fakeCompleter{
		response: `{"name": "Solo Event", "confidence_score": 0.8}`,
	}
	e := newExtractor(completer)

	records, err := e.Extract(context.Background(), pageContent("content"))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Solo Event", records[0]["name"])
}

func TestExtractFallsBackOnGarbage(t *testing.T) {
	completer := &fakeCompleter{
		response: `The page mentions a Tournament: Inter-College Chess Meet, held annually.`,
	}
	e := newExtractor(completer)

	records, err := e.Extract(context.Background(), pageContent("content"))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Inter-College Chess Meet", records[0]["name"])
	assert.InDelta(t, 0.5, records[0]["confidence_score"], 0.001)
}

func TestExtractFallbackSalvagesCapitalizedNameKey(t *testing.T) {
	completer := &fakeCompleter{
		response: `Partial output follows {"Name": "Delhi State Badminton Open" and then trails off`,
	}
	e := newExtractor(completer)

	records, err := e.Extract(context.Background(), pageContent("content"))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Delhi State Badminton Open", records[0]["name"])
	assert.InDelta(t, 0.5, records[0]["confidence_score"], 0.001)
}

func TestExtractEmptyArrayYieldsNoRecords(t *testing.T) {
	completer := &fakeCompleter{response: `[]`}
	e := newExtractor(completer)

	records, err := e.Extract(context.Background(), pageContent("content"))

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExtractPropagatesModelError(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("rate limited")}
	e := newExtractor(completer)

	_, err := e.Extract(context.Background(), pageContent("content"))

	assert.Error(t, err)
}
