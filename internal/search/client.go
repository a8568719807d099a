// Package search implements the second pipeline stage: issuing one web
// search per query and scoring, prioritizing, and deduplicating the
// organic results.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonesrussell/gotourney/internal/config"
)

// ErrMissingAPIKey is returned when no search credential is configured.
var ErrMissingAPIKey = errors.New("serper api key not configured")

// providerRequest is the Serper search request body.
type providerRequest struct {
	Query     string `json:"q"`
	Num       int    `json:"num"`
	Language  string `json:"hl"`
	Geography string `json:"gl"`
}

// providerResponse is the subset of the Serper response the collector uses.
type providerResponse struct {
	Organic []OrganicResult `json:"organic"`
}

type OrganicResult struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}

// Client issues region-localized web searches against a Serper-compatible
// endpoint.
type Client struct {
	cfg        config.SerperConfig
	httpClient *http.Client
}

// NewClient creates a search client. Returns ErrMissingAPIKey when no
// credential is present so the stage can fail soft up front.
func NewClient(cfg config.SerperConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Client{
		cfg:        cfg,
		httpClient: http.DefaultClient,
	}, nil
}

// Search issues a single search request. Transport errors and non-2xx
// statuses are returned to the caller, which treats them as zero results
// for that query. No retries.
func (c *Client) Search(ctx context.Context, query string) ([]OrganicResult, error) {
	body, err := json.Marshal(providerRequest{
		Query:     query,
		Num:       c.cfg.ResultCount,
		Language:  c.cfg.Language,
		Geography: c.cfg.Geography,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request: unexpected status %d", resp.StatusCode)
	}

	var parsed providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	return parsed.Organic, nil
}
