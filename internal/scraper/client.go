package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jonesrussell/gotourney/internal/config"
)

// ErrMissingAPIKey is returned when no scrape credential is configured.
var ErrMissingAPIKey = errors.New("firecrawl api key not configured")

const scrapePath = "/v0/scrape"

// Tags kept and stripped when the provider renders main content.
var (
	includeTags = []string{"title", "meta", "h1", "h2", "h3", "p", "div", "table", "ul", "ol"}
	excludeTags = []string{"script", "style", "nav", "footer", "header", "aside"}
)

// scrapeRequest is the Firecrawl scrape request body.
type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
	IncludeTags     []string `json:"includeTags"`
	ExcludeTags     []string `json:"excludeTags"`
	WaitFor         int64    `json:"waitFor"`
}

// scrapeResponse is the subset of the Firecrawl response the pipeline uses.
type scrapeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string         `json:"markdown"`
		HTML     string         `json:"html"`
		Metadata map[string]any `json:"metadata"`
	} `json:"data"`
}

// Client fetches rendered page content through a Firecrawl-compatible
// endpoint.
type Client struct {
	cfg        config.FirecrawlConfig
	httpClient *http.Client
}

// NewClient creates a scrape client. Returns ErrMissingAPIKey when no
// credential is present so the stage can fail soft up front.
func NewClient(cfg config.FirecrawlConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Client{
		cfg:        cfg,
		httpClient: http.DefaultClient,
	}, nil
}

// Scrape fetches one URL. Provider failures are reported as an error so the
// caller can record the page as unsuccessful and continue.
func (c *Client) Scrape(ctx context.Context, pageURL string) (markdown, html string, metadata map[string]any, err error) {
	body, err := json.Marshal(scrapeRequest{
		URL:             pageURL,
		Formats:         []string{"markdown", "html"},
		OnlyMainContent: true,
		IncludeTags:     includeTags,
		ExcludeTags:     excludeTags,
		WaitFor:         c.cfg.WaitFor.Milliseconds(),
	})
	if err != nil {
		return "", "", nil, fmt.Errorf("marshal scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+scrapePath, bytes.NewReader(body))
	if err != nil {
		return "", "", nil, fmt.Errorf("build scrape request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", nil, fmt.Errorf("scrape %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", "", nil, fmt.Errorf("scrape %s: status %d: %s", pageURL, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var parsed scrapeResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&parsed); decodeErr != nil {
		return "", "", nil, fmt.Errorf("decode scrape response for %s: %w", pageURL, decodeErr)
	}
	if !parsed.Success {
		return "", "", nil, fmt.Errorf("scrape %s: provider reported failure", pageURL)
	}

	return parsed.Data.Markdown, parsed.Data.HTML, parsed.Data.Metadata, nil
}
