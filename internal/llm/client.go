// Package llm wraps the Anthropic messages API behind a minimal
// single-turn completion interface used by the query generator and the
// tournament extractor.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/jonesrussell/gotourney/internal/config"
)

// ErrMissingAPIKey is returned when no Anthropic credential is configured.
var ErrMissingAPIKey = errors.New("anthropic api key not configured")

// Request is a single-turn completion request.
type Request struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completer issues single-turn completion requests.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Client is the Anthropic-backed Completer.
type Client struct {
	client anthropic.Client
	model  string
}

// NewClient creates a client from config. Returns ErrMissingAPIKey when no
// credential is present so callers can degrade instead of failing later.
func NewClient(cfg config.AnthropicConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}

	return &Client{
		client: anthropic.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

// Complete sends one user message and returns the concatenated text blocks
// of the response.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
