// Package anthropic implements llm.Completer on the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/jonesrussell/north-cloud/extracurricular/internal/llm"
)

const (
	providerName = "anthropic"

	// DefaultModel is used when no model is configured.
	DefaultModel     = "claude-sonnet-4-5"
	defaultMaxTokens = 2048
	jsonInstruction  = "Respond with JSON only, without markdown or commentary."
)

// Config configures the client.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint.
	BaseURL string
	// HTTPClient replaces the SDK's default client.
	HTTPClient *http.Client
}

// Client calls the Messages API.
type Client struct {
	client sdk.Client
	model  string
}

// New creates a Client. SDK-level retries are disabled; llm.Resilient retries instead.
func New(cfg Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Client{client: sdk.NewClient(opts...), model: model}
}

// Complete sends req as a single user message.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	system := req.System
	if req.JSON {
		system = strings.TrimSpace(system + "\n" + jsonInstruction)
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
		Temperature: sdk.Float(req.Temperature),
	}
	if system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", classify(err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", llm.ErrEmptyCompletion
	}
	return b.String(), nil
}

func classify(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		statusErr := &llm.StatusError{Provider: providerName, StatusCode: apiErr.StatusCode, Err: err}
		if apiErr.Response != nil {
			statusErr.RetryAfter = llm.ParseRetryAfter(apiErr.Response.Header)
		}
		return statusErr
	}
	return err
}
