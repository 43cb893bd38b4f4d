// Package anthropic submits analysis prompts to the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/bobmcallan/stock-radar/internal/common"
	"github.com/bobmcallan/stock-radar/internal/models"
)

const DefaultModel = "claude-sonnet-4-20250514"

// Client wraps the SDK client. It sends exactly one request per Submit.
type Client struct {
	client sdk.Client
	model  string
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*clientOptions)

type clientOptions struct {
	model   string
	baseURL string
	logger  *common.Logger
}

// WithModel sets the model identifier.
func WithModel(model string) ClientOption {
	return func(o *clientOptions) {
		if model != "" {
			o.model = model
		}
	}
}

// WithBaseURL points the client at a different API host.
func WithBaseURL(url string) ClientOption {
	return func(o *clientOptions) {
		o.baseURL = url
	}
}

// WithLogger sets the logger. A nil logger keeps the silent default.
func WithLogger(logger *common.Logger) ClientOption {
	return func(o *clientOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewClient creates a client for apiKey. SDK retries are disabled.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	o := clientOptions{model: DefaultModel, logger: common.NewSilentLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if o.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(o.baseURL))
	}

	return &Client{
		client: sdk.NewClient(reqOpts...),
		model:  o.model,
		logger: o.logger,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

// Submit sends prompt as a single user message and returns the first text block.
func (c *Client) Submit(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	c.logger.Debug().Str("model", c.model).Int("max_tokens", maxTokens).Msg("Submitting prompt")

	message, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(c.model),
		MaxTokens:   int64(maxTokens),
		Temperature: sdk.Float(temperature),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", models.NewTransportError("anthropic request failed", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			c.logger.Debug().
				Str("stop_reason", string(message.StopReason)).
				Int("output_tokens", int(message.Usage.OutputTokens)).
				Msg("Prompt answered")
			return block.Text, nil
		}
	}
	return "", models.NewTransportError("anthropic response contained no text", fmt.Errorf("%d content blocks", len(message.Content)))
}
