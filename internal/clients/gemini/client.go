// Package gemini submits analysis prompts to the Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/bobmcallan/stock-radar/internal/common"
	"github.com/bobmcallan/stock-radar/internal/models"
)

const DefaultModel = "gemini-2.5-flash"

// Client wraps a genai client for one model.
type Client struct {
	client *genai.Client
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

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(o *clientOptions) {
		if model != "" {
			o.model = model
		}
	}
}

// WithBaseURL overrides the API endpoint.
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

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	o := clientOptions{model: DefaultModel, logger: common.NewSilentLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if o.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: o.baseURL}
	}

	genaiClient, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, models.NewConfigurationError("failed to create Gemini client", err)
	}

	return &Client{client: genaiClient, model: o.model, logger: o.logger}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

// Submit generates content for prompt and returns the first candidate's text.
func (c *Client) Submit(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	c.logger.Debug().Str("model", c.model).Int("max_tokens", maxTokens).Msg("Generating content")

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(temperature)),
		MaxOutputTokens: int32(maxTokens),
	}
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", models.NewTransportError("gemini request failed", err)
	}

	return extractTextFromResponse(result)
}

func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", models.NewTransportError("gemini response contained no text", fmt.Errorf("no content generated"))
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", models.NewTransportError("gemini response contained no text", fmt.Errorf("empty parts"))
	}
	return sb.String(), nil
}
