// Package telegram sends messages through the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bobmcallan/stock-radar/internal/common"
	"github.com/bobmcallan/stock-radar/internal/models"
)

const (
	DefaultBaseURL = "https://api.telegram.org"
	DefaultTimeout = 30 * time.Second
	ParseMode      = "Markdown"
)

// SendMessageRequest is the sendMessage payload.
type SendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Client posts to the Bot API. It never retries.
type Client struct {
	client *resty.Client
	logger *common.Logger
}

// NewClient creates a Telegram client. An empty baseURL uses the public API.
func NewClient(baseURL string, timeout time.Duration, logger *common.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetRetryCount(0)

	return &Client{client: client, logger: logger}
}

// SendMessage posts text to chatID. Only HTTP 200 counts as delivered.
func (c *Client) SendMessage(ctx context.Context, botToken, chatID, text string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(SendMessageRequest{ChatID: chatID, Text: text, ParseMode: ParseMode}).
		Post(fmt.Sprintf("/bot%s/sendMessage", botToken))
	if err != nil {
		// resty errors embed the request URL, which contains the token
		c.logger.Warn().Str("chat_id", chatID).Msg("Telegram request failed")
		return models.NewTransportError("telegram request failed", fmt.Errorf("%s", redact(err.Error(), botToken)))
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Warn().Int("status", resp.StatusCode()).Str("chat_id", chatID).Msg("Telegram rejected message")
		return models.NewTransportError(fmt.Sprintf("telegram returned HTTP %d", resp.StatusCode()), nil)
	}

	c.logger.Info().Str("chat_id", chatID).Int("chars", len([]rune(text))).Msg("Telegram message sent")
	return nil
}
