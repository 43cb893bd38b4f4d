package analysis

import (
	"context"
	"strings"

	"github.com/bobmcallan/stock-radar/internal/clients/anthropic"
	"github.com/bobmcallan/stock-radar/internal/clients/gemini"
	"github.com/bobmcallan/stock-radar/internal/common"
	"github.com/bobmcallan/stock-radar/internal/config"
	"github.com/bobmcallan/stock-radar/internal/models"
)

// NewModelFactory returns the factory for the configured provider.
func NewModelFactory(cfg config.AnalysisConfig, logger *common.Logger) ModelFactory {
	switch strings.ToLower(cfg.Provider) {
	case config.ProviderGemini:
		return func(ctx context.Context, apiKey string) (Model, error) {
			return gemini.NewClient(ctx, apiKey,
				gemini.WithModel(cfg.Model),
				gemini.WithBaseURL(cfg.BaseURL),
				gemini.WithLogger(logger),
			)
		}
	case config.ProviderAnthropic, "":
		return func(_ context.Context, apiKey string) (Model, error) {
			return anthropic.NewClient(apiKey,
				anthropic.WithModel(cfg.Model),
				anthropic.WithBaseURL(cfg.BaseURL),
				anthropic.WithLogger(logger),
			), nil
		}
	}
	return func(context.Context, string) (Model, error) {
		return nil, models.NewConfigurationError("unknown analysis provider "+cfg.Provider, nil)
	}
}
