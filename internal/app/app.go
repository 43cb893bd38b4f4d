// Package app wires configuration, services and HTTP handlers together.
package app

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/stock-radar/internal/analysis"
	"github.com/bobmcallan/stock-radar/internal/clients/ishares"
	"github.com/bobmcallan/stock-radar/internal/clients/stooq"
	"github.com/bobmcallan/stock-radar/internal/clients/telegram"
	"github.com/bobmcallan/stock-radar/internal/common"
	"github.com/bobmcallan/stock-radar/internal/config"
	"github.com/bobmcallan/stock-radar/internal/document"
	"github.com/bobmcallan/stock-radar/internal/handlers"
	"github.com/bobmcallan/stock-radar/internal/market"
	"github.com/bobmcallan/stock-radar/internal/mcp"
	"github.com/bobmcallan/stock-radar/internal/prompt"
	"github.com/bobmcallan/stock-radar/internal/relay"
	"github.com/bobmcallan/stock-radar/internal/secrets"
)

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	// Services
	Analysis *analysis.Service
	Renderer *document.Renderer
	Relay    *relay.Service
	Market   *market.Service

	// HTTP handlers
	PageHandler      *handlers.PageHandler
	HealthHandler    *handlers.HealthHandler
	VersionHandler   *handlers.VersionHandler
	DashboardHandler *handlers.DashboardHandler
	AnalysisHandler  *handlers.AnalysisHandler
	PreviewHandler   *handlers.PreviewHandler
	ExportHandler    *handlers.ExportHandler
	RelayHandler     *handlers.RelayHandler
	MarketHandler    *handlers.MarketHandler
	MCPHandler       *mcp.Handler
}

// New initializes the application with all dependencies. Missing provider
// credentials are not an error here; they surface on the first analysis.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	env := strings.ToLower(strings.TrimSpace(cfg.Environment))
	if env != "dev" && !cfg.IsProduction() && env != "" {
		logger.Warn().
			Str("environment", cfg.Environment).
			Msg("unrecognized environment value, defaulting to prod behavior")
	}

	if err := a.initServices(); err != nil {
		return nil, err
	}
	a.initHandlers()

	logger.Info().Msg("application initialization complete")

	return a, nil
}

// initServices builds the analysis, document, relay and market services.
func (a *App) initServices() error {
	cfg := a.Config

	prompts, err := prompt.Load(cfg.Analysis.PromptDir)
	if err != nil {
		return fmt.Errorf("failed to load prompt templates: %w", err)
	}
	a.Logger.Info().
		Str("swing_source", prompts.SwingSource).
		Msg("prompt templates loaded")

	resolver, err := secrets.NewDefaultResolver(cfg.Secrets.Path)
	if err != nil {
		return fmt.Errorf("failed to open secret file: %w", err)
	}
	if _, source, err := resolver.ResolveWithSource(cfg.Analysis.CredentialKey()); err != nil {
		a.Logger.Warn().
			Str("key", cfg.Analysis.CredentialKey()).
			Msg("model credential not configured; analyses will fail until it is set")
	} else {
		a.Logger.Info().
			Str("key", cfg.Analysis.CredentialKey()).
			Str("source", source).
			Msg("model credential found")
	}

	a.Analysis = analysis.NewService(cfg.Analysis, prompts, resolver, analysis.NewModelFactory(cfg.Analysis, a.Logger), a.Logger)
	a.Renderer = document.NewRenderer(a.Logger)

	chat := telegram.NewClient(cfg.Relay.BaseURL, cfg.Relay.GetTimeout(), a.Logger)
	a.Relay = relay.NewService(chat, cfg.Relay.MaxChars, a.Logger)

	a.Market = market.NewService(
		stooq.NewClient(cfg.Market.StooqURL, cfg.Market.GetTimeout(), a.Logger),
		ishares.NewClient(cfg.Market.ISharesURL, cfg.Market.GetTimeout(), a.Logger),
		cfg.Market.GetCacheTTL(),
		cfg.Market.HistoryDays,
		a.Logger,
	)

	a.Logger.Debug().Msg("services initialized")
	return nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	cfg := a.Config

	a.PageHandler = handlers.NewPageHandler(a.Logger)
	a.HealthHandler = handlers.NewHealthHandler(a.Logger)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)

	a.DashboardHandler = handlers.NewDashboardHandler(a.Logger, handlers.DashboardSettings{
		Provider:       cfg.Analysis.Provider,
		Model:          cfg.Analysis.Model,
		Currency:       a.Analysis.Currency(),
		Port:           cfg.Server.Port,
		MCPEnabled:     cfg.MCP.Enabled,
		ETFs:           ishares.SupportedETFs(),
		DefaultCapital: mcp.DefaultCapital,
		MinCapital:     int(analysis.MinCapital.IntPart()),
		MaxCapital:     int(analysis.MaxCapital.IntPart()),
		CapitalStep:    100,
	})

	a.AnalysisHandler = handlers.NewAnalysisHandler(a.Logger, a.Analysis, cfg.Server.MaxUploadSize)
	a.PreviewHandler = handlers.NewPreviewHandler(a.Logger, cfg.Server.MaxUploadSize)
	a.ExportHandler = handlers.NewExportHandler(a.Logger, a.Renderer)
	a.RelayHandler = handlers.NewRelayHandler(a.Logger, a.Relay)
	a.MarketHandler = handlers.NewMarketHandler(a.Logger, a.Market)

	if cfg.MCP.Enabled {
		a.MCPHandler = mcp.NewHandler(cfg, a.Analysis, a.Market, a.Logger)
	}

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Close closes all application resources.
func (a *App) Close() error {
	return nil
}
