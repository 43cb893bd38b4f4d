package config

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "dev",
		Server: ServerConfig{
			Port:          8501,
			Host:          "localhost",
			MaxUploadSize: 5 << 20,
		},
		Analysis: AnalysisConfig{
			Provider:           ProviderAnthropic,
			Model:              "claude-sonnet-4-20250514",
			Temperature:        0.3,
			SwingMaxTokens:     8000,
			PortfolioMaxTokens: 6000,
			Timeout:            "5m",
			PromptDir:          "prompts",
			Currency:           "EUR",
		},
		Relay: RelayConfig{
			BaseURL:  "https://api.telegram.org",
			MaxChars: 4000,
			Timeout:  "30s",
		},
		Market: MarketConfig{
			StooqURL:    "https://stooq.com",
			ISharesURL:  "https://www.ishares.com",
			HistoryDays: 200,
			CacheTTL:    "15m",
			Timeout:     "30s",
		},
		Secrets: SecretsConfig{
			Path:   ".streamlit/secrets.toml",
			Dotenv: ".env",
		},
		MCP: MCPConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Outputs: []string{"console"},
		},
	}
}
