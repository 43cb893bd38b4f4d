package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Environment string         `toml:"environment"`
	Server      ServerConfig   `toml:"server"`
	Analysis    AnalysisConfig `toml:"analysis"`
	Relay       RelayConfig    `toml:"relay"`
	Market      MarketConfig   `toml:"market"`
	Secrets     SecretsConfig  `toml:"secrets"`
	MCP         MCPConfig      `toml:"mcp"`
	Logging     LoggingConfig  `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port          int    `toml:"port"`
	Host          string `toml:"host"`
	MaxUploadSize int64  `toml:"max_upload_size"`

	// AllowedOrigins lists extra browser origins (scheme://host[:port]) that
	// may call the API besides the dashboard's own origin.
	AllowedOrigins []string `toml:"allowed_origins"`
}

// AnalysisConfig contains model service settings.
type AnalysisConfig struct {
	Provider           string  `toml:"provider"` // "anthropic" or "gemini"
	Model              string  `toml:"model"`
	BaseURL            string  `toml:"base_url"`
	Temperature        float64 `toml:"temperature"`
	SwingMaxTokens     int     `toml:"swing_max_tokens"`
	PortfolioMaxTokens int     `toml:"portfolio_max_tokens"`
	Timeout            string  `toml:"timeout"`
	PromptDir          string  `toml:"prompt_dir"`
	Currency           string  `toml:"currency"`
}

// GetTimeout parses the model call timeout, defaulting to 5 minutes.
func (c *AnalysisConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// CredentialKey returns the secret name holding the provider's API key.
func (c *AnalysisConfig) CredentialKey() string {
	if strings.EqualFold(c.Provider, ProviderGemini) {
		return "GEMINI_API_KEY"
	}
	return "ANTHROPIC_API_KEY"
}

// RelayConfig contains chat-bot relay settings.
type RelayConfig struct {
	BaseURL  string `toml:"base_url"`
	MaxChars int    `toml:"max_chars"`
	Timeout  string `toml:"timeout"`
}

// GetTimeout parses the relay timeout, defaulting to 30 seconds.
func (c *RelayConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// MarketConfig contains public market data endpoints.
type MarketConfig struct {
	StooqURL    string `toml:"stooq_url"`
	ISharesURL  string `toml:"ishares_url"`
	HistoryDays int    `toml:"history_days"`
	CacheTTL    string `toml:"cache_ttl"`
	Timeout     string `toml:"timeout"`
}

// GetCacheTTL parses the market data cache TTL, defaulting to 15 minutes.
func (c *MarketConfig) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// GetTimeout parses the market data timeout, defaulting to 30 seconds.
func (c *MarketConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// SecretsConfig locates the managed secret file and the optional .env file.
type SecretsConfig struct {
	Path   string `toml:"path"`
	Dotenv string `toml:"dotenv"`
}

// MCPConfig toggles the /mcp endpoint.
type MCPConfig struct {
	Enabled bool `toml:"enabled"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// Supported model providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies STOCK_RADAR_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("STOCK_RADAR_ENV"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("STOCK_RADAR_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("STOCK_RADAR_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if origins := os.Getenv("STOCK_RADAR_ALLOWED_ORIGINS"); origins != "" {
		config.Server.AllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				config.Server.AllowedOrigins = append(config.Server.AllowedOrigins, o)
			}
		}
	}
	if provider := os.Getenv("STOCK_RADAR_PROVIDER"); provider != "" {
		config.Analysis.Provider = strings.ToLower(provider)
	}
	if model := os.Getenv("STOCK_RADAR_MODEL"); model != "" {
		config.Analysis.Model = model
	}
	if path := os.Getenv("STOCK_RADAR_SECRETS_PATH"); path != "" {
		config.Secrets.Path = path
	}
	if level := os.Getenv("STOCK_RADAR_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate returns a list of human-readable configuration problems.
func (c *Config) Validate() []string {
	var issues []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be between 1 and 65535 (got %d)", c.Server.Port))
	}

	switch strings.ToLower(c.Analysis.Provider) {
	case ProviderAnthropic, ProviderGemini:
	default:
		issues = append(issues, fmt.Sprintf("analysis.provider must be %q or %q (got %q)", ProviderAnthropic, ProviderGemini, c.Analysis.Provider))
	}
	if strings.TrimSpace(c.Analysis.Model) == "" {
		issues = append(issues, "analysis.model is required")
	}
	if c.Analysis.Temperature < 0 || c.Analysis.Temperature > 1 {
		issues = append(issues, fmt.Sprintf("analysis.temperature must be within [0, 1] (got %g)", c.Analysis.Temperature))
	}
	if c.Analysis.SwingMaxTokens <= 0 || c.Analysis.PortfolioMaxTokens <= 0 {
		issues = append(issues, "analysis.swing_max_tokens and analysis.portfolio_max_tokens must be positive")
	}
	if c.Relay.MaxChars <= 0 {
		issues = append(issues, "relay.max_chars must be positive")
	}

	return issues
}

// IsProduction reports whether the environment is production.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "prod" || env == "production"
}

// BaseURL returns the externally visible URL of the dashboard.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
}
