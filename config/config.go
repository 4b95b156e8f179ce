package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// HTTP configuration
	HTTP HTTPConfig

	// Market data providers
	Alpaca       AlpacaConfig
	AlphaVantage AlphaVantageConfig
	CoinGecko    CoinGeckoConfig
	Yahoo        YahooConfig

	// AWS Bedrock configuration (portfolio insights)
	Bedrock BedrockConfig

	// Notification defaults
	Notification NotificationConfig

	// Analysis configuration
	Analysis AnalysisConfig

	// Alert monitor configuration
	Alerts AlertsConfig

	// Settings store configuration
	Settings SettingsConfig

	// Logging
	Production bool
	LogLevel   string
}

// DatabaseConfig holds database configuration.
// URL selects Postgres (postgres://...); when empty the SQLite file at SQLitePath is used.
type DatabaseConfig struct {
	URL        string
	SQLitePath string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port               string
	CORSAllowedOrigins string
	TimeoutSeconds     int
}

// AlpacaConfig holds Alpaca API configuration
type AlpacaConfig struct {
	APIKey    string
	APISecret string
	DataURL   string
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	APIKey string
}

// CoinGeckoConfig holds CoinGecko API configuration
type CoinGeckoConfig struct {
	APIKey  string
	BaseURL string
}

// YahooConfig holds Yahoo Finance configuration
type YahooConfig struct {
	BaseURL string
}

// BedrockConfig holds AWS Bedrock configuration
type BedrockConfig struct {
	Region           string
	ModelID          string
	MaxTokens        int
	AnthropicVersion string
	// Endpoint overrides the regional runtime endpoint, e.g. for a VPC endpoint or a local stub
	Endpoint string
}

// NotificationConfig holds default notification channel settings.
// Values saved through the settings store take precedence.
type NotificationConfig struct {
	SMTPServer      string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	DefaultEmail    string
	TelegramToken   string
	TelegramChatID  string
	TelegramBaseURL string
}

// AnalysisConfig holds analysis-related configuration
type AnalysisConfig struct {
	DefaultPeriod    string
	FetchConcurrency int
	FetchTimeoutSec  int
	Benchmarks       []BenchmarkConfig
}

// BenchmarkConfig identifies a reference series used for comparison
type BenchmarkConfig struct {
	Label     string
	Symbol    string
	AssetType string
}

// AlertsConfig holds alert monitor configuration
type AlertsConfig struct {
	CheckIntervalSeconds int // 0 disables the background monitor
}

// SettingsConfig holds the encrypted settings store configuration
type SettingsConfig struct {
	DataDir    string
	Passphrase string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	benchmarks, err := parseBenchmarks(getEnvString("ANALYSIS_BENCHMARKS", "S&P 500=^GSPC:stock,Bitcoin=BTC:crypto"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: DatabaseConfig{
			URL:        os.Getenv("DATABASE_URL"),
			SQLitePath: getEnvString("SQLITE_PATH", "./portfolio.db"),
		},
		HTTP: HTTPConfig{
			Port:               getEnvString("PORT", "8080"),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
			TimeoutSeconds:     getEnvInt("HTTP_TIMEOUT_SECONDS", 60),
		},
		Alpaca: AlpacaConfig{
			APIKey:    os.Getenv("ALPACA_API_KEY"),
			APISecret: os.Getenv("ALPACA_API_SECRET"),
			DataURL:   os.Getenv("ALPACA_DATA_URL"),
		},
		AlphaVantage: AlphaVantageConfig{
			APIKey: os.Getenv("ALPHA_VANTAGE_API_KEY"),
		},
		CoinGecko: CoinGeckoConfig{
			APIKey:  os.Getenv("COINGECKO_API_KEY"),
			BaseURL: getEnvString("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3"),
		},
		Yahoo: YahooConfig{
			BaseURL: getEnvString("YAHOO_BASE_URL", "https://query2.finance.yahoo.com"),
		},
		Bedrock: BedrockConfig{
			Region:           os.Getenv("AWS_REGION"),
			ModelID:          os.Getenv("BEDROCK_MODEL_ID"),
			MaxTokens:        getEnvInt("BEDROCK_MAX_TOKENS", 1024),
			AnthropicVersion: getEnvString("BEDROCK_ANTHROPIC_VERSION", "bedrock-2023-05-31"),
			Endpoint:         os.Getenv("BEDROCK_ENDPOINT"),
		},
		Notification: NotificationConfig{
			SMTPServer:      getEnvString("SMTP_SERVER", "smtp.gmail.com"),
			SMTPPort:        getEnvInt("SMTP_PORT", 587),
			SMTPUsername:    os.Getenv("SMTP_USERNAME"),
			SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
			DefaultEmail:    os.Getenv("DEFAULT_EMAIL"),
			TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
			TelegramChatID:  os.Getenv("TELEGRAM_CHAT_ID"),
			TelegramBaseURL: getEnvString("TELEGRAM_BASE_URL", "https://api.telegram.org"),
		},
		Analysis: AnalysisConfig{
			DefaultPeriod:    strings.ToUpper(getEnvString("ANALYSIS_DEFAULT_PERIOD", "3M")),
			FetchConcurrency: getEnvInt("ANALYSIS_FETCH_CONCURRENCY", 8),
			FetchTimeoutSec:  getEnvInt("ANALYSIS_FETCH_TIMEOUT_SECONDS", 15),
			Benchmarks:       benchmarks,
		},
		Alerts: AlertsConfig{
			CheckIntervalSeconds: getEnvIntAllowZero("ALERT_CHECK_INTERVAL_SECONDS", 0),
		},
		Settings: SettingsConfig{
			DataDir:    os.Getenv("SETTINGS_DATA_DIR"),
			Passphrase: os.Getenv("SETTINGS_PASSPHRASE"),
		},
		Production: getEnvBool("PRODUCTION", false),
		LogLevel:   strings.ToLower(getEnvString("LOG_LEVEL", "info")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive, got %d", c.HTTP.TimeoutSeconds)
	}
	if c.Analysis.FetchConcurrency <= 0 {
		return fmt.Errorf("ANALYSIS_FETCH_CONCURRENCY must be positive, got %d", c.Analysis.FetchConcurrency)
	}
	if c.Analysis.FetchTimeoutSec <= 0 {
		return fmt.Errorf("ANALYSIS_FETCH_TIMEOUT_SECONDS must be positive, got %d", c.Analysis.FetchTimeoutSec)
	}
	switch c.Analysis.DefaultPeriod {
	case "1W", "1M", "3M", "6M", "1Y":
	default:
		return fmt.Errorf("ANALYSIS_DEFAULT_PERIOD must be one of 1W, 1M, 3M, 6M, 1Y, got %q", c.Analysis.DefaultPeriod)
	}
	if c.Alerts.CheckIntervalSeconds < 0 {
		return fmt.Errorf("ALERT_CHECK_INTERVAL_SECONDS must not be negative, got %d", c.Alerts.CheckIntervalSeconds)
	}
	if c.Notification.SMTPPort <= 0 || c.Notification.SMTPPort > 65535 {
		return fmt.Errorf("SMTP_PORT must be a valid port, got %d", c.Notification.SMTPPort)
	}
	if c.Database.URL != "" && !c.UsesPostgres() {
		return fmt.Errorf("DATABASE_URL must be a postgres:// or postgresql:// URL")
	}
	return nil
}

// UsesPostgres returns true if the database URL points at Postgres
func (c *Config) UsesPostgres() bool {
	return strings.HasPrefix(c.Database.URL, "postgres://") || strings.HasPrefix(c.Database.URL, "postgresql://")
}

// HasAlpaca returns true if Alpaca configuration is available
func (c *Config) HasAlpaca() bool {
	return c.Alpaca.APIKey != "" && c.Alpaca.APISecret != ""
}

// HasAlphaVantage returns true if Alpha Vantage configuration is available
func (c *Config) HasAlphaVantage() bool {
	return c.AlphaVantage.APIKey != ""
}

// HasBedrock returns true if AWS Bedrock configuration is available
func (c *Config) HasBedrock() bool {
	return c.Bedrock.Region != "" && c.Bedrock.ModelID != ""
}

// FetchTimeout returns the per-fetch timeout
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Analysis.FetchTimeoutSec) * time.Second
}

// AlertCheckInterval returns the background alert check interval (0 = disabled)
func (c *Config) AlertCheckInterval() time.Duration {
	return time.Duration(c.Alerts.CheckIntervalSeconds) * time.Second
}

// parseBenchmarks parses "Label=SYMBOL:type,Label=SYMBOL:type"
func parseBenchmarks(raw string) ([]BenchmarkConfig, error) {
	var out []BenchmarkConfig
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		label, rest, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("invalid ANALYSIS_BENCHMARKS entry %q: expected Label=SYMBOL:type", item)
		}
		symbol, assetType, ok := strings.Cut(rest, ":")
		if !ok {
			return nil, fmt.Errorf("invalid ANALYSIS_BENCHMARKS entry %q: expected Label=SYMBOL:type", item)
		}
		assetType = strings.ToLower(strings.TrimSpace(assetType))
		if assetType != "stock" && assetType != "crypto" {
			return nil, fmt.Errorf("invalid ANALYSIS_BENCHMARKS entry %q: type must be stock or crypto", item)
		}
		out = append(out, BenchmarkConfig{
			Label:     strings.TrimSpace(label),
			Symbol:    strings.ToUpper(strings.TrimSpace(symbol)),
			AssetType: assetType,
		})
	}
	return out, nil
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvIntAllowZero(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL:        "",
			SQLitePath: "",
		},
		HTTP: HTTPConfig{
			Port:               "8080",
			CORSAllowedOrigins: "*",
			TimeoutSeconds:     60,
		},
		CoinGecko: CoinGeckoConfig{
			BaseURL: "https://api.coingecko.com/api/v3",
		},
		Yahoo: YahooConfig{
			BaseURL: "https://query2.finance.yahoo.com",
		},
		Bedrock: BedrockConfig{
			MaxTokens:        1024,
			AnthropicVersion: "bedrock-2023-05-31",
		},
		Notification: NotificationConfig{
			SMTPServer:      "smtp.gmail.com",
			SMTPPort:        587,
			TelegramBaseURL: "https://api.telegram.org",
		},
		Analysis: AnalysisConfig{
			DefaultPeriod:    "3M",
			FetchConcurrency: 4,
			FetchTimeoutSec:  5,
			Benchmarks: []BenchmarkConfig{
				{Label: "S&P 500", Symbol: "^GSPC", AssetType: "stock"},
				{Label: "Bitcoin", Symbol: "BTC", AssetType: "crypto"},
			},
		},
		Alerts: AlertsConfig{
			CheckIntervalSeconds: 0,
		},
		LogLevel: "info",
	}
}
