package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/newthinker/folio/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Quotes    QuotesConfig    `mapstructure:"quotes"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Narrative NarrativeConfig `mapstructure:"narrative"`
	News      NewsConfig      `mapstructure:"news"`
	Macro     MacroConfig     `mapstructure:"macro"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// LedgerConfig selects where the position ledger is read from.
type LedgerConfig struct {
	Source  string   `mapstructure:"source"` // "sheets", "file" or "s3"
	ID      string   `mapstructure:"id"`     // spreadsheet id, file path or object key
	BaseURL string   `mapstructure:"base_url"`
	Token   string   `mapstructure:"token"`
	Dir     string   `mapstructure:"dir"`
	S3      S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type QuotesConfig struct {
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	RangeWindow     string        `mapstructure:"range_window"`
	DayChangeWindow string        `mapstructure:"day_change_window"`
	CryptoProviders []string      `mapstructure:"crypto_providers"`
	CoinGeckoAPIKey string        `mapstructure:"coingecko_api_key"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

type LLMConfig struct {
	Provider string       `mapstructure:"provider"`
	Claude   ClaudeConfig `mapstructure:"claude"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
	Ollama   OllamaConfig `mapstructure:"ollama"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
}

type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type OllamaConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// NarrativeConfig holds per-call retry and batch throttle settings.
type NarrativeConfig struct {
	Retry      RetryConfig   `mapstructure:"retry"`
	BatchDelay time.Duration `mapstructure:"batch_delay"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
	MaxTokens  int           `mapstructure:"max_tokens"`
}

type RetryConfig struct {
	MaxAttempts    int           `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
	Multiplier     float64       `mapstructure:"multiplier"`
}

type NewsConfig struct {
	FinnhubAPIKey string        `mapstructure:"finnhub_api_key"`
	LookbackDays  int           `mapstructure:"lookback_days"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	MaxHeadlines  int           `mapstructure:"max_headlines"`
}

type MacroConfig struct {
	Indicators []IndicatorConfig `mapstructure:"indicators"`
}

type IndicatorConfig struct {
	Name     string `mapstructure:"name"`
	Ticker   string `mapstructure:"ticker"`
	Category string `mapstructure:"category"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads configuration from file on top of Defaults.
// A .env file in the working directory, if present, is loaded first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Log: LogConfig{
			Level: "info",
		},
		Ledger: LedgerConfig{
			Source:  "sheets",
			BaseURL: "https://docs.google.com",
		},
		Quotes: QuotesConfig{
			CacheTTL:        15 * time.Minute,
			RangeWindow:     "1y",
			DayChangeWindow: "5d",
			CryptoProviders: []string{"coingecko", "binance"},
			RequestTimeout:  10 * time.Second,
		},
		Narrative: NarrativeConfig{
			Retry: RetryConfig{
				MaxAttempts:    3,
				InitialBackoff: 1500 * time.Millisecond,
				MaxBackoff:     10 * time.Second,
				Multiplier:     2,
			},
			BatchDelay: 2 * time.Second,
			CacheTTL:   15 * time.Minute,
			MaxTokens:  1024,
		},
		News: NewsConfig{
			LookbackDays: 1,
			CacheTTL:     20 * time.Minute,
			MaxHeadlines: 20,
		},
		Macro: MacroConfig{
			Indicators: []IndicatorConfig{
				{Name: "Nifty 50", Ticker: "^NSEI", Category: "equity"},
				{Name: "Nasdaq 100", Ticker: "^NDX", Category: "equity"},
				{Name: "Hang Seng", Ticker: "^HSI", Category: "equity"},
				{Name: "BTC/USD", Ticker: "BTC-USD", Category: "equity"},
				{Name: "USD/INR", Ticker: "INR=X", Category: "equity"},
				{Name: "Gold", Ticker: "GC=F", Category: "equity"},
				{Name: "Crude Oil", Ticker: "CL=F", Category: "equity"},
				{Name: "US 10Y", Ticker: "^TNX", Category: "equity"},
				{Name: "VIX", Ticker: "^VIX", Category: "equity"},
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	switch c.Ledger.Source {
	case "sheets", "file":
	case "s3":
		if c.Ledger.S3.Bucket == "" && !strings.HasPrefix(c.Ledger.ID, "s3://") {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("ledger s3.bucket required when id is not an s3:// url"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown ledger source: %q", c.Ledger.Source))
	}

	if c.Quotes.CacheTTL < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("quotes cache_ttl cannot be negative, got %s", c.Quotes.CacheTTL))
	}

	r := c.Narrative.Retry
	if r.MaxAttempts < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("narrative retry max_attempts must be at least 1, got %d", r.MaxAttempts))
	}
	if r.Multiplier != 0 && r.Multiplier < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("narrative retry multiplier must be >= 1, got %f", r.Multiplier))
	}
	if c.Narrative.BatchDelay < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("narrative batch_delay cannot be negative, got %s", c.Narrative.BatchDelay))
	}

	// LLM validation - if provider set, check config exists
	if c.LLM.Provider != "" {
		switch c.LLM.Provider {
		case "claude":
			if c.LLM.Claude.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("claude api_key required when provider is claude"))
			}
		case "openai":
			if c.LLM.OpenAI.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("openai api_key required when provider is openai"))
			}
		case "ollama":
			if c.LLM.Ollama.Endpoint == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("ollama endpoint required when provider is ollama"))
			}
		case "gemini":
			if c.LLM.Gemini.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("gemini api_key required when provider is gemini"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown llm provider: %q", c.LLM.Provider))
		}
	}

	return nil
}
