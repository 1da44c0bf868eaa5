// Package config loads runtime settings from the environment, an optional
// .env file and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingCredential means a required API key is not set.
var ErrMissingCredential = errors.New("missing required credential")

type Config struct {
	// Credentials
	ExaAPIKey    string
	GeminiAPIKey string
	OpenAIAPIKey string

	// Language model
	LLMProvider      string // gemini | openai
	LLMModel         string
	LLMBaseURL       string
	LLMTimeout       time.Duration
	LLMRatePerSecond float64
	LLMBurst         int
	LLMMaxPerDay     int // 0 = unlimited

	// Search
	SearchNumResults     int
	SearchWindowDays     int
	MaxArticlesPerSource int
	SearchCacheTTL       time.Duration
	SummaryCacheTTL      time.Duration

	// Feeds and scraper
	FeedsConfigPath   string
	ScrapeConcurrency int

	// Cache backend
	CacheBackend  string // memory | redis
	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// App settings
	Debug             bool
	RequestTimeout    time.Duration
	SourceConcurrency int
	RetryAttempts     int
	RetryDelay        time.Duration

	// HTTP
	HTTPAddr    string
	CORSOrigins []string
}

var defaults = map[string]any{
	"llm_provider":            "gemini",
	"llm_timeout":             20 * time.Second,
	"llm_rate_per_second":     5.0,
	"llm_burst":               5,
	"llm_max_per_day":         0,
	"search_num_results":      10,
	"search_window_days":      7,
	"max_articles_per_source": 6,
	"search_cache_ttl":        15 * time.Minute,
	"summary_cache_ttl":       time.Hour,
	"feeds_config_path":       "configs/feeds.yaml",
	"scrape_concurrency":      4,
	"cache_backend":           "memory",
	"redis_db":                0,
	"debug":                   false,
	"request_timeout":         30 * time.Second,
	"source_concurrency":      4,
	"retry_attempts":          1,
	"retry_delay":             2 * time.Second,
	"http_addr":               ":8080",
	"cors_origins":            "*",
}

// envKeys are bound explicitly so values set only in the environment are
// visible to viper.
var envKeys = []string{
	"exa_api_key", "gemini_api_key", "openai_api_key",
	"llm_model", "llm_base_url", "redis_address", "redis_password",
}

// Load reads .env (if present), then NEWSBRIEF_CONFIG (if set), then the
// environment, and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}

	if path := os.Getenv("NEWSBRIEF_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := fromViper(v)
	return cfg, cfg.Validate()
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		ExaAPIKey:    v.GetString("exa_api_key"),
		GeminiAPIKey: v.GetString("gemini_api_key"),
		OpenAIAPIKey: v.GetString("openai_api_key"),

		LLMProvider:      strings.ToLower(v.GetString("llm_provider")),
		LLMModel:         v.GetString("llm_model"),
		LLMBaseURL:       v.GetString("llm_base_url"),
		LLMTimeout:       v.GetDuration("llm_timeout"),
		LLMRatePerSecond: v.GetFloat64("llm_rate_per_second"),
		LLMBurst:         v.GetInt("llm_burst"),
		LLMMaxPerDay:     v.GetInt("llm_max_per_day"),

		SearchNumResults:     v.GetInt("search_num_results"),
		SearchWindowDays:     v.GetInt("search_window_days"),
		MaxArticlesPerSource: v.GetInt("max_articles_per_source"),
		SearchCacheTTL:       v.GetDuration("search_cache_ttl"),
		SummaryCacheTTL:      v.GetDuration("summary_cache_ttl"),

		FeedsConfigPath:   v.GetString("feeds_config_path"),
		ScrapeConcurrency: v.GetInt("scrape_concurrency"),

		CacheBackend:  strings.ToLower(v.GetString("cache_backend")),
		RedisAddress:  v.GetString("redis_address"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),

		Debug:             v.GetBool("debug"),
		RequestTimeout:    v.GetDuration("request_timeout"),
		SourceConcurrency: v.GetInt("source_concurrency"),
		RetryAttempts:     v.GetInt("retry_attempts"),
		RetryDelay:        v.GetDuration("retry_delay"),

		HTTPAddr:    v.GetString("http_addr"),
		CORSOrigins: splitList(v.GetString("cors_origins")),
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LLMAPIKey returns the key of the selected provider.
func (c *Config) LLMAPIKey() string {
	if c.LLMProvider == "openai" {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

func (c *Config) Validate() error {
	if c.ExaAPIKey == "" {
		return fmt.Errorf("%w: EXA_API_KEY is required", ErrMissingCredential)
	}
	switch c.LLMProvider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY is required", ErrMissingCredential)
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required", ErrMissingCredential)
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be 'gemini' or 'openai', got %q", c.LLMProvider)
	}
	if c.CacheBackend != "memory" && c.CacheBackend != "redis" {
		return fmt.Errorf("CACHE_BACKEND must be 'memory' or 'redis', got %q", c.CacheBackend)
	}
	if c.CacheBackend == "redis" && c.RedisAddress == "" {
		return fmt.Errorf("REDIS_ADDRESS is required when CACHE_BACKEND=redis")
	}
	return nil
}
