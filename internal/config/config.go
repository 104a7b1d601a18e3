// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Ingestion settings
	SourcesConfigPath string
	MaxItemsPerFeed   int // per-source cap, protects batch balance and LLM cost
	FetchConcurrency  int
	FeedTimeout       time.Duration

	// Analysis settings
	GeminiAPIKey   string
	GeminiModel    string
	MaxLLMRequests int // daily request budget (0 = unlimited)
	OpenAIAPIKey   string
	TargetLanguage string

	// Storage settings
	DatabaseURL   string // PostgreSQL DSN; empty selects the file store
	StoreFilePath string
	CacheTTL      time.Duration

	// Vault settings
	VaultPath string

	// App settings
	Debug          bool
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		SourcesConfigPath: getEnvOrDefault("SOURCES_CONFIG_PATH", "configs/sources.yaml"),
		MaxItemsPerFeed:   getEnvIntOrDefault("MAX_ITEMS_PER_FEED", 5),
		FetchConcurrency:  getEnvIntOrDefault("FETCH_CONCURRENCY", 8),
		FeedTimeout:       30 * time.Second,

		GeminiModel:    getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		MaxLLMRequests: getEnvIntOrDefault("MAX_LLM_REQUESTS", 50),
		TargetLanguage: getEnvOrDefault("TARGET_LANGUAGE", "en"),

		StoreFilePath: getEnvOrDefault("STORE_FILE_PATH", "articles.json"),
		CacheTTL:      time.Duration(getEnvIntOrDefault("CACHE_TTL_HOURS", 48)) * time.Hour,

		VaultPath: getEnvOrDefault("VAULT_PATH", "credentials.vault"),

		RequestTimeout: 30 * time.Second,
		RetryAttempts:  3,
		RetryDelay:     5 * time.Second,
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	if v := os.Getenv("FEED_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.FeedTimeout = time.Duration(val) * time.Second
		}
	}

	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.SourcesConfigPath == "" {
		return fmt.Errorf("SOURCES_CONFIG_PATH is required")
	}
	if c.MaxItemsPerFeed < 1 {
		return fmt.Errorf("MAX_ITEMS_PER_FEED must be at least 1")
	}
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be at least 1")
	}
	return nil
}
