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

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Search  SearchConfig  `mapstructure:"search"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Scoring ScoringConfig `mapstructure:"scoring"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SearchConfig holds web search provider configuration
type SearchConfig struct {
	Provider         string        `mapstructure:"provider"` // "tavily" or "duckduckgo"
	APIKey           string        `mapstructure:"api_key"`
	BaseURL          string        `mapstructure:"base_url"`
	MaxResults       int           `mapstructure:"max_results"`
	RepairMaxResults int           `mapstructure:"repair_max_results"`
	MaxQueryLength   int           `mapstructure:"max_query_length"`
	RateLimit        float64       `mapstructure:"rate_limit"` // requests per second
	Burst            int           `mapstructure:"burst"`
	Timeout          time.Duration `mapstructure:"timeout"`
	SearchDepth      string        `mapstructure:"search_depth"` // tavily: "basic" or "advanced"
}

// LLMConfig holds local language model configuration
type LLMConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	NumCtx      int           `mapstructure:"num_ctx"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ScoringConfig holds URL scoring weights
type ScoringConfig struct {
	ArticlePenalty int      `mapstructure:"article_penalty"`
	RootMaxSlashes int      `mapstructure:"root_max_slashes"`
	RootBonus      int      `mapstructure:"root_bonus"`
	DeepMinSlashes int      `mapstructure:"deep_min_slashes"`
	DeepPenalty    int      `mapstructure:"deep_penalty"`
	PreferredTLDs  []string `mapstructure:"preferred_tlds"`
	TLDBonus       int      `mapstructure:"tld_bonus"`
	QueryPenalty   int      `mapstructure:"query_penalty"`
	HTTPSBonus     int      `mapstructure:"https_bonus"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // "json" or "console"
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/competitorlens/")

	// Environment variable settings: search.api_key -> COMPETITORLENS_SEARCH_API_KEY
	v.SetEnvPrefix("COMPETITORLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env into the process environment. A missing file is
// not an error and variables that are already set are never overridden.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values. Every key is registered so
// that environment variables reach Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})
	v.SetDefault("server.shutdown_timeout", "10s")

	// Search defaults
	v.SetDefault("search.provider", "duckduckgo")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.base_url", "")
	v.SetDefault("search.max_results", 10)
	v.SetDefault("search.repair_max_results", 5)
	v.SetDefault("search.max_query_length", 500)
	v.SetDefault("search.rate_limit", 2.0)
	v.SetDefault("search.burst", 4)
	v.SetDefault("search.timeout", "30s")
	v.SetDefault("search.search_depth", "basic")

	// LLM defaults
	v.SetDefault("llm.base_url", "http://localhost:11434")
	v.SetDefault("llm.model", "llama3.1")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.num_ctx", 8192)
	v.SetDefault("llm.timeout", "120s")

	// Scoring defaults
	v.SetDefault("scoring.article_penalty", 100)
	v.SetDefault("scoring.root_max_slashes", 3)
	v.SetDefault("scoring.root_bonus", 10)
	v.SetDefault("scoring.deep_min_slashes", 5)
	v.SetDefault("scoring.deep_penalty", 5)
	v.SetDefault("scoring.preferred_tlds", []string{"io", "com", "ai", "app", "tech"})
	v.SetDefault("scoring.tld_bonus", 5)
	v.SetDefault("scoring.query_penalty", 3)
	v.SetDefault("scoring.https_bonus", 2)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", true)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Search.Provider {
	case "tavily":
		if config.Search.APIKey == "" {
			return fmt.Errorf("search API key is required for tavily (set COMPETITORLENS_SEARCH_API_KEY)")
		}
	case "duckduckgo":
	default:
		return fmt.Errorf("search provider must be 'tavily' or 'duckduckgo', got: %s", config.Search.Provider)
	}

	switch config.Search.SearchDepth {
	case "", "basic", "advanced":
	default:
		return fmt.Errorf("search depth must be 'basic' or 'advanced', got: %s", config.Search.SearchDepth)
	}

	if config.Search.MaxResults <= 0 {
		return fmt.Errorf("search max_results must be positive, got: %d", config.Search.MaxResults)
	}

	if config.LLM.BaseURL == "" {
		return fmt.Errorf("LLM base URL is required (set COMPETITORLENS_LLM_BASE_URL)")
	}

	if config.LLM.Model == "" {
		return fmt.Errorf("LLM model is required (set COMPETITORLENS_LLM_MODEL)")
	}

	if config.LLM.Temperature < 0 || config.LLM.Temperature > 2 {
		return fmt.Errorf("LLM temperature must be between 0 and 2, got: %v", config.LLM.Temperature)
	}

	return nil
}
