// Package common provides shared utilities for Finbrief
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Finbrief
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Email       EmailConfig   `toml:"email"`
	Digest      DigestConfig  `toml:"digest"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds storage configuration.
type StorageConfig struct {
	Path string `toml:"path"` // BadgerHold data directory
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Yahoo     YahooConfig     `toml:"yahoo"`
	Firecrawl FirecrawlConfig `toml:"firecrawl"`
	Gemini    GeminiConfig    `toml:"gemini"`
}

// YahooConfig holds quote provider configuration
type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"` // requests per second
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// FirecrawlConfig holds search/scrape provider configuration
type FirecrawlConfig struct {
	BaseURL    string `toml:"base_url"`
	APIKey     string `toml:"api_key"`
	Timeout    string `toml:"timeout"`
	MaxRetries int    `toml:"max_retries"`
}

// GetTimeout parses and returns the timeout duration
func (c *FirecrawlConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// EmailConfig holds SMTP delivery configuration
type EmailConfig struct {
	SMTPHost    string `toml:"smtp_host"`
	SMTPPort    int    `toml:"smtp_port"`
	Username    string `toml:"username"`
	Password    string `toml:"password"`
	FromAddress string `toml:"from_address"`
}

// DigestConfig holds the weekly digest schedule and pipeline limits.
type DigestConfig struct {
	Weekday         string `toml:"weekday"`  // e.g. "Monday"
	HourUTC         int    `toml:"hour_utc"` // 0-23
	MaxHoldings     int    `toml:"max_holdings"`
	MaxWatchlist    int    `toml:"max_watchlist"`
	NewsPerTicker   int    `toml:"news_per_ticker"`
	AnalysisTimeout string `toml:"analysis_timeout"` // per-ticker ceiling
}

// GetWeekday parses the scheduled weekday, defaulting to Monday.
func (c *DigestConfig) GetWeekday() time.Weekday {
	switch strings.ToLower(strings.TrimSpace(c.Weekday)) {
	case "sunday":
		return time.Sunday
	case "monday":
		return time.Monday
	case "tuesday":
		return time.Tuesday
	case "wednesday":
		return time.Wednesday
	case "thursday":
		return time.Thursday
	case "friday":
		return time.Friday
	case "saturday":
		return time.Saturday
	default:
		return time.Monday
	}
}

// GetAnalysisTimeout parses the per-ticker analysis ceiling.
func (c *DigestConfig) GetAnalysisTimeout() time.Duration {
	d, err := time.ParseDuration(c.AnalysisTimeout)
	if err != nil {
		return 90 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string `toml:"level"`
	FilePath string `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path: "data/finbrief",
		},
		Clients: ClientsConfig{
			Yahoo: YahooConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Firecrawl: FirecrawlConfig{
				BaseURL:    "https://api.firecrawl.dev",
				Timeout:    "30s",
				MaxRetries: 3,
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Email: EmailConfig{
			SMTPHost:    "smtp.gmail.com",
			SMTPPort:    587,
			FromAddress: "digest@finbrief.app",
		},
		Digest: DigestConfig{
			Weekday:         "Monday",
			HourUTC:         12,
			MaxHoldings:     10,
			MaxWatchlist:    10,
			NewsPerTicker:   2,
			AnalysisTimeout: "90s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FINBRIEF_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FINBRIEF_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FINBRIEF_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FINBRIEF_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FINBRIEF_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if v := os.Getenv("FIRECRAWL_API_KEY"); v != "" {
		config.Clients.Firecrawl.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		config.Clients.Gemini.APIKey = v
	}
	if v := os.Getenv("FINBRIEF_SMTP_HOST"); v != "" {
		config.Email.SMTPHost = v
	}
	if v := os.Getenv("FINBRIEF_SMTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			config.Email.SMTPPort = p
		}
	}
	if v := os.Getenv("FINBRIEF_SMTP_USERNAME"); v != "" {
		config.Email.Username = v
	}
	if v := os.Getenv("FINBRIEF_SMTP_PASSWORD"); v != "" {
		config.Email.Password = v
	}
	if v := os.Getenv("FINBRIEF_FROM_ADDRESS"); v != "" {
		config.Email.FromAddress = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
