package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Log     LogConfig     `mapstructure:"log"`
	Sandbox SandboxConfig `mapstructure:"sandbox"`
}

// APIConfig holds the shopping backend client configuration
type APIConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	DefaultNumResults int           `mapstructure:"default_num_results"`
	MaxNumResults     int           `mapstructure:"max_num_results"`
	Country           string        `mapstructure:"country"`
	Language          string        `mapstructure:"language"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// SandboxConfig holds configuration of the local contract sandbox server
type SandboxConfig struct {
	Port           string          `mapstructure:"port"`
	Environment    string          `mapstructure:"environment"`
	AllowedOrigins []string        `mapstructure:"allowed_origins"`
	Version        string          `mapstructure:"version"`
	Build          string          `mapstructure:"build"`
	CatalogFile    string          `mapstructure:"catalog_file"` // empty uses the built-in catalog
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig holds sandbox rate limiting configuration
type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
	Burst     int `mapstructure:"burst"`
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/shopkit/")

	// SHOPKIT_API_BASE_URL -> api.base_url
	v.SetEnvPrefix("SHOPKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

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

// loadEnvFile loads ./.env when present. Variables already set in the
// environment are not overridden.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.base_url", "http://127.0.0.1:8000")
	v.SetDefault("api.timeout", "60s")
	v.SetDefault("api.user_agent", "shopkit/1.0")
	v.SetDefault("api.default_num_results", 20)
	v.SetDefault("api.max_num_results", 50)
	v.SetDefault("api.country", "us")
	v.SetDefault("api.language", "en")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Sandbox defaults
	v.SetDefault("sandbox.port", "8000")
	v.SetDefault("sandbox.environment", "development")
	v.SetDefault("sandbox.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("sandbox.version", "0.1.0")
	v.SetDefault("sandbox.build", "sandbox")
	v.SetDefault("sandbox.catalog_file", "")
	v.SetDefault("sandbox.rate_limit.per_minute", 60)
	v.SetDefault("sandbox.rate_limit.burst", 10)
}

// validate validates the configuration
func validate(config *Config) error {
	u, err := url.Parse(config.API.BaseURL)
	if err != nil || config.API.BaseURL == "" {
		return fmt.Errorf("api base url is required (set SHOPKIT_API_BASE_URL)")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api base url must be an absolute http(s) url, got: %s", config.API.BaseURL)
	}

	if config.API.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive, got: %s", config.API.Timeout)
	}

	if config.API.MaxNumResults < 1 || config.API.MaxNumResults > 100 {
		return fmt.Errorf("api max_num_results must be within 1..100, got: %d", config.API.MaxNumResults)
	}

	if config.API.DefaultNumResults < 1 || config.API.DefaultNumResults > config.API.MaxNumResults {
		return fmt.Errorf("api default_num_results must be within 1..%d, got: %d",
			config.API.MaxNumResults, config.API.DefaultNumResults)
	}

	if config.Log.Format != "json" && config.Log.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got: %s", config.Log.Format)
	}

	if config.Sandbox.RateLimit.PerMinute <= 0 || config.Sandbox.RateLimit.Burst <= 0 {
		return fmt.Errorf("sandbox rate limit per_minute and burst must be positive")
	}

	return nil
}
