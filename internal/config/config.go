package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Modules   ModulesConfig
	Data      DataConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8200"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// StoreConfig holds remote store registry configuration.
type StoreConfig struct {
	BaseURL         string        `envconfig:"STORE_URL" default:"https://store.connhub.io/api/v1"`
	RefreshInterval time.Duration `envconfig:"STORE_REFRESH_INTERVAL" default:"15m"`
	RequestTimeout  time.Duration `envconfig:"STORE_REQUEST_TIMEOUT" default:"10s"`
}

// ModulesConfig holds the installed-module registry configuration.
type ModulesConfig struct {
	Dir string `envconfig:"MODULES_DIR" default:"./modules"`
}

// DataConfig holds local state storage configuration.
type DataConfig struct {
	Dir string `envconfig:"DATA_DIR" default:"./data"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8200",
			Host: "0.0.0.0",
		},
		Store: StoreConfig{
			BaseURL:         "https://store.connhub.io/api/v1",
			RefreshInterval: 15 * time.Minute,
			RequestTimeout:  10 * time.Second,
		},
		Modules: ModulesConfig{
			Dir: "./modules",
		},
		Data: DataConfig{
			Dir: "./data",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
