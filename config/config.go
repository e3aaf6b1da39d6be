package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// HTTP server configuration
	HTTPAddr string

	// AdminAPIKey guards the settlement trigger endpoint
	AdminAPIKey string

	// SettlementIntervalMinutes controls how often the internal settlement
	// ticker fires. Zero disables the ticker; settlement then runs only via
	// the admin endpoint.
	SettlementIntervalMinutes int

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		HTTPAddr:    os.Getenv("HTTP_ADDR"),
		AdminAPIKey: os.Getenv("ADMIN_API_KEY"),
		Environment: os.Getenv("ENVIRONMENT"),
	}

	if config.HTTPAddr == "" {
		config.HTTPAddr = ":8080"
	}

	if interval := os.Getenv("SETTLEMENT_INTERVAL_MINUTES"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil {
			config.SettlementIntervalMinutes = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.AdminAPIKey == "" {
			return nil, fmt.Errorf("ADMIN_API_KEY is required")
		}
	}

	return config, nil
}
