// Package config provides configuration management for the odds aggregator.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig        `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig   `mapstructure:"database" validate:"required"`
	HTTP      HTTPConfig       `mapstructure:"http"`
	Providers []ProviderConfig `mapstructure:"providers" validate:"required,min=1,dive"`
	Sync      SyncConfig       `mapstructure:"sync" validate:"required"`
	Analytics AnalyticsConfig  `mapstructure:"analytics"`
	Metrics   MetricsConfig    `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// HTTPConfig represents shared provider HTTP client configuration
type HTTPConfig struct {
	TimeoutSeconds    int `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
	MaxRetries        int `mapstructure:"max_retries" validate:"omitempty,gte=0,lte=3"`
	RetryBaseWaitMS   int `mapstructure:"retry_base_wait_ms" validate:"omitempty,gt=0"`
	CircuitBreakerMax int `mapstructure:"circuit_breaker_max" validate:"omitempty,gt=0"`
}

// ProviderConfig represents a single upstream provider configuration
type ProviderConfig struct {
	Name      string  `mapstructure:"name" validate:"required,provider"`
	Enabled   bool    `mapstructure:"enabled"`
	BaseURL   string  `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey    string  `mapstructure:"api_key"`
	RateLimit float64 `mapstructure:"rate_limit" validate:"omitempty,gt=0"`
}

// SyncConfig represents the recurring sync configuration
type SyncConfig struct {
	IntervalMinutes int               `mapstructure:"interval_minutes" validate:"required,gt=0"`
	EventLimit      int               `mapstructure:"event_limit" validate:"omitempty,gt=0"`
	Sports          []SportSyncConfig `mapstructure:"sports" validate:"required,min=1,dive"`
}

// SportSyncConfig configures one sport's sync: which providers to use, in
// preference order, and whether to merge all sources instead of falling
// back through them.
type SportSyncConfig struct {
	Key       string   `mapstructure:"key" validate:"required"`
	Providers []string `mapstructure:"providers" validate:"required,min=1,dive,provider"`
	Combine   bool     `mapstructure:"combine"`
}

// AnalyticsConfig represents query-layer defaults
type AnalyticsConfig struct {
	MoversWindowHours int     `mapstructure:"movers_window_hours" validate:"omitempty,gt=0"`
	MoversMinMovement float64 `mapstructure:"movers_min_movement" validate:"omitempty,gt=0"`
	MoversLimit       int     `mapstructure:"movers_limit" validate:"omitempty,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// ProviderByName returns the configuration for a named provider, or nil.
func (c *Config) ProviderByName(name string) *ProviderConfig {
	for i := range c.Providers {
		if c.Providers[i].Name == name {
			return &c.Providers[i]
		}
	}
	return nil
}

// SyncInterval returns the recurring sync interval as a duration.
func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.Sync.IntervalMinutes) * time.Minute
}

// MoversWindow returns the big-movers window, defaulting to 24 hours.
func (c *Config) MoversWindow() time.Duration {
	hours := c.Analytics.MoversWindowHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}
