// Package config provides configuration management for the stake calculator.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete service configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Calculator CalculatorConfig `mapstructure:"calculator" validate:"required"`
	Empirical  EmpiricalConfig  `mapstructure:"empirical" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port           int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// CalculatorConfig holds the defaults used when a request omits bankroll settings
type CalculatorConfig struct {
	DefaultBankroll    float64 `mapstructure:"default_bankroll" validate:"gte=0"`
	DefaultCapFraction float64 `mapstructure:"default_cap_fraction" validate:"gte=0,lte=1"`
	MinStake           float64 `mapstructure:"min_stake" validate:"gt=0"`
}

// EmpiricalConfig configures the empirical probability adjustment
type EmpiricalConfig struct {
	Alpha          float64       `mapstructure:"alpha" validate:"gte=0,lte=1"`
	TauDays        float64       `mapstructure:"tau_days" validate:"gt=0"`
	MinProb        float64       `mapstructure:"min_prob" validate:"gte=0,lte=1"`
	MaxProb        float64       `mapstructure:"max_prob" validate:"gte=0,lte=1"`
	HistoryFile    string        `mapstructure:"history_file"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
	RemoteURL      string        `mapstructure:"remote_url" validate:"omitempty,url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	RetryMax       int           `mapstructure:"retry_max" validate:"gte=0"`
	RateLimit      float64       `mapstructure:"rate_limit" validate:"gt=0"`
}

// MetricsConfig represents metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// IsProduction checks if the service is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
