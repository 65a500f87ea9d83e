package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	TMDB    TMDBConfig    `mapstructure:"tmdb"`
	Mark    MarkConfig    `mapstructure:"mark"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Session SessionConfig `mapstructure:"session"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Safety  SafetyConfig  `mapstructure:"safety"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Update  UpdateConfig  `mapstructure:"update"`
}

// TMDBConfig holds TMDB API connection details
type TMDBConfig struct {
	APIKey         string               `mapstructure:"api_key"`
	BaseURL        string               `mapstructure:"base_url"`
	ImageBaseURL   string               `mapstructure:"image_base_url"`
	WebAuthURL     string               `mapstructure:"web_auth_url"`
	RedirectTo     string               `mapstructure:"redirect_to"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	RateLimit      float64              `mapstructure:"rate_limit"`
	RateBurst      int                  `mapstructure:"rate_burst"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// CircuitBreakerConfig controls the breaker guarding TMDB requests
type CircuitBreakerConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxFailures uint32        `mapstructure:"max_failures"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`
}

// MarkConfig lists the status codes accepted as a successful mark
type MarkConfig struct {
	AddCodes    []int `mapstructure:"add_codes"`
	RemoveCodes []int `mapstructure:"remove_codes"`
}

// AuthConfig holds optional login credentials
type AuthConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// SessionConfig controls where the login session is persisted
type SessionConfig struct {
	File string `mapstructure:"file"`
}

// FilterConfig contains named filter expressions
type FilterConfig map[string]string

// SafetyConfig contains safety-related settings
type SafetyConfig struct {
	DryRun bool `mapstructure:"dry_run"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// MetricsConfig controls the Prometheus textfile export
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// UpdateConfig controls self-update
type UpdateConfig struct {
	Repository string `mapstructure:"repository"`
}
