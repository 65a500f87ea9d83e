package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. MOVIEMANAGER_TMDB_API_KEY
const EnvPrefix = "MOVIEMANAGER"

// Load loads the configuration from file and environment. Without an
// explicit path a missing config file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".moviemanager"))
		}

		// Check /etc
		v.AddConfigPath("/etc/moviemanager/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.Session.File == "" {
		cfg.Session.File = DefaultSessionFile()
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// DefaultSessionFile returns the session file location under the user
// config directory
func DefaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".moviemanager", "session.json")
	}
	return filepath.Join(dir, "moviemanager", "session.json")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// TMDB defaults
	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.image_base_url", "https://image.tmdb.org/t/p/w500")
	v.SetDefault("tmdb.web_auth_url", "https://www.themoviedb.org/authenticate")
	v.SetDefault("tmdb.redirect_to", "themoviemanager:authenticate")
	v.SetDefault("tmdb.timeout", "30s")
	v.SetDefault("tmdb.rate_limit", 40)
	v.SetDefault("tmdb.rate_burst", 10)
	v.SetDefault("tmdb.circuit_breaker.enabled", true)
	v.SetDefault("tmdb.circuit_breaker.max_failures", 5)
	v.SetDefault("tmdb.circuit_breaker.open_timeout", "30s")

	// Created, updated and deleted
	v.SetDefault("mark.add_codes", []int{1, 12, 13})
	v.SetDefault("mark.remove_codes", []int{1, 12, 13})

	v.SetDefault("auth.username", "")
	v.SetDefault("auth.password", "")
	v.SetDefault("session.file", "")

	// Safety defaults
	v.SetDefault("safety.dry_run", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)

	v.SetDefault("metrics.textfile", "")
	v.SetDefault("update.repository", "s0up4200/moviemanager")
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.TMDB.APIKey == "" || cfg.TMDB.APIKey == "your-api-key-here" {
		return fmt.Errorf("tmdb.api_key must be set to a valid API key")
	}

	if cfg.TMDB.BaseURL == "" {
		return fmt.Errorf("tmdb.base_url is required")
	}

	if cfg.TMDB.Timeout <= 0 {
		return fmt.Errorf("tmdb.timeout must be positive")
	}

	if cfg.TMDB.RateLimit < 0 {
		return fmt.Errorf("tmdb.rate_limit must not be negative")
	}

	if cfg.TMDB.CircuitBreaker.Enabled && cfg.TMDB.CircuitBreaker.MaxFailures == 0 {
		return fmt.Errorf("tmdb.circuit_breaker.max_failures must be at least 1")
	}

	if len(cfg.Mark.AddCodes) == 0 || len(cfg.Mark.RemoveCodes) == 0 {
		return fmt.Errorf("mark.add_codes and mark.remove_codes must not be empty")
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	for name, expression := range cfg.Filter {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("filter %q has an empty expression", name)
		}
	}

	return nil
}
