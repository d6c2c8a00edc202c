// Package common provides shared utilities for dirkit
package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for dirkit
type Config struct {
	Environment string          `toml:"environment"`
	Directory   DirectoryConfig `toml:"directory"`
	Auth        AuthConfig      `toml:"auth"`
	Logging     LoggingConfig   `toml:"logging"`
}

// DirectoryConfig holds directory API endpoint configuration
type DirectoryConfig struct {
	BaseURL   string `toml:"base_url"`
	TokenURL  string `toml:"token_url"`
	Customer  string `toml:"customer"`
	Domain    string `toml:"domain"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *DirectoryConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// AuthConfig holds OAuth credentials for the directory API.
// Either the refresh-token triple or the service-account pair must be set.
type AuthConfig struct {
	ClientID          string `toml:"client_id"`
	ClientSecret      string `toml:"client_secret"`
	RefreshToken      string `toml:"refresh_token"`
	ServiceAccountKey string `toml:"service_account_key"` // path to a PEM private key
	ServiceAccount    string `toml:"service_account"`     // service account email
	Impersonate       string `toml:"impersonate"`         // admin user to impersonate
}

// HasRefreshCredentials reports whether the refresh-grant triple is complete.
func (c *AuthConfig) HasRefreshCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// HasServiceAccount reports whether service-account credentials are configured.
func (c *AuthConfig) HasServiceAccount() bool {
	return c.ServiceAccount != "" && c.ServiceAccountKey != ""
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Directory: DirectoryConfig{
			BaseURL:   "https://admin.googleapis.com/admin/directory/v1",
			TokenURL:  "https://oauth2.googleapis.com/token",
			Customer:  "my_customer",
			RateLimit: 10,
			Timeout:   "30s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
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
	if env := os.Getenv("DIRKIT_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("DIRKIT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("DIRKIT_BASE_URL"); v != "" {
		config.Directory.BaseURL = v
	}
	if v := os.Getenv("DIRKIT_TOKEN_URL"); v != "" {
		config.Directory.TokenURL = v
	}
	if v := os.Getenv("DIRKIT_CUSTOMER"); v != "" {
		config.Directory.Customer = v
	}
	if v := os.Getenv("DIRKIT_DOMAIN"); v != "" {
		config.Directory.Domain = v
	}
	if v := os.Getenv("DIRKIT_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Directory.RateLimit = n
		}
	}

	// Auth overrides
	if v := os.Getenv("DIRKIT_CLIENT_ID"); v != "" {
		config.Auth.ClientID = v
	}
	if v := os.Getenv("DIRKIT_CLIENT_SECRET"); v != "" {
		config.Auth.ClientSecret = v
	}
	if v := os.Getenv("DIRKIT_REFRESH_TOKEN"); v != "" {
		config.Auth.RefreshToken = v
	}
	if v := os.Getenv("DIRKIT_SERVICE_ACCOUNT"); v != "" {
		config.Auth.ServiceAccount = v
	}
	if v := os.Getenv("DIRKIT_SERVICE_ACCOUNT_KEY"); v != "" {
		config.Auth.ServiceAccountKey = v
	}
	if v := os.Getenv("DIRKIT_IMPERSONATE"); v != "" {
		config.Auth.Impersonate = v
	}
}

// ValidateRequired returns the names of required credential fields that are missing.
// A config is usable when either credential set is complete.
func (c *Config) ValidateRequired() []string {
	if c.Auth.HasRefreshCredentials() || c.Auth.HasServiceAccount() {
		return nil
	}

	var missing []string
	if c.Auth.ClientID == "" {
		missing = append(missing, "auth.client_id")
	}
	if c.Auth.ClientSecret == "" {
		missing = append(missing, "auth.client_secret")
	}
	if c.Auth.RefreshToken == "" {
		missing = append(missing, "auth.refresh_token")
	}
	return missing
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}
