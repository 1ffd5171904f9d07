package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Clustering ClusteringConfig `mapstructure:"clustering"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host     string `mapstructure:"host"`      // Bind address for server (e.g., 0.0.0.0 for all interfaces)
	HTTPPort int    `mapstructure:"http_port"` // HTTP server port
}

// ClusteringConfig holds the defaults applied when a request leaves a
// parameter unset
type ClusteringConfig struct {
	DefaultSeeds   int     `mapstructure:"default_seeds"`   // k-means++ trials per request
	DefaultUpdates int     `mapstructure:"default_updates"` // convergence passes per trial
	DynamicSeeds   int     `mapstructure:"dynamic_seeds"`   // trials for kdynamic
	DynamicUpdates int     `mapstructure:"dynamic_updates"` // convergence passes for kdynamic
	DynamicSDevs   float64 `mapstructure:"dynamic_sdevs"`   // outlier band width for kdynamic
	BandSDevs      float64 `mapstructure:"band_sdevs"`      // outlier band width for kband

	// MaxPoints caps the sequence length accepted per request (0 = unlimited)
	MaxPoints int `mapstructure:"max_points"`

	// RandomSeed seeds the process generator; 0 seeds from entropy
	RandomSeed uint64 `mapstructure:"random_seed"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, UnixMs, etc
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := c.Clustering.Validate(); err != nil {
		return fmt.Errorf("clustering config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}

	return nil
}

// Validate validates auth configuration
func (c *AuthConfig) Validate() error {
	if c.Enabled && len(c.APIKeys) == 0 {
		return fmt.Errorf("auth.api_keys is required when auth is enabled")
	}

	return nil
}

// Validate validates clustering configuration
func (c *ClusteringConfig) Validate() error {
	if c.DefaultSeeds < 1 {
		return fmt.Errorf("clustering.default_seeds must be at least 1")
	}

	if c.DefaultUpdates < 1 {
		return fmt.Errorf("clustering.default_updates must be at least 1")
	}

	if c.DynamicSeeds < 1 {
		return fmt.Errorf("clustering.dynamic_seeds must be at least 1")
	}

	if c.DynamicUpdates < 1 {
		return fmt.Errorf("clustering.dynamic_updates must be at least 1")
	}

	if c.DynamicSDevs < 1 {
		return fmt.Errorf("clustering.dynamic_sdevs must be at least 1")
	}

	if c.BandSDevs < 1 {
		return fmt.Errorf("clustering.band_sdevs must be at least 1")
	}

	if c.MaxPoints < 0 {
		return fmt.Errorf("clustering.max_points cannot be negative")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
