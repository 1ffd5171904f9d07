package config

import (
	"strconv"
	"strings"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Logging.Level == "info" && c.Logging.Format == "json"
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.HTTPPort)
}

// AcceptsLength reports whether a sequence of n points is within MaxPoints
func (c *ClusteringConfig) AcceptsLength(n int) bool {
	return c.MaxPoints == 0 || n <= c.MaxPoints
}
