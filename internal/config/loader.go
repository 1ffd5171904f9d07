package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/soltixdb/kcluster/internal/analytics/cluster"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/kcluster")
	}

	setDefaults(v)

	// KCLUSTER_CLUSTERING_DEFAULT_SEEDS overrides clustering.default_seeds
	v.SetEnvPrefix("KCLUSTER")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	// Server defaults
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)

	// Auth defaults
	v.SetDefault("auth.enabled", d.Auth.Enabled)
	v.SetDefault("auth.api_keys", d.Auth.APIKeys)

	// Logging defaults
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
	v.SetDefault("logging.time_format", d.Logging.TimeFormat)

	// Clustering defaults
	v.SetDefault("clustering.default_seeds", d.Clustering.DefaultSeeds)
	v.SetDefault("clustering.default_updates", d.Clustering.DefaultUpdates)
	v.SetDefault("clustering.dynamic_seeds", d.Clustering.DynamicSeeds)
	v.SetDefault("clustering.dynamic_updates", d.Clustering.DynamicUpdates)
	v.SetDefault("clustering.dynamic_sdevs", d.Clustering.DynamicSDevs)
	v.SetDefault("clustering.band_sdevs", d.Clustering.BandSDevs)
	v.SetDefault("clustering.max_points", d.Clustering.MaxPoints)
	v.SetDefault("clustering.random_seed", d.Clustering.RandomSeed)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			HTTPPort: 5580,
		},
		Auth: AuthConfig{
			Enabled: false,
			APIKeys: []string{},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
			TimeFormat: "RFC3339",
		},
		Clustering: ClusteringConfig{
			DefaultSeeds:   10,
			DefaultUpdates: 50,
			DynamicSeeds:   cluster.DefaultDynamicSeeds,
			DynamicUpdates: cluster.DefaultDynamicUpdates,
			DynamicSDevs:   cluster.DefaultSDevs,
			BandSDevs:      cluster.DefaultSDevs,
			MaxPoints:      100000,
			RandomSeed:     0,
		},
	}
}
