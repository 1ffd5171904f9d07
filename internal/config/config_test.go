package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "default config should be valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid http port",
			mutate:  func(c *Config) { c.Server.HTTPPort = 0 },
			wantErr: true,
		},
		{
			name:    "http port out of range",
			mutate:  func(c *Config) { c.Server.HTTPPort = 70000 },
			wantErr: true,
		},
		{
			name:    "auth enabled without keys",
			mutate:  func(c *Config) { c.Auth.Enabled = true },
			wantErr: true,
		},
		{
			name: "auth enabled with keys",
			mutate: func(c *Config) {
				c.Auth.Enabled = true
				c.Auth.APIKeys = []string{"secret"}
			},
			wantErr: false,
		},
		{
			name:    "zero default seeds",
			mutate:  func(c *Config) { c.Clustering.DefaultSeeds = 0 },
			wantErr: true,
		},
		{
			name:    "zero dynamic updates",
			mutate:  func(c *Config) { c.Clustering.DynamicUpdates = 0 },
			wantErr: true,
		},
		{
			name:    "band sdevs below one",
			mutate:  func(c *Config) { c.Clustering.BandSDevs = 0.5 },
			wantErr: true,
		},
		{
			name:    "negative max points",
			mutate:  func(c *Config) { c.Clustering.MaxPoints = -1 },
			wantErr: true,
		},
		{
			name:    "invalid logging level",
			mutate:  func(c *Config) { c.Logging.Level = "invalid" },
			wantErr: true,
		},
		{
			name:    "invalid logging format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.HTTPPort != 5580 {
		t.Errorf("expected HTTPPort 5580, got %d", cfg.Server.HTTPPort)
	}

	if cfg.Clustering.DefaultSeeds != 10 {
		t.Errorf("expected default seeds 10, got %d", cfg.Clustering.DefaultSeeds)
	}

	if cfg.Clustering.DynamicSeeds != 300 {
		t.Errorf("expected dynamic seeds 300, got %d", cfg.Clustering.DynamicSeeds)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.IsProduction() {
		t.Error("default config should be production mode")
	}

	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "console"

	if !cfg.IsDevelopment() {
		t.Error("config with debug/console should be development mode")
	}

	if addr := cfg.GetServerAddress(); addr != "0.0.0.0:5580" {
		t.Errorf("expected '0.0.0.0:5580', got %s", addr)
	}

	if !cfg.Clustering.AcceptsLength(100000) || cfg.Clustering.AcceptsLength(100001) {
		t.Error("max_points should bound accepted length")
	}

	cfg.Clustering.MaxPoints = 0
	if !cfg.Clustering.AcceptsLength(1 << 30) {
		t.Error("max_points 0 should accept any length")
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kcluster.yaml")
	content := `
server:
  http_port: 6000
logging:
  level: debug
  format: console
clustering:
  default_seeds: 25
  random_seed: 99
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPPort != 6000 {
		t.Errorf("expected HTTPPort 6000, got %d", cfg.Server.HTTPPort)
	}
	if cfg.Clustering.DefaultSeeds != 25 {
		t.Errorf("expected default seeds 25, got %d", cfg.Clustering.DefaultSeeds)
	}
	if cfg.Clustering.RandomSeed != 99 {
		t.Errorf("expected random seed 99, got %d", cfg.Clustering.RandomSeed)
	}
	// unset keys fall back to defaults
	if cfg.Clustering.DynamicSeeds != 300 {
		t.Errorf("expected dynamic seeds 300, got %d", cfg.Clustering.DynamicSeeds)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kcluster.yaml")
	if err := os.WriteFile(path, []byte("server:\n  http_port: 6000\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("KCLUSTER_CLUSTERING_DEFAULT_UPDATES", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Clustering.DefaultUpdates != 7 {
		t.Errorf("expected default updates 7 from env, got %d", cfg.Clustering.DefaultUpdates)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kcluster.yaml")
	if err := os.WriteFile(path, []byte("clustering:\n  default_seeds: 0\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected validation error for default_seeds 0")
	}

	cfg := LoadOrDefault(path)
	if cfg.Clustering.DefaultSeeds != 10 {
		t.Errorf("LoadOrDefault should fall back to defaults, got %d", cfg.Clustering.DefaultSeeds)
	}
}
