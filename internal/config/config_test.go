package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Format != "text" {
		t.Errorf("format = %q", cfg.Format)
	}
	if cfg.RetryCount != 3 {
		t.Errorf("retryCount = %d", cfg.RetryCount)
	}
	if cfg.TimeoutSeconds != 120 {
		t.Errorf("timeoutSeconds = %d", cfg.TimeoutSeconds)
	}
	if !cfg.Privacy.RedactSecrets {
		t.Error("redaction should default on")
	}
	if cfg.QualityThreshold != 0 || cfg.SecurityThreshold != 0 {
		t.Error("thresholds should default disabled")
	}
}

func TestLoad_FileLayer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `endpoint: https://models.example.com
apiKey: file-key
format: markdown
qualityThreshold: 70
cache:
  enabled: true
  ttlSeconds: 600
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Endpoint != "https://models.example.com" {
		t.Errorf("endpoint = %q", cfg.Endpoint)
	}
	if cfg.Format != "markdown" {
		t.Errorf("format = %q", cfg.Format)
	}
	if cfg.QualityThreshold != 70 {
		t.Errorf("qualityThreshold = %d", cfg.QualityThreshold)
	}
	if cfg.Cache.TTLSeconds != 600 {
		t.Errorf("cache ttl = %d", cfg.Cache.TTLSeconds)
	}
	// Untouched fields keep their defaults.
	if cfg.RetryCount != 3 {
		t.Errorf("retryCount = %d, want default", cfg.RetryCount)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("endpoint: https://from-file\napiKey: file-key\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ARGUS_ENDPOINT", "https://from-env")

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Endpoint != "https://from-env" {
		t.Errorf("endpoint = %q, env should beat file", cfg.Endpoint)
	}
	if cfg.APIKey != "file-key" {
		t.Errorf("apiKey = %q, file value should survive", cfg.APIKey)
	}
}

func TestLoad_OverridesBeatEnv(t *testing.T) {
	t.Setenv("ARGUS_ENDPOINT", "https://from-env")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), map[string]string{
		"endpoint":   "https://from-flag",
		"retryCount": "5",
		"publish":    "true",
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Endpoint != "https://from-flag" {
		t.Errorf("endpoint = %q, flag should beat env", cfg.Endpoint)
	}
	if cfg.RetryCount != 5 {
		t.Errorf("retryCount = %d", cfg.RetryCount)
	}
	if !cfg.Publish {
		t.Error("publish override not applied")
	}
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil); err != nil {
		t.Errorf("missing config file should load defaults, got %v", err)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("endpoint: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, nil); err == nil {
		t.Error("expected parse error for malformed config")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		cfg := Default()
		cfg.Endpoint = "https://models.example.com"
		cfg.APIKey = "key"
		cfg.SourceDir = "."
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing endpoint", func(c *Config) { c.Endpoint = "" }, true},
		{"missing api key", func(c *Config) { c.APIKey = "" }, true},
		{"missing source dir", func(c *Config) { c.SourceDir = "" }, true},
		{"nonexistent source dir", func(c *Config) { c.SourceDir = "/definitely/not/here" }, true},
		{"bad format", func(c *Config) { c.Format = "pdf" }, true},
		{"sarif format", func(c *Config) { c.Format = "sarif" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
