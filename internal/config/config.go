package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the argus pipeline configuration.
type Config struct {
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"apiKey"`
	Deployment string `yaml:"deployment"`
	APIVersion string `yaml:"apiVersion"`

	SourceDir    string   `yaml:"sourceDir"`
	Include      []string `yaml:"include"`
	Exclude      []string `yaml:"exclude"`
	MaxFileBytes int      `yaml:"maxFileBytes"`

	QualityThreshold  int `yaml:"qualityThreshold"`
	SecurityThreshold int `yaml:"securityThreshold"`

	Format     string `yaml:"format"`
	OutputPath string `yaml:"outputPath,omitempty"`

	Publish         bool `yaml:"publish"`
	UpdateWorkItems bool `yaml:"updateWorkItems"`
	Telemetry       bool `yaml:"telemetry"`

	TimeoutSeconds int `yaml:"timeoutSeconds"`
	RetryCount     int `yaml:"retryCount"`

	Question     string `yaml:"question,omitempty"`
	CustomPrompt string `yaml:"customPrompt,omitempty"`

	Cache   CacheConfig   `yaml:"cache"`
	Privacy PrivacyConfig `yaml:"privacy"`
}

// CacheConfig controls model-response caching.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Dir        string `yaml:"dir,omitempty"`
	TTLSeconds int    `yaml:"ttlSeconds"`
}

// PrivacyConfig controls secret redaction before content leaves the machine.
type PrivacyConfig struct {
	RedactSecrets bool     `yaml:"redactSecrets"`
	RedactPaths   []string `yaml:"redactPaths,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		APIVersion:        "2024-02-15-preview",
		SourceDir:         ".",
		Include:           []string{"**/*"},
		Exclude:           []string{"vendor/**", "node_modules/**", "**/*.min.js", "**/dist/**"},
		MaxFileBytes:      200000,
		QualityThreshold:  0,
		SecurityThreshold: 0,
		Format:            "text",
		TimeoutSeconds:    120,
		RetryCount:        3,
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/.env", "**/*secrets*"},
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for argus.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "argus"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "argus"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "argus"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "argus"), nil
	default:
		return filepath.Join(home, ".config", "argus"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadFile loads config from path, or from the default config file when path
// is empty. Returns zero Config and nil error if the file doesn't exist.
func LoadFile(path string) (Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(filePath string, overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile(filePath)
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

// Validate checks the fields that make a run impossible when missing.
// Failures here are configuration errors: fatal, reported immediately, never
// retried.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("model endpoint is not configured (set --endpoint or ARGUS_ENDPOINT)")
	}
	if c.APIKey == "" {
		return fmt.Errorf("API key is not configured (set --api-key or ARGUS_API_KEY)")
	}
	if c.SourceDir == "" {
		return fmt.Errorf("source directory is not configured")
	}
	if _, err := os.Stat(c.SourceDir); err != nil {
		return fmt.Errorf("source directory %q: %w", c.SourceDir, err)
	}
	switch c.Format {
	case "text", "json", "markdown", "junit", "sarif":
	default:
		return fmt.Errorf("unsupported output format: %s", c.Format)
	}
	return nil
}

func mergeFile(dst *Config, src Config) {
	if src.Endpoint != "" {
		dst.Endpoint = src.Endpoint
	}
	if src.APIKey != "" {
		dst.APIKey = src.APIKey
	}
	if src.Deployment != "" {
		dst.Deployment = src.Deployment
	}
	if src.APIVersion != "" {
		dst.APIVersion = src.APIVersion
	}
	if src.SourceDir != "" {
		dst.SourceDir = src.SourceDir
	}
	if len(src.Include) > 0 {
		dst.Include = src.Include
	}
	if len(src.Exclude) > 0 {
		dst.Exclude = src.Exclude
	}
	if src.MaxFileBytes > 0 {
		dst.MaxFileBytes = src.MaxFileBytes
	}
	if src.QualityThreshold > 0 {
		dst.QualityThreshold = src.QualityThreshold
	}
	if src.SecurityThreshold > 0 {
		dst.SecurityThreshold = src.SecurityThreshold
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.OutputPath != "" {
		dst.OutputPath = src.OutputPath
	}
	if src.TimeoutSeconds > 0 {
		dst.TimeoutSeconds = src.TimeoutSeconds
	}
	if src.RetryCount > 0 {
		dst.RetryCount = src.RetryCount
	}
	if src.Question != "" {
		dst.Question = src.Question
	}
	if src.CustomPrompt != "" {
		dst.CustomPrompt = src.CustomPrompt
	}
	dst.Publish = src.Publish || dst.Publish
	dst.UpdateWorkItems = src.UpdateWorkItems || dst.UpdateWorkItems
	dst.Telemetry = src.Telemetry || dst.Telemetry
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	dst.Cache.Enabled = src.Cache.Enabled || dst.Cache.Enabled
	if len(src.Privacy.RedactPaths) > 0 {
		dst.Privacy.RedactPaths = src.Privacy.RedactPaths
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("ARGUS_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("ARGUS_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("ARGUS_DEPLOYMENT"); v != "" {
		cfg.Deployment = v
	}
	if v := os.Getenv("ARGUS_API_VERSION"); v != "" {
		cfg.APIVersion = v
	}
	if v := os.Getenv("ARGUS_SOURCE_DIR"); v != "" {
		cfg.SourceDir = v
	}
	if v := os.Getenv("ARGUS_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("ARGUS_QUALITY_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QualityThreshold = n
		}
	}
	if v := os.Getenv("ARGUS_SECURITY_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SecurityThreshold = n
		}
	}
	if v := os.Getenv("ARGUS_RETRY_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RetryCount = n
		}
	}
	if v := os.Getenv("ARGUS_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = n
		}
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	setStr := func(key string, dst *string) {
		if v, ok := overrides[key]; ok && v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok := overrides[key]; ok && v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := overrides[key]; ok && v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setStr("endpoint", &cfg.Endpoint)
	setStr("apiKey", &cfg.APIKey)
	setStr("deployment", &cfg.Deployment)
	setStr("apiVersion", &cfg.APIVersion)
	setStr("sourceDir", &cfg.SourceDir)
	setStr("format", &cfg.Format)
	setStr("outputPath", &cfg.OutputPath)
	setStr("question", &cfg.Question)
	setStr("customPrompt", &cfg.CustomPrompt)
	setInt("maxFileBytes", &cfg.MaxFileBytes)
	setInt("qualityThreshold", &cfg.QualityThreshold)
	setInt("securityThreshold", &cfg.SecurityThreshold)
	setInt("timeoutSeconds", &cfg.TimeoutSeconds)
	setInt("retryCount", &cfg.RetryCount)
	setBool("publish", &cfg.Publish)
	setBool("updateWorkItems", &cfg.UpdateWorkItems)
	setBool("telemetry", &cfg.Telemetry)
}
