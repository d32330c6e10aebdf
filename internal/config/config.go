package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for a config file when none is given.
const DefaultPath = "p12status.yaml"

// Config holds all p12status configuration.
type Config struct {
	// Verification service
	Service ServiceConfig `yaml:"service"`

	// Credential bundle discovery
	Bundles BundlesConfig `yaml:"bundles"`

	// Markdown status report
	Report ReportConfig `yaml:"report"`

	// Extraction heuristics
	Extraction ExtractionConfig `yaml:"extraction"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ServiceConfig configures the verification web service.
type ServiceConfig struct {
	BaseURL       string `yaml:"base_url"`
	UserAgent     string `yaml:"user_agent"`
	TokenTimeout  string `yaml:"token_timeout"`
	SubmitTimeout string `yaml:"submit_timeout"`
}

// BundlesConfig configures where credential pairs live.
type BundlesConfig struct {
	Root            string `yaml:"root"`             // one directory per company under here
	DefaultPassword string `yaml:"default_password"` // used when no password file exists
	PasswordFile    string `yaml:"password_file"`
}

// ReportConfig configures the status table document.
type ReportConfig struct {
	Path               string `yaml:"path"`
	RecommendMarker    string `yaml:"recommend_marker"`
	RecommendedCompany string `yaml:"recommended_company"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			BaseURL:       "https://check-p12.applep12.com/",
			UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
			TokenTimeout:  "20s",
			SubmitTimeout: "60s",
		},

		Bundles: BundlesConfig{
			Root:            ".",
			DefaultPassword: "nezushub.vip",
			PasswordFile:    "password.txt",
		},

		Report: ReportConfig{
			Path:               "README.md",
			RecommendMarker:    "Recommend Certificate",
			RecommendedCompany: "China Telecommunications Corporation V2",
		},

		Extraction: DefaultExtractionConfig(),

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("P12STATUS_BASE_URL"); v != "" {
		c.Service.BaseURL = v
	}
	if v := os.Getenv("P12STATUS_REPORT"); v != "" {
		c.Report.Path = v
	}
	if v := os.Getenv("P12STATUS_BUNDLES"); v != "" {
		c.Bundles.Root = v
	}
	if v := os.Getenv("P12STATUS_PASSWORD"); v != "" {
		c.Bundles.DefaultPassword = v
	}
}

// GetTokenTimeout returns the token page timeout as a duration.
func (c *Config) GetTokenTimeout() time.Duration {
	d, err := time.ParseDuration(c.Service.TokenTimeout)
	if err != nil {
		return 20 * time.Second
	}
	return d
}

// GetSubmitTimeout returns the check submission timeout as a duration.
func (c *Config) GetSubmitTimeout() time.Duration {
	d, err := time.ParseDuration(c.Service.SubmitTimeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Service.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("service.base_url must be an absolute URL, got %q", c.Service.BaseURL)
	}
	if c.Service.TokenTimeout != "" {
		if _, err := time.ParseDuration(c.Service.TokenTimeout); err != nil {
			return fmt.Errorf("service.token_timeout is invalid: %w", err)
		}
	}
	if c.Service.SubmitTimeout != "" {
		if _, err := time.ParseDuration(c.Service.SubmitTimeout); err != nil {
			return fmt.Errorf("service.submit_timeout is invalid: %w", err)
		}
	}

	if c.Report.Path == "" {
		return fmt.Errorf("report.path is required")
	}

	if err := c.Extraction.Validate(); err != nil {
		return err
	}

	return c.Logging.Validate()
}
