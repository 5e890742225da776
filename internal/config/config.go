// Package config loads and validates the site configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the site configuration.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Content ContentConfig `yaml:"content"`
	Build   BuildConfig   `yaml:"build"`
	Preview PreviewConfig `yaml:"preview"`
}

// SiteConfig describes the site itself.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Author      string `yaml:"author,omitempty"`
}

// ContentConfig locates the source material.
type ContentConfig struct {
	Dir     string `yaml:"dir"`               // markdown documents
	Static  string `yaml:"static,omitempty"`  // assets copied verbatim
	Layouts string `yaml:"layouts,omitempty"` // template overrides
}

// BuildConfig controls the build pipeline.
type BuildConfig struct {
	Output    string `yaml:"output"`
	Drafts    bool   `yaml:"drafts"`               // include draft documents
	LinkCheck bool   `yaml:"link_check"`           // verify internal links after rendering
	Workers   int    `yaml:"workers,omitempty"`    // concurrent page renders
	CachePath string `yaml:"cache_path,omitempty"` // render cache database, empty disables
	GitDates  bool   `yaml:"git_dates"`            // fall back to git history for document dates
}

// PreviewConfig controls the local preview server.
type PreviewConfig struct {
	Addr  string `yaml:"addr,omitempty"`
	Watch bool   `yaml:"watch"`
	// RebuildInterval is a time.ParseDuration string; empty disables
	// periodic rebuilds.
	RebuildInterval string `yaml:"rebuild_interval,omitempty"`
	Metrics         bool   `yaml:"metrics"`
}

// RebuildEvery returns the parsed periodic rebuild interval, or zero when
// disabled.
func (p PreviewConfig) RebuildEvery() time.Duration {
	if p.RebuildInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(p.RebuildInterval)
	if err != nil {
		return 0
	}
	return d
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			Title:   "My Site",
			BaseURL: "/",
		},
		Content: ContentConfig{
			Dir:    "content",
			Static: "static",
		},
		Build: BuildConfig{
			Output:  "public",
			Workers: 4,
		},
		Preview: PreviewConfig{
			Addr:  "localhost:8080",
			Watch: true,
		},
	}
}

// Load loads configuration from the specified file, expanding environment
// variables in the YAML content. A .env file next to the working directory is
// loaded first when present.
func Load(configPath string) (*Config, error) {
	// Missing .env is the common case and not an error.
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills zero values that Unmarshal may have cleared.
func (c *Config) applyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = "My Site"
	}
	if c.Site.BaseURL == "" {
		c.Site.BaseURL = "/"
	}
	if c.Content.Dir == "" {
		c.Content.Dir = "content"
	}
	if c.Build.Output == "" {
		c.Build.Output = "public"
	}
	if c.Build.Workers <= 0 {
		c.Build.Workers = 4
	}
	if c.Preview.Addr == "" {
		c.Preview.Addr = "localhost:8080"
	}
}

// Validate checks the configuration for inconsistencies that would make a
// build fail in confusing ways later.
func (c *Config) Validate() error {
	if c.Content.Dir == c.Build.Output {
		return fmt.Errorf("content dir and output dir must differ: %s", c.Content.Dir)
	}
	if c.Build.Workers < 1 {
		return fmt.Errorf("build workers must be positive, got %d", c.Build.Workers)
	}
	if c.Preview.RebuildInterval != "" {
		d, err := time.ParseDuration(c.Preview.RebuildInterval)
		if err != nil {
			return fmt.Errorf("invalid preview rebuild interval %q: %w", c.Preview.RebuildInterval, err)
		}
		if d < 0 {
			return fmt.Errorf("preview rebuild interval must not be negative, got %s", d)
		}
	}
	return nil
}

// Write serializes the configuration to path. Used by the init command.
func (c *Config) Write(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
