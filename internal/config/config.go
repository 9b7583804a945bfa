// Package config loads mtracker configuration from an optional YAML file,
// a .env file, and environment variables. The resulting Config is built once
// in main and passed down; nothing reads the environment after startup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all mtracker configuration.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Storage StorageConfig `yaml:"storage"`
}

// LLMConfig configures the extraction collaborator endpoint.
type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

// StorageConfig configures the on-disk SQLite databases.
type StorageConfig struct {
	// DataDir holds food_log.db and food_cache.db. The two databases are
	// deliberately separate files: resetting the cache must not touch
	// logged history.
	DataDir string `yaml:"data_dir"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
			Timeout: "120s",
		},
		Storage: StorageConfig{
			DataDir: ".",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if it
// exists), then .env, then environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// A missing .env is fine; explicit env vars still apply below.
	_ = godotenv.Load()

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if url := os.Getenv("OPENAI_BASE_URL"); url != "" {
		c.LLM.BaseURL = url
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if dir := os.Getenv("MTRACKER_DATA_DIR"); dir != "" {
		c.Storage.DataDir = dir
	}
}

// LLMTimeout returns the LLM timeout as a duration.
func (c *Config) LLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// LogDBPath returns the path of the food log database.
func (c *Config) LogDBPath() string {
	return filepath.Join(c.Storage.DataDir, "food_log.db")
}

// CacheDBPath returns the path of the nutrition cache database.
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.Storage.DataDir, "food_cache.db")
}

// WriteEnvFile writes a .env file with the provided credentials. Empty
// values are omitted. Used by the setup command.
func WriteEnvFile(path, apiKey, baseURL, model string) error {
	content := fmt.Sprintf("OPENAI_API_KEY=%s\n", apiKey)
	if baseURL != "" {
		content += fmt.Sprintf("OPENAI_BASE_URL=%s\n", baseURL)
	}
	if model != "" {
		content += fmt.Sprintf("OPENAI_MODEL=%s\n", model)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write env file: %w", err)
	}
	return nil
}
