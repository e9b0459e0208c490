// Package config handles Voyago configuration loading and management.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	apperrors "github.com/voyago-ai/voyago/internal/errors"
)

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".voyago")

	return &Config{
		Models: ModelsConfig{
			ServerURL:   "http://127.0.0.1:8080",
			TimeoutSecs: 120,
			Tool: SlotConfig{
				Resource:  "functiongemma-finetuned",
				MaxTokens: 512,
			},
			Chat: SlotConfig{
				Resource:  "gemma3-1b-it-int4",
				MaxTokens: 1024, // larger context for summarization
			},
		},
		Search: SearchConfig{
			Endpoint:    "https://lite.duckduckgo.com/lite/?q=%s",
			MaxResults:  5,
			TimeoutSecs: 15,
		},
		Paths: PathsConfig{
			DataDir: dataDir,
			LogsDir: filepath.Join(dataDir, "logs"),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads the configuration from the given path.
// If the file doesn't exist, returns defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, apperrors.Wrap(err, apperrors.CodeConfigInvalid, "failed to read config", apperrors.CategorySystem)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfigInvalid, "failed to parse config", apperrors.CategoryUser)
	}

	cfg = expandPaths(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to the given path.
func (c *Config) Save(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	return encoder.Encode(c)
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if c.Models.ServerURL == "" {
		return apperrors.User(apperrors.CodeConfigInvalid, "models.server_url must be set")
	}
	if c.Models.Tool.Resource == "" && c.Models.Chat.Resource == "" {
		return apperrors.User(apperrors.CodeConfigInvalid, "at least one model resource must be configured")
	}
	if c.Search.Endpoint == "" {
		return apperrors.User(apperrors.CodeConfigInvalid, "search.endpoint must be set")
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 5
	}
	return nil
}

// GenerateTimeout returns the per-generation timeout.
func (c *Config) GenerateTimeout() time.Duration {
	if c.Models.TimeoutSecs <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.Models.TimeoutSecs) * time.Second
}

// SearchTimeout returns the search request timeout.
func (c *Config) SearchTimeout() time.Duration {
	if c.Search.TimeoutSecs <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Search.TimeoutSecs) * time.Second
}

// expandPaths expands ~ in paths.
func expandPaths(cfg *Config) *Config {
	homeDir, _ := os.UserHomeDir()

	if len(cfg.Paths.DataDir) > 0 && cfg.Paths.DataDir[0] == '~' {
		cfg.Paths.DataDir = filepath.Join(homeDir, cfg.Paths.DataDir[1:])
	}
	if len(cfg.Paths.LogsDir) > 0 && cfg.Paths.LogsDir[0] == '~' {
		cfg.Paths.LogsDir = filepath.Join(homeDir, cfg.Paths.LogsDir[1:])
	}

	return cfg
}
