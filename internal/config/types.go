// Package config defines configuration types for Voyago.
package config

// Config is the root configuration.
type Config struct {
	Models ModelsConfig `toml:"models"`
	Search SearchConfig `toml:"search"`
	Paths  PathsConfig  `toml:"paths"`
	Log    LogConfig    `toml:"log"`
}

// ModelsConfig configures the two on-device model slots and the
// inference server they are loaded into.
type ModelsConfig struct {
	// ServerURL is the base URL of the llama.cpp-compatible server.
	ServerURL string `toml:"server_url"`

	// TimeoutSecs bounds a single generation call.
	TimeoutSecs int `toml:"timeout_secs"`

	Tool SlotConfig `toml:"tool"`
	Chat SlotConfig `toml:"chat"`
}

// SlotConfig configures one logical model slot.
type SlotConfig struct {
	// Resource identifies the backing model (served model name or a
	// local model directory).
	Resource  string `toml:"resource"`
	MaxTokens int    `toml:"max_tokens"`
}

// SearchConfig configures the web search collaborator.
type SearchConfig struct {
	// Endpoint is a printf-style template receiving the encoded query.
	Endpoint    string `toml:"endpoint"`
	MaxResults  int    `toml:"max_results"`
	TimeoutSecs int    `toml:"timeout_secs"`
}

// PathsConfig configures filesystem locations.
type PathsConfig struct {
	DataDir string `toml:"data_dir"`
	LogsDir string `toml:"logs_dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `toml:"level"`
}
