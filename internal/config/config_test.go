package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/voyago-ai/voyago/internal/errors"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Models, cfg.Models)
	assert.Equal(t, def.Search, cfg.Search)
	assert.Equal(t, "https://lite.duckduckgo.com/lite/?q=%s", cfg.Search.Endpoint)
	assert.Equal(t, 5, cfg.Search.MaxResults)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := Default()
	cfg.Models.ServerURL = "http://localhost:9999"
	cfg.Models.Chat.Resource = "gemma-custom"
	cfg.Models.Chat.MaxTokens = 2048
	cfg.Search.MaxResults = 3
	cfg.Log.Level = "debug"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999", loaded.Models.ServerURL)
	assert.Equal(t, "gemma-custom", loaded.Models.Chat.Resource)
	assert.Equal(t, 2048, loaded.Models.Chat.MaxTokens)
	assert.Equal(t, 3, loaded.Search.MaxResults)
	assert.Equal(t, "debug", loaded.Log.Level)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[models.chat]\nresource = \"other-model\"\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "other-model", cfg.Models.Chat.Resource)
	assert.Equal(t, Default().Models.ServerURL, cfg.Models.ServerURL)
	assert.Equal(t, Default().Search.Endpoint, cfg.Search.Endpoint)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConfigInvalid))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Models.ServerURL = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConfigInvalid))

	cfg = Default()
	cfg.Models.Tool.Resource = ""
	cfg.Models.Chat.Resource = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Search.Endpoint = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Search.MaxResults = -1
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5, cfg.Search.MaxResults)
}

func TestTimeouts(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 120*time.Second, cfg.GenerateTimeout())
	assert.Equal(t, 15*time.Second, cfg.SearchTimeout())

	cfg.Models.TimeoutSecs = 30
	cfg.Search.TimeoutSecs = 5
	assert.Equal(t, 30*time.Second, cfg.GenerateTimeout())
	assert.Equal(t, 5*time.Second, cfg.SearchTimeout())

	cfg.Models.TimeoutSecs = 0
	cfg.Search.TimeoutSecs = 0
	assert.Equal(t, 120*time.Second, cfg.GenerateTimeout())
	assert.Equal(t, 15*time.Second, cfg.SearchTimeout())
}
