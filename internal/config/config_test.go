package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, ".", cfg.Storage.DataDir)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mtracker.yaml")
	content := `
llm:
  api_key: file-key
  model: test-model
  timeout: 30s
storage:
  data_dir: /tmp/mtracker-data
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.LLM.APIKey)
	assert.Equal(t, "test-model", cfg.LLM.Model)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout())
	assert.Equal(t, "/tmp/mtracker-data", cfg.Storage.DataDir)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [not a map"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:9999/v1")
	t.Setenv("OPENAI_MODEL", "env-model")
	t.Setenv("MTRACKER_DATA_DIR", "/tmp/env-data")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.LLM.APIKey)
	assert.Equal(t, "http://localhost:9999/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "env-model", cfg.LLM.Model)
	assert.Equal(t, "/tmp/env-data", cfg.Storage.DataDir)
}

func TestLLMTimeoutFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Timeout = "not-a-duration"
	assert.Equal(t, 120*time.Second, cfg.LLMTimeout())
}

func TestDBPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.DataDir = "/data"
	assert.Equal(t, filepath.Join("/data", "food_log.db"), cfg.LogDBPath())
	assert.Equal(t, filepath.Join("/data", "food_cache.db"), cfg.CacheDBPath())
}

func TestWriteEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, WriteEnvFile(path, "sk-test", "", "my-model"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(data), "OPENAI_API_KEY=sk-test\n")
	assert.Contains(t, string(data), "OPENAI_MODEL=my-model\n")
	assert.NotContains(t, string(data), "OPENAI_BASE_URL")
}
