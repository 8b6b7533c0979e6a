package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredKeys(t *testing.T) {
	t.Helper()
	t.Setenv("LLM_API_KEY", "test-llm-key")
	t.Setenv("EMBEDDING_API_KEY", "test-embedding-key")
}

func TestLoadConfig(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		setRequiredKeys(t)

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.ServerPort)
		assert.Equal(t, "memory", cfg.CacheBackend)
		assert.Equal(t, 100, cfg.CacheCapacity)
		assert.Equal(t, 5, cfg.RetrievalK)
		assert.Equal(t, 4, cfg.AdaptConcurrency)
		assert.Equal(t, "data/recipes.json", cfg.CorpusPath)
	})

	t.Run("reads overrides from environment", func(t *testing.T) {
		setRequiredKeys(t)
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("RETRIEVAL_K", "10")
		t.Setenv("CACHE_BACKEND", "none")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.ServerPort)
		assert.Equal(t, 10, cfg.RetrievalK)
		assert.Equal(t, "none", cfg.CacheBackend)
	})

	t.Run("fails without provider keys", func(t *testing.T) {
		t.Setenv("LLM_API_KEY", "")
		t.Setenv("LLM_API_KEY_FILE", "")
		t.Setenv("EMBEDDING_API_KEY", "")
		t.Setenv("EMBEDDING_API_KEY_FILE", "")

		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LLM_API_KEY")
	})

	t.Run("reads key from file", func(t *testing.T) {
		keyPath := filepath.Join(t.TempDir(), "llm_key")
		require.NoError(t, os.WriteFile(keyPath, []byte("  file-key\n"), 0o600))

		t.Setenv("LLM_API_KEY", "")
		t.Setenv("LLM_API_KEY_FILE", keyPath)
		t.Setenv("EMBEDDING_API_KEY", "test-embedding-key")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "file-key", cfg.LLMAPIKey)
	})

	t.Run("rejects unknown cache backend", func(t *testing.T) {
		setRequiredKeys(t)
		t.Setenv("CACHE_BACKEND", "memcached")

		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown cache backend")
	})

	t.Run("rejects non-positive retrieval k", func(t *testing.T) {
		setRequiredKeys(t)
		t.Setenv("RETRIEVAL_K", "0")

		_, err := LoadConfig()
		assert.Error(t, err)
	})
}

func TestGetEnvironment(t *testing.T) {
	t.Run("defaults to development", func(t *testing.T) {
		t.Setenv("ENV", "")
		assert.Equal(t, Development, GetEnvironment())
	})

	t.Run("reads production", func(t *testing.T) {
		t.Setenv("ENV", "production")
		assert.Equal(t, Production, GetEnvironment())
		assert.True(t, IsProduction())
	})

	t.Run("reads test", func(t *testing.T) {
		t.Setenv("ENV", "test")
		assert.Equal(t, Test, GetEnvironment())
	})
}
