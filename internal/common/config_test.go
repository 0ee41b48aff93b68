package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fiscus.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 8218, cfg.Server.Port)
	assert.Equal(t, 500, cfg.RAG.ChunkSize)
	assert.Equal(t, 50, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.Equal(t, 0.3, cfg.RAG.MinSimilarity)
	assert.Equal(t, 10, cfg.RAG.HistoryLimit)
	assert.Equal(t, "hashing", cfg.Embeddings.Provider)
	assert.Equal(t, 384, cfg.Embeddings.Dimension)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFiles(t *testing.T) {
	t.Run("no files yields defaults", func(t *testing.T) {
		cfg, err := LoadFromFiles()
		require.NoError(t, err)
		assert.Equal(t, 8218, cfg.Server.Port)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := writeConfig(t, `
[server]
port = 9000

[rag]
chunk_size = 300
`)
		cfg, err := LoadFromFiles(path)
		require.NoError(t, err)
		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, 300, cfg.RAG.ChunkSize)
		assert.Equal(t, 50, cfg.RAG.ChunkOverlap, "unset fields keep defaults")
	})

	t.Run("later files override earlier ones", func(t *testing.T) {
		first := writeConfig(t, "[server]\nport = 9000\n")
		second := writeConfig(t, "[server]\nport = 9100\n")

		cfg, err := LoadFromFiles(first, second)
		require.NoError(t, err)
		assert.Equal(t, 9100, cfg.Server.Port)
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := LoadFromFiles("/nonexistent/fiscus.toml")
		assert.Error(t, err)
	})

	t.Run("invalid values fail validation", func(t *testing.T) {
		path := writeConfig(t, "[rag]\nchunk_size = 10\nchunk_overlap = 50\n")
		_, err := LoadFromFiles(path)
		assert.ErrorContains(t, err, "invalid configuration")
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("FISCUS_SERVER_PORT", "9999")
		path := writeConfig(t, "[server]\nport = 9000\n")

		cfg, err := LoadFromFiles(path)
		require.NoError(t, err)
		assert.Equal(t, 9999, cfg.Server.Port)
	})
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	ApplyFlagOverrides(cfg, 7777, "0.0.0.0")
	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	ApplyFlagOverrides(cfg, 0, "")
	assert.Equal(t, 7777, cfg.Server.Port, "zero values leave config untouched")
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}
