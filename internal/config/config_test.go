package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 1200, cfg.Chunker.ChunkSize)
	require.NotNil(t, cfg.Chunker.ChunkOverlap)
	assert.Equal(t, 200, *cfg.Chunker.ChunkOverlap)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, "openai", cfg.Embedder.Type)
	assert.Equal(t, "nomic-embed-text", cfg.Embedder.OpenAI.Model)
	assert.Equal(t, "mistral", cfg.Generator.OpenAI.Model)
	assert.Equal(t, 512, cfg.Generator.MaxTokens)
	assert.Equal(t, "chromem", cfg.Store.Type)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_PartialConfigFillsDefaults(t *testing.T) {
	path := writeConfig(t, `
materials_dir: /srv/materials
chunker:
  chunk_size: 500
embedder:
  type: tfidf
store:
  type: memory
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/materials", cfg.MaterialsDir)
	assert.Equal(t, 500, cfg.Chunker.ChunkSize)
	require.NotNil(t, cfg.Chunker.ChunkOverlap)
	assert.Equal(t, 200, *cfg.Chunker.ChunkOverlap)
	assert.Equal(t, "tfidf", cfg.Embedder.Type)
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
}

func TestLoad_ExplicitZerosAreKept(t *testing.T) {
	path := writeConfig(t, `
chunker:
  chunk_size: 800
  chunk_overlap: 0
generator:
  temperature: 0
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Chunker.ChunkOverlap)
	assert.Equal(t, 0, *cfg.Chunker.ChunkOverlap)
	require.NotNil(t, cfg.Generator.Temperature)
	assert.Equal(t, float32(0), *cfg.Generator.Temperature)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"overlap >= size", "chunker:\n  chunk_size: 100\n  chunk_overlap: 100\n"},
		{"top_k above bound", "retrieval:\n  top_k: 11\n"},
		{"negative top_k", "retrieval:\n  top_k: -2\n"},
		{"unknown embedder", "embedder:\n  type: quantum\n"},
		{"unknown store", "store:\n  type: blockchain\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := Default()
	cfg.Retrieval.TopK = 7
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Retrieval.TopK)
	assert.Equal(t, cfg.MaterialsDir, loaded.MaterialsDir)
}
