package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `{
	"port": 8000,
	"ai": {"provider": "gemini", "chat_model": "gemini-2.0-flash", "embed_model": "text-embedding-004"},
	"index": {"name": "docs"},
	"corpus": {"sources": [{"type": "local", "data": {"roots": ["/srv/docs"]}}]}
}`

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	require.Equal(t, 8000, cfg.Port)
	require.Equal(t, 2000, cfg.AI.MaxOutputTokens)
	require.Equal(t, 0.1, cfg.AI.Temperature)
	require.Equal(t, 60, cfg.AI.Timeout)
	require.Equal(t, 1536, cfg.Index.Dimension)
	require.Equal(t, "qdrant", cfg.VectorStore.Type)
	require.Equal(t, 3000, cfg.Chunk.MaxSize)
	require.Equal(t, 3, cfg.TopK)
	require.Equal(t, "info", cfg.LogConfig.Level)
}

func TestLoad_RequiresPort(t *testing.T) {
	_, err := Load(writeConfig(t, `{"ai": {"provider": "gemini", "chat_model": "m", "embed_model": "e"}, "index": {"name": "docs"}, "corpus": {"sources": [{"type": "local"}]}}`))
	require.ErrorContains(t, err, "port")
}

func TestLoad_RequiresCorpusSources(t *testing.T) {
	_, err := Load(writeConfig(t, `{"port": 8000, "ai": {"provider": "gemini", "chat_model": "m", "embed_model": "e"}, "index": {"name": "docs"}}`))
	require.ErrorContains(t, err, "corpus.sources")
}

func TestLoad_RejectsUntypedSource(t *testing.T) {
	_, err := Load(writeConfig(t, `{"port": 8000, "ai": {"provider": "gemini", "chat_model": "m", "embed_model": "e"}, "index": {"name": "docs"}, "corpus": {"sources": [{"data": {}}]}}`))
	require.ErrorContains(t, err, "type is required")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
