package config_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libscribe/internal/config"
)

func setRequired(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("GEMINI_API_KEY", "gm_test")
	t.Setenv("WEAVIATE_HOST", "localhost:8080")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBHost)
	assert.Equal(t, 512, cfg.VectorDim)
	assert.Equal(t, 10, cfg.IngestionConcurrency)
	assert.Equal(t, float32(0.5), cfg.SearchAlpha)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.True(t, cfg.EnableAPI)
	assert.True(t, cfg.EnableIngestWorker)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("WEAVIATE_SCHEME", "https")
	t.Setenv("INGESTION_CONCURRENCY", "3")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https", cfg.WeaviateScheme)
	assert.Equal(t, 3, cfg.IngestionConcurrency)
}

func TestLoadConfig_MissingGithubToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GEMINI_API_KEY", "gm_test")
	t.Setenv("WEAVIATE_HOST", "localhost:8080")

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrMissingRequired))
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")
}

func TestLoadConfig_MissingEmbeddingKey(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("WEAVIATE_HOST", "localhost:8080")

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrMissingRequired))
}

func TestLoadConfig_MissingStorageHost(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("GEMINI_API_KEY", "gm_test")
	t.Setenv("WEAVIATE_HOST", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrMissingRequired))
}
