package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupDataRoot creates a valid data root with an images directory.
func setupDataRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, imagesDirName), 0o755))
	return root
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv(EnvDataRoot, "/data/emails")
	t.Setenv(EnvAPIKey, "sk-test")
	t.Setenv(EnvEmbeddingHost, "http://localhost:11434/v1")
	t.Setenv(EnvEmbeddingModel, "embeddinggemma")

	cfg := Load()
	assert.Equal(t, "/data/emails", cfg.DataRoot)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
}

func TestValidate(t *testing.T) {
	t.Run("valid data root passes", func(t *testing.T) {
		cfg := &Config{DataRoot: setupDataRoot(t)}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("empty data root fails", func(t *testing.T) {
		cfg := &Config{}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvDataRoot)
	})

	t.Run("missing data root fails", func(t *testing.T) {
		cfg := &Config{DataRoot: filepath.Join(t.TempDir(), "absent")}
		assert.Error(t, cfg.Validate())
	})

	t.Run("data root that is a file fails", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(root, []byte("x"), 0o644))
		cfg := &Config{DataRoot: root}
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing images directory fails", func(t *testing.T) {
		cfg := &Config{DataRoot: t.TempDir()}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "images")
	})
}

func TestValidateTagging(t *testing.T) {
	root := setupDataRoot(t)

	t.Run("requires API key", func(t *testing.T) {
		cfg := &Config{DataRoot: root}
		err := cfg.ValidateTagging()
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvAPIKey)
	})

	t.Run("passes with API key", func(t *testing.T) {
		cfg := &Config{DataRoot: root, APIKey: "sk-test"}
		assert.NoError(t, cfg.ValidateTagging())
	})
}

func TestPathHelpers(t *testing.T) {
	cfg := &Config{DataRoot: "/data"}

	assert.Equal(t, filepath.Join("/data", "example_email_images"), cfg.ImagesDir())
	assert.Equal(t, filepath.Join("/data", "image_tag_sets", "newsletters"), cfg.TagSetsDir("newsletters"))
	assert.Equal(t, filepath.Join("/data", "indexes", "newsletters.json"), cfg.IndexSnapshotPath("newsletters"))
}
