package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveImagePath_ProbesExtensions(t *testing.T) {
	imagesDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(imagesDir, "welcome.jpeg"), []byte("img"), 0o644))

	path := ResolveImagePath(imagesDir, "welcome")
	assert.Equal(t, filepath.Join(imagesDir, "welcome.jpeg"), path)
}

func TestResolveImagePath_PrefersEarlierExtension(t *testing.T) {
	imagesDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(imagesDir, "welcome.png"), []byte("img"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(imagesDir, "welcome.webp"), []byte("img"), 0o644))

	path := ResolveImagePath(imagesDir, "welcome")
	assert.Equal(t, filepath.Join(imagesDir, "welcome.png"), path)
}

func TestResolveImagePath_NotFound(t *testing.T) {
	assert.Empty(t, ResolveImagePath(t.TempDir(), "missing"))
}

func TestTagFilePath(t *testing.T) {
	path := TagFilePath("/tags", "my email (2).png")
	assert.Equal(t, filepath.Join("/tags", "my_email__2_.json"), path)
}
