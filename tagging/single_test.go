package tagging

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/poiesic/mailtag/ai/mock"
	"github.com/poiesic/mailtag/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagOne(t *testing.T) {
	imagesDir := t.TempDir()
	name := writeTestImage(t, imagesDir, "single.png")

	tagger := mock.NewMockTagger()
	tags, err := TagOne(context.Background(), tagger, testBuilder(),
		filepath.Join(imagesDir, name), "extract tags", nil)
	require.NoError(t, err)

	assert.Equal(t, core.StringValue("mock subject"), tags["subject"])
	assert.Equal(t, 1, tagger.CallCount())
}

func TestTagOne_AppliesIgnoreList(t *testing.T) {
	imagesDir := t.TempDir()
	name := writeTestImage(t, imagesDir, "single.png")

	tagger := mock.NewMockTagger()
	tagger.TagImageFunc = func(ctx context.Context, imageData []byte, prompt string) (string, error) {
		assert.Equal(t, "extract tags", prompt)
		assert.NotEmpty(t, imageData, "preprocessed image bytes are forwarded")
		return `{"subject": "Welcome", "footer": "boilerplate"}`, nil
	}

	tags, err := TagOne(context.Background(), tagger, testBuilder(),
		filepath.Join(imagesDir, name), "extract tags", []string{"footer"})
	require.NoError(t, err)
	assert.NotContains(t, tags, "footer")
	assert.Contains(t, tags, "subject")
}

func TestTagOne_MissingImage(t *testing.T) {
	_, err := TagOne(context.Background(), mock.NewMockTagger(), testBuilder(),
		filepath.Join(t.TempDir(), "absent.png"), "extract tags", nil)
	require.Error(t, err)
}

func TestTagOne_TaggerErrorPropagates(t *testing.T) {
	imagesDir := t.TempDir()
	name := writeTestImage(t, imagesDir, "single.png")

	tagger := mock.NewMockTagger()
	tagger.TagImageFunc = func(ctx context.Context, imageData []byte, prompt string) (string, error) {
		return "", errors.New("model overloaded")
	}

	_, err := TagOne(context.Background(), tagger, testBuilder(),
		filepath.Join(imagesDir, name), "extract tags", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestTagOne_MalformedPayload(t *testing.T) {
	imagesDir := t.TempDir()
	name := writeTestImage(t, imagesDir, "single.png")

	tagger := mock.NewMockTagger()
	tagger.TagImageFunc = func(ctx context.Context, imageData []byte, prompt string) (string, error) {
		return "no JSON here", nil
	}

	_, err := TagOne(context.Background(), tagger, testBuilder(),
		filepath.Join(imagesDir, name), "extract tags", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMalformedPayload)
}

func TestTagOne_RequiresTagger(t *testing.T) {
	_, err := TagOne(context.Background(), nil, nil, "image.png", "prompt", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTaggerRequired)
}

func TestJobStatus(t *testing.T) {
	assert.Equal(t, "submitted", JobSubmitted.String())
	assert.Equal(t, "polling", JobPolling.String())
	assert.Equal(t, "ended", JobEnded.String())
	assert.Equal(t, "failed", JobFailed.String())

	assert.False(t, JobSubmitted.Terminal())
	assert.False(t, JobPolling.Terminal())
	assert.True(t, JobEnded.Terminal())
	assert.True(t, JobFailed.Terminal())
}
